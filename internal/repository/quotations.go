package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
)

const quotationColumns = `id, partner_id, customer_name, customer_email, customer_phone, system_size, panel_brand, inverter_brand, wiring_brand, total_cost, status, date_submitted`

// Quotations stores partner quotations in the relational backend.
type Quotations struct {
	db *sqlx.DB
}

func NewQuotations(db *sqlx.DB) *Quotations { return &Quotations{db: db} }

func (r *Quotations) Create(ctx context.Context, q domain.Quotation) (domain.Quotation, error) {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO partner_quotations(`+quotationColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`),
		q.ID, q.PartnerID, q.CustomerName, q.CustomerEmail, q.CustomerPhone, q.SystemSize,
		q.PanelBrand, q.InverterBrand, q.WiringBrand, q.TotalCost, q.Status, q.DateSubmitted)
	if err != nil {
		return domain.Quotation{}, err
	}
	return q, nil
}

// ListByPartner returns the partner's quotations, most recent first.
func (r *Quotations) ListByPartner(ctx context.Context, partnerID string) ([]domain.Quotation, error) {
	out := []domain.Quotation{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`SELECT `+quotationColumns+` FROM partner_quotations WHERE partner_id = ? ORDER BY date_submitted DESC, id DESC`), partnerID)
	return out, err
}

func (r *Quotations) Get(ctx context.Context, partnerID, id string) (domain.Quotation, error) {
	var q domain.Quotation
	err := r.db.GetContext(ctx, &q, r.db.Rebind(`SELECT `+quotationColumns+` FROM partner_quotations WHERE partner_id = ? AND id = ?`), partnerID, id)
	return q, notFound(err)
}

// UpdateStatus changes the status of one of the partner's quotations.
// A quotation owned by another partner is reported as not found.
func (r *Quotations) UpdateStatus(ctx context.Context, partnerID, id string, status domain.QuotationStatus) (domain.Quotation, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE partner_quotations SET status = ? WHERE partner_id = ? AND id = ?`), status, partnerID, id)
	if err != nil {
		return domain.Quotation{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Quotation{}, err
	}
	if n == 0 {
		return domain.Quotation{}, ErrNotFound
	}
	return r.Get(ctx, partnerID, id)
}
