package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/cloud"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/events"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/pricing"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/repository"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/validation"
)

var (
	ErrQuotationNotFound = errors.New("quotation not found")
	ErrInvalidStatus     = errors.New("invalid quotation status")
	ErrDocumentsDisabled = errors.New("quotation documents are not enabled")
)

type QuotationInput struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	SystemSize    int    `json:"system_size"`
	PanelBrand    string `json:"panel_brand"`
	InverterBrand string `json:"inverter_brand"`
	WiringBrand   string `json:"wiring_brand"`
}

// quote returns the pricing input for the selected system.
func (in QuotationInput) quote() pricing.QuoteInput {
	return pricing.QuoteInput{
		SystemSize:    in.SystemSize,
		PanelBrand:    in.PanelBrand,
		InverterBrand: in.InverterBrand,
		WiringBrand:   in.WiringBrand,
	}
}

// Document is the archived form of a submitted quotation.
type Document struct {
	Quotation domain.Quotation  `json:"quotation"`
	Partner   domain.Partner    `json:"partner"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	Total     string            `json:"total_display"`
}

type QuotationService struct {
	store     QuotationStore
	publisher events.Publisher
	archive   Archive
	now       func() time.Time
}

// Submit prices the selection, stores the quotation as new and announces it.
func (s *QuotationService) Submit(ctx context.Context, sess Session, in QuotationInput) (domain.Quotation, error) {
	v := validation.Violations{}
	validation.Required("customer_name", in.CustomerName, v)
	validation.Email("customer_email", in.CustomerEmail, v)
	validation.Required("customer_phone", in.CustomerPhone, v)
	if !v.Empty() {
		return domain.Quotation{}, &ValidationError{Violations: v}
	}

	breakdown, err := pricing.QuoteCost(in.quote())
	if err != nil {
		return domain.Quotation{}, err
	}

	q := domain.Quotation{
		ID:            uuid.NewString(),
		PartnerID:     sess.Partner.ID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerEmail: strings.TrimSpace(in.CustomerEmail),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		SystemSize:    in.SystemSize,
		PanelBrand:    in.PanelBrand,
		InverterBrand: in.InverterBrand,
		WiringBrand:   in.WiringBrand,
		TotalCost:     breakdown.TotalCost,
		Status:        domain.StatusNew,
		DateSubmitted: s.now().UTC(),
	}
	q, err = s.store.Create(ctx, q)
	if err != nil {
		return domain.Quotation{}, fmt.Errorf("store quotation: %w", err)
	}
	log.Info().Str("quotation_id", q.ID).Str("partner_id", q.PartnerID).Float64("total_cost", q.TotalCost).Msg("quotation submitted")

	if s.archive != nil {
		if err := s.archiveDocument(ctx, sess.Partner, q, breakdown); err != nil {
			log.Error().Err(err).Str("quotation_id", q.ID).Msg("quotation archive failed")
		}
	}
	s.publish(ctx, events.QuotationSubmitted, q)
	return q, nil
}

// List returns the partner's quotations, most recent first.
func (s *QuotationService) List(ctx context.Context, sess Session) ([]domain.Quotation, error) {
	list, err := s.store.ListByPartner(ctx, sess.Partner.ID)
	if err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	return list, nil
}

// UpdateStatus moves one of the partner's quotations to status. Any of the
// four statuses may follow any other.
func (s *QuotationService) UpdateStatus(ctx context.Context, sess Session, id string, status domain.QuotationStatus) (domain.Quotation, error) {
	if !status.Valid() {
		return domain.Quotation{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	q, err := s.store.UpdateStatus(ctx, sess.Partner.ID, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Quotation{}, ErrQuotationNotFound
	}
	if err != nil {
		return domain.Quotation{}, fmt.Errorf("update quotation status: %w", err)
	}
	s.publish(ctx, events.QuotationStatusChanged, q)
	return q, nil
}

// Document returns a short-lived download link for an archived quotation.
func (s *QuotationService) Document(ctx context.Context, sess Session, id string) (string, error) {
	if s.archive == nil {
		return "", ErrDocumentsDisabled
	}
	if _, err := s.store.Get(ctx, sess.Partner.ID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrQuotationNotFound
		}
		return "", fmt.Errorf("load quotation: %w", err)
	}
	url, err := s.archive.URL(ctx, cloud.QuotationKey(sess.Partner.ID, id))
	if err != nil {
		return "", fmt.Errorf("document link: %w", err)
	}
	return url, nil
}

func (s *QuotationService) archiveDocument(ctx context.Context, partner domain.Partner, q domain.Quotation, b pricing.Breakdown) error {
	body, err := json.MarshalIndent(Document{Quotation: q, Partner: partner, Breakdown: b, Total: pricing.FormatINR(q.TotalCost)}, "", "  ")
	if err != nil {
		return err
	}
	return s.archive.Put(ctx, cloud.QuotationKey(q.PartnerID, q.ID), body, "application/json")
}

func (s *QuotationService) publish(ctx context.Context, name string, payload any) {
	if err := s.publisher.Publish(ctx, name, payload); err != nil {
		log.Warn().Err(err).Str("event", name).Msg("event publish failed")
	}
}
