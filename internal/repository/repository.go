package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

// Ping is used by the health endpoint.
func (r *Repos) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// CreateUserWithPartner inserts the auth user and its partner profile atomically.
func (r *Repos) CreateUserWithPartner(ctx context.Context, u domain.User, p domain.Partner) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM auth_users WHERE email = ?`), u.Email); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: email %s", ErrDuplicate, u.Email)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO auth_users(id, email, password_hash, created_at) VALUES (?,?,?,?)`),
		u.ID, u.Email, u.PasswordHash, u.CreatedAt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO partners(id, user_id, name, phone, email, address, business_type, created_at) VALUES (?,?,?,?,?,?,?,?)`),
		p.ID, p.UserID, p.Name, p.Phone, p.Email, p.Address, p.BusinessType, p.CreatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repos) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT id, email, password_hash, created_at FROM auth_users WHERE email = ?`),
		strings.ToLower(email))
	return u, notFound(err)
}

func (r *Repos) PartnerByUserID(ctx context.Context, userID string) (domain.Partner, error) {
	var p domain.Partner
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT id, user_id, name, phone, email, address, business_type, created_at FROM partners WHERE user_id = ?`), userID)
	return p, notFound(err)
}

func (r *Repos) CreateSession(ctx context.Context, s domain.SessionRecord) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO auth_sessions(token_hash, user_id, created_at, expires_at) VALUES (?,?,?,?)`),
		s.TokenHash, s.UserID, s.CreatedAt, s.ExpiresAt)
	return err
}

func (r *Repos) SessionByHash(ctx context.Context, hash string) (domain.SessionRecord, error) {
	var s domain.SessionRecord
	err := r.db.GetContext(ctx, &s, r.db.Rebind(`SELECT token_hash, user_id, created_at, expires_at FROM auth_sessions WHERE token_hash = ?`), hash)
	return s, notFound(err)
}

func (r *Repos) DeleteSession(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM auth_sessions WHERE token_hash = ?`), hash)
	return err
}

// DeleteExpiredSessions removes sessions that expired before now and reports how many.
func (r *Repos) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM auth_sessions WHERE expires_at < ?`), now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repos) InsertQuoteRequest(ctx context.Context, q domain.QuoteRequest) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO quote_requests(id, name, email, phone, location, monthly_bill, system_type, message, source, created_at) VALUES (?,?,?,?,?,?,?,?,?,?)`),
		q.ID, q.Name, q.Email, q.Phone, q.Location, q.MonthlyBill, q.SystemType, q.Message, q.Source, q.CreatedAt)
	return err
}

func (r *Repos) ListQuoteRequests(ctx context.Context, limit int) ([]domain.QuoteRequest, error) {
	var out []domain.QuoteRequest
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`SELECT id, name, email, phone, location, monthly_bill, system_type, message, source, created_at FROM quote_requests ORDER BY created_at DESC LIMIT ?`), limit)
	return out, err
}
