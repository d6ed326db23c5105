package service

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/events"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/repository"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/validation"
)

// ErrInvalidInput is matched by every ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError carries the field problems found in a request.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Violations.Error() }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// QuotationStore persists partner quotations. It is satisfied by the sqlx
// repository and by the DynamoDB store.
type QuotationStore interface {
	Create(ctx context.Context, q domain.Quotation) (domain.Quotation, error)
	ListByPartner(ctx context.Context, partnerID string) ([]domain.Quotation, error)
	Get(ctx context.Context, partnerID, id string) (domain.Quotation, error)
	UpdateStatus(ctx context.Context, partnerID, id string, status domain.QuotationStatus) (domain.Quotation, error)
}

// Archive stores rendered quotation documents and hands out download links.
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	URL(ctx context.Context, key string) (string, error)
}

type Services struct {
	Repos      *repository.Repos
	Auth       *AuthService
	Quotations *QuotationService
	Summary    *SummaryService
	Leads      *LeadService
}

type options struct {
	store     QuotationStore
	publisher events.Publisher
	archive   Archive
	now       func() time.Time
}

type Option func(*options)

// WithQuotationStore replaces the default relational quotation store.
func WithQuotationStore(s QuotationStore) Option { return func(o *options) { o.store = s } }

func WithPublisher(p events.Publisher) Option { return func(o *options) { o.publisher = p } }

// WithArchive enables quotation documents.
func WithArchive(a Archive) Option { return func(o *options) { o.archive = a } }

func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func New(db *sqlx.DB, authKey string, opts ...Option) *Services {
	o := options{
		store:     repository.NewQuotations(db),
		publisher: events.Nop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	repos := repository.New(db)
	quotations := &QuotationService{store: o.store, publisher: o.publisher, archive: o.archive, now: o.now}
	return &Services{
		Repos:      repos,
		Auth:       &AuthService{repos: repos, key: []byte(authKey), now: o.now},
		Quotations: quotations,
		Summary:    &SummaryService{quotations: quotations, now: o.now},
		Leads:      &LeadService{repos: repos, publisher: o.publisher, now: o.now},
	}
}
