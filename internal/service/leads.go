package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/events"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/pricing"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/repository"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/validation"
)

type LeadService struct {
	repos     *repository.Repos
	publisher events.Publisher
	now       func() time.Time
}

// Submit records a quote request from the public site or the MQTT ingest.
// Location and system type are optional but must be known keys when given.
func (s *LeadService) Submit(ctx context.Context, r domain.QuoteRequest) (domain.QuoteRequest, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)

	v := validation.Violations{}
	validation.Required("name", r.Name, v)
	validation.Email("email", r.Email, v)
	validation.Required("phone", r.Phone, v)
	if r.Location != "" {
		_, ok := pricing.FindLocation(r.Location)
		validation.OneOf("location", ok, v)
	}
	if r.SystemType != "" {
		_, ok := pricing.FindSystemType(r.SystemType)
		validation.OneOf("system_type", ok, v)
	}
	if r.MonthlyBill < 0 {
		v["monthly_bill"] = "must_be_positive"
	}
	if !v.Empty() {
		return domain.QuoteRequest{}, &ValidationError{Violations: v}
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Source == "" {
		r.Source = domain.LeadSourceWeb
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	if err := s.repos.InsertQuoteRequest(ctx, r); err != nil {
		return domain.QuoteRequest{}, fmt.Errorf("store quote request: %w", err)
	}
	log.Info().Str("lead_id", r.ID).Str("source", string(r.Source)).Msg("quote request received")

	if err := s.publisher.Publish(ctx, events.LeadReceived, r); err != nil {
		log.Warn().Err(err).Str("event", events.LeadReceived).Msg("event publish failed")
	}
	return r, nil
}

// Recent lists the newest quote requests for operators.
func (s *LeadService) Recent(ctx context.Context, limit int) ([]domain.QuoteRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := s.repos.ListQuoteRequests(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list quote requests: %w", err)
	}
	return list, nil
}
