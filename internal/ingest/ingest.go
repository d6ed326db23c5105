// Package ingest handles MQTT traffic for the ingestor: quote requests coming
// in from the field and domain events going out to the sales team as alerts.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/cloud"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/events"
)

type LeadSubmitter interface {
	Submit(ctx context.Context, r domain.QuoteRequest) (domain.QuoteRequest, error)
}

type Alerter interface {
	SendAlert(ctx context.Context, subject, message string) error
}

// Message is one MQTT delivery, copied out of the client callback.
type Message struct {
	Topic   string
	Payload []byte
}

type Handler struct {
	leads  LeadSubmitter
	alerts Alerter
}

// NewHandler builds a handler; alerts may be nil, in which case events are only logged.
func NewHandler(leads LeadSubmitter, alerts Alerter) *Handler {
	return &Handler{leads: leads, alerts: alerts}
}

// Handle routes a message by topic.
func (h *Handler) Handle(ctx context.Context, m Message) error {
	if m.Topic == events.QuoteRequestTopic {
		return h.quoteRequest(ctx, m.Payload)
	}
	if _, ok := events.NameFromTopic(m.Topic); ok {
		return h.event(ctx, m.Payload)
	}
	log.Debug().Str("topic", m.Topic).Msg("ignoring message")
	return nil
}

func (h *Handler) quoteRequest(ctx context.Context, payload []byte) error {
	var r domain.QuoteRequest
	if err := json.Unmarshal(payload, &r); err != nil {
		return fmt.Errorf("decode quote request: %w", err)
	}
	r.ID = ""
	r.Source = domain.LeadSourceMQTT
	if _, err := h.leads.Submit(ctx, r); err != nil {
		return fmt.Errorf("submit quote request: %w", err)
	}
	return nil
}

func (h *Handler) event(ctx context.Context, payload []byte) error {
	e, err := events.Decode(payload)
	if err != nil {
		return err
	}

	var subject, message string
	switch e.Name {
	case events.QuotationSubmitted, events.QuotationStatusChanged:
		var q domain.Quotation
		if err := json.Unmarshal(e.Data, &q); err != nil {
			return fmt.Errorf("decode %s: %w", e.Name, err)
		}
		if e.Name == events.QuotationSubmitted {
			subject, message = cloud.QuotationAlert(q)
		} else {
			subject, message = cloud.StatusAlert(q)
		}
	case events.LeadReceived:
		var r domain.QuoteRequest
		if err := json.Unmarshal(e.Data, &r); err != nil {
			return fmt.Errorf("decode %s: %w", e.Name, err)
		}
		subject, message = cloud.LeadAlert(r)
	default:
		log.Debug().Str("event", e.Name).Msg("no alert for event")
		return nil
	}

	if h.alerts == nil {
		log.Info().Str("event", e.Name).Str("subject", subject).Msg("alert (sns disabled)")
		return nil
	}
	return h.alerts.SendAlert(ctx, subject, message)
}
