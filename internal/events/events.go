// Package events carries domain events and inbound quote requests over MQTT.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	// QuoteRequestTopic receives quote requests from field devices and kiosks.
	QuoteRequestTopic = "solar/quote-requests"
	// EventTopicPrefix is followed by the event name.
	EventTopicPrefix = "solar/events/"

	QuotationSubmitted     = "quotation.submitted"
	QuotationStatusChanged = "quotation.status_changed"
	LeadReceived           = "lead.received"
)

// Publisher emits domain events. Publishing is best effort: callers log
// failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, name string, payload any) error
}

// Envelope is the wire form of every event.
type Envelope struct {
	Name string          `json:"name"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data"`
}

func Topic(name string) string { return EventTopicPrefix + name }

// NameFromTopic strips the event prefix; ok is false for foreign topics.
func NameFromTopic(topic string) (string, bool) {
	if !strings.HasPrefix(topic, EventTopicPrefix) {
		return "", false
	}
	return strings.TrimPrefix(topic, EventTopicPrefix), true
}

func Encode(name string, at time.Time, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", name, err)
	}
	return json.Marshal(Envelope{Name: name, At: at.UTC(), Data: data})
}

func Decode(b []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Name == "" {
		return Envelope{}, fmt.Errorf("decode event: missing name")
	}
	return e, nil
}

// MQTT publishes events to a broker.
type MQTT struct {
	client mqtt.Client
	now    func() time.Time
}

// Dial connects to broker and returns the connected client.
func Dial(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	return client, nil
}

func NewMQTT(client mqtt.Client) *MQTT {
	return &MQTT{client: client, now: time.Now}
}

func (m *MQTT) Publish(ctx context.Context, name string, payload any) error {
	b, err := Encode(name, m.now(), payload)
	if err != nil {
		return err
	}
	token := m.client.Publish(Topic(name), 1, false, b)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MQTT) Close() { m.client.Disconnect(250) }

// Nop drops events; used when no broker is configured.
type Nop struct{}

func (Nop) Publish(_ context.Context, name string, _ any) error {
	log.Debug().Str("event", name).Msg("event dropped, no broker configured")
	return nil
}
