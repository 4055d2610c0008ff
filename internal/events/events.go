// Package events publishes card and session lifecycle events to a message
// broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/office-duty-card/internal/config"
)

// Subjects published by the service.
const (
	CardCreated  = "card.created"
	CardUpdated  = "card.updated"
	CardDeleted  = "card.deleted"
	CardExported = "card.exported"
	SignedIn     = "auth.signed_in"
	SignedOut    = "auth.signed_out"
)

// Event is the JSON payload of every published message.
type Event struct {
	Type   string    `json:"type"`
	CardID string    `json:"card_id,omitempty"`
	Actor  string    `json:"actor,omitempty"`
	At     time.Time `json:"at"`
}

// Publisher sends a payload on a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
	Close()
}

// Emit encodes and publishes an event. Failures are logged, never returned:
// events are informational and must not fail the operation that caused them.
func Emit(ctx context.Context, p Publisher, subject, cardID, actor string) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(Event{Type: subject, CardID: cardID, Actor: actor, At: time.Now().UTC()})
	if err != nil {
		log.WithError(err).Error("encode event")
		return
	}
	if err := p.Publish(ctx, subject, payload); err != nil {
		log.WithFields(log.Fields{"subject": subject, "card_id": cardID}).WithError(err).Warn("failed to publish event")
	}
}

// New connects the publisher selected by EVENTS_BACKEND.
func New(cfg config.Config) (Publisher, error) {
	switch strings.ToLower(cfg.EventsBackend) {
	case "", "none":
		return Noop{}, nil
	case "nats":
		return NewNATSPublisher(cfg.NATSURL, cfg.NATSToken)
	case "mqtt":
		return NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
	}
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(ctx context.Context, subject string, payload []byte) error { return nil }
func (Noop) Close() {}
