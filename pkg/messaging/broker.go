package messaging

import (
	"context"
	"time"
)

const EventPatientRegistered = "patient.registered"

// Publisher defines the interface for publishing events
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
	Close() error
}

// Message is the envelope written to the broker.
type Message struct {
	Type        string    `json:"type"`
	Payload     any       `json:"payload"`
	PublishedAt time.Time `json:"publishedAt"`
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }
