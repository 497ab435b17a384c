package service

import (
	"context"
	"time"
)

// Account event types published to the message queue.
const (
	EventUserRegistered = "user.registered"
	EventEmailVerified  = "user.email_verified"
	EventPasswordReset  = "user.password_reset"
)

// AccountEvent represents an account lifecycle event consumed by downstream
// services (CRM sync, analytics, fraud scoring).
type AccountEvent struct {
	RequestID  string    `json:"request_id,omitempty"` // For distributed tracing
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishAccountEvent publishes an account lifecycle event for async processing
	PublishAccountEvent(ctx context.Context, event *AccountEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
