// Package event publishes domain events to the configured broker.
package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type defines event types in the application.
type Type string

const (
	// Job posting events
	TypePostingCreated     Type = "job_posting.created"
	TypePostingPublished   Type = "job_posting.published"
	TypePostingArchived    Type = "job_posting.archived"
	TypePostingRepublished Type = "job_posting.republished"
	TypePostingClosed      Type = "job_posting.closed"

	// Purchase events
	TypePurchaseStarted   Type = "purchase.started"
	TypePurchaseSucceeded Type = "purchase.succeeded"
	TypePurchaseFailed    Type = "purchase.failed"

	// Invitation events
	TypeInvitationIssued    Type = "invitation.issued"
	TypeInvitationViewed    Type = "invitation.viewed"
	TypeInvitationCompleted Type = "invitation.completed"
	TypeInvitationExpired   Type = "invitation.expired"
)

// Event represents a domain event.
type Event struct {
	ID          string         `json:"id"`
	Type        Type           `json:"type"`
	AggregateID string         `json:"aggregate_id"`
	ActorID     string         `json:"actor_id,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Version     int            `json:"version"`
}

// New creates an event for aggregateID stamped with the current time.
func New(t Type, aggregateID string, payload map[string]any) *Event {
	return &Event{
		ID:          uuid.NewString(),
		Type:        t,
		AggregateID: aggregateID,
		Payload:     payload,
		Timestamp:   time.Now().UTC(),
		Version:     1,
	}
}

// WithActor sets the user that caused the event.
func (e *Event) WithActor(actorID string) *Event {
	e.ActorID = actorID
	return e
}

func (e *Event) encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Publish failures never roll back the state
// change that produced the event; callers log and continue.
type Publisher interface {
	Publish(ctx context.Context, e *Event) error
	Close() error
}
