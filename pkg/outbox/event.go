package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
)

// ActorRef identifies the admin behind an event.
type ActorRef struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role,omitempty"`
}

// DomainEvent is what services hand to Emit. Data is marshalled as JSON.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          any
	Version       int
	OccurredAt    time.Time
}

// Entry is a decoded journal row.
type Entry struct {
	ID         uuid.UUID             `json:"id"`
	EventType  enums.OutboxEventType `json:"event_type"`
	Version    int                   `json:"version"`
	OccurredAt time.Time             `json:"occurred_at"`
	Actor      *ActorRef             `json:"actor,omitempty"`
	Data       json.RawMessage       `json:"data"`
}

// envelope is the stored payload shape; bump version when Data changes shape.
type envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
