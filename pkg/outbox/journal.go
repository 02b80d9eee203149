// Package outbox keeps the append-only journal of order and stock events.
// Events are written inside the caller's transaction so the journal never
// records a change that rolled back.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
)

var ErrTxRequired = errors.New("outbox: transaction required")

type Journal struct {
	db   *gorm.DB
	logg *logger.Logger
	now  func() time.Time
}

func NewJournal(db *gorm.DB, logg *logger.Logger) *Journal {
	return &Journal{db: db, logg: logg, now: time.Now}
}

// Emit appends event inside tx. The actor defaults to the one on ctx.
func (j *Journal) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return ErrTxRequired
	}
	if !event.EventType.IsValid() {
		return fmt.Errorf("outbox: unknown event type %q", event.EventType)
	}
	if event.AggregateType == "" {
		event.AggregateType = event.EventType.Aggregate()
	}
	if event.AggregateType != event.EventType.Aggregate() {
		return fmt.Errorf("outbox: %s cannot be filed under %q", event.EventType, event.AggregateType)
	}

	if event.Version == 0 {
		event.Version = 1
	}
	if event.Actor == nil {
		event.Actor = ActorFromContext(ctx)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = j.now().UTC()
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("outbox: encode %s data: %w", event.EventType, err)
	}
	env := envelope{
		Version:    event.Version,
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt,
		Actor:      event.Actor,
		Data:       data,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("outbox: encode envelope: %w", err)
	}

	row := models.OutboxEvent{
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       payload,
		CreatedAt:     event.OccurredAt,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("outbox: insert %s: %w", event.EventType, err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"event_id":       env.EventID,
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
	})
	j.logg.Debug(logCtx, "outbox.recorded")
	return nil
}

// Timeline returns an aggregate's events oldest first.
func (j *Journal) Timeline(ctx context.Context, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID) ([]Entry, error) {
	var rows []models.OutboxEvent
	err := j.db.WithContext(ctx).
		Where("aggregate_type = ? AND aggregate_id = ?", aggregateType, aggregateID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		var env envelope
		if err := json.Unmarshal(row.Payload, &env); err != nil {
			return nil, fmt.Errorf("outbox: decode event %s: %w", row.ID, err)
		}
		entries = append(entries, Entry{
			ID:         row.ID,
			EventType:  row.EventType,
			Version:    env.Version,
			OccurredAt: env.OccurredAt,
			Actor:      env.Actor,
			Data:       env.Data,
		})
	}
	return entries, nil
}
