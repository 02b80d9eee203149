package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
)

func newOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:outbox_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.OutboxEvent{}))
	return conn
}

func TestEmitAndTimeline(t *testing.T) {
	conn := newOutboxDB(t)
	svc := NewJournal(conn, nil)
	ctx := context.Background()
	orderID := uuid.New()
	actor := &ActorRef{UserID: uuid.New(), Role: "admin"}
	start := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(ctx, tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         actor,
			Data:          map[string]any{"refId": "ORD-ABCDEFGH"},
			OccurredAt:    start,
		}); err != nil {
			return err
		}
		return svc.Emit(ctx, tx, DomainEvent{
			EventType:     enums.EventOrderApproved,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data:          map[string]any{"status": "confirmed"},
			OccurredAt:    start.Add(time.Minute),
		})
	}))

	entries, err := svc.Timeline(ctx, enums.AggregateOrder, orderID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, enums.EventOrderCreated, entries[0].EventType)
	assert.Equal(t, 1, entries[0].Version)
	assert.Equal(t, actor.UserID, entries[0].Actor.UserID)
	assert.Equal(t, enums.EventOrderApproved, entries[1].EventType)

	var data map[string]string
	require.NoError(t, json.Unmarshal(entries[0].Data, &data))
	assert.Equal(t, "ORD-ABCDEFGH", data["refId"])
}

func TestEmitRolledBackWithTransaction(t *testing.T) {
	conn := newOutboxDB(t)
	svc := NewJournal(conn, nil)
	orderID := uuid.New()

	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderDeleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
		}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	entries, err := svc.Timeline(context.Background(), enums.AggregateOrder, orderID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewJournal(nil, nil)
	require.ErrorIs(t, svc.Emit(context.Background(), nil, DomainEvent{}), ErrTxRequired)
}

func TestEmitRejectsUnknownEventType(t *testing.T) {
	conn := newOutboxDB(t)
	svc := NewJournal(conn, nil)

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     "order_exploded",
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
		})
	})
	require.Error(t, err)

	err = conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventStockAdjusted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
		})
	})
	require.Error(t, err)
}

func TestEmitTakesActorFromContext(t *testing.T) {
	conn := newOutboxDB(t)
	svc := NewJournal(conn, nil)
	actor := ActorRef{UserID: uuid.New(), Role: "admin"}
	ctx := ContextWithActor(context.Background(), actor)
	productID := uuid.New()

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, DomainEvent{
			EventType:   enums.EventStockAdjusted,
			AggregateID: productID,
			Data:        map[string]int{"stock": 3},
		})
	}))

	entries, err := svc.Timeline(context.Background(), enums.AggregateProduct, productID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Actor)
	require.Equal(t, actor.UserID, entries[0].Actor.UserID)
	require.Nil(t, ActorFromContext(context.Background()))
}
