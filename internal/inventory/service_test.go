package inventory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ichaoui56/e-commerce-backoffice/internal/testdb"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/outbox"
)

func newInventoryService(t *testing.T, f stockFixture) (Service, *outbox.Journal) {
	t.Helper()
	journal := outbox.NewJournal(f.conn, nil)
	svc, err := NewService(ServiceParams{
		Repo:              NewRepository(f.conn),
		Tx:                db.NewFromGorm(f.conn),
		Outbox:            journal,
		LowStockThreshold: 10,
	})
	require.NoError(t, err)
	return svc, journal
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestUpdateStockRecordsAdjustment(t *testing.T) {
	f := newStockFixture(t, 4, 1)
	svc, journal := newInventoryService(t, f)
	ctx := context.Background()

	row, err := svc.UpdateStock(ctx, f.small.ID, 12)
	require.NoError(t, err)
	require.Equal(t, 12, row.Stock)
	require.Equal(t, "Evening dress", row.ProductName)
	require.Equal(t, "S", row.SizeLabel)
	require.Equal(t, enums.StockStatusInStock, row.Status)

	var variant models.ProductColor
	require.NoError(t, f.conn.First(&variant, "id = ?", f.small.ProductColorID).Error)
	entries, err := journal.Timeline(ctx, enums.AggregateProduct, variant.ProductID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, enums.EventStockAdjusted, entries[0].EventType)

	var data stockAdjustedEvent
	require.NoError(t, json.Unmarshal(entries[0].Data, &data))
	require.Equal(t, 4, data.PreviousStock)
	require.Equal(t, 12, data.Stock)
}

func TestUpdateStockRejectsBelowReserved(t *testing.T) {
	f := newStockFixture(t, 6, 1)
	svc, _ := newInventoryService(t, f)
	ctx := context.Background()
	require.NoError(t, f.conn.Model(&models.SizeStock{}).Where("id = ?", f.small.ID).Update("reserved_stock", 3).Error)

	_, err := svc.UpdateStock(ctx, f.small.ID, 2)
	requireCode(t, err, pkgerrors.CodeInvariant)
	require.Equal(t, 6, testdb.MustReload(t, f.conn, f.small.ID).Stock)

	_, err = svc.UpdateStock(ctx, f.small.ID, -1)
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.UpdateStock(ctx, uuid.New(), 3)
	requireCode(t, err, pkgerrors.CodeNotFound)

	row, err := svc.UpdateStock(ctx, f.small.ID, 3)
	require.NoError(t, err)
	require.Zero(t, row.AvailableStock)
}

func TestListLowStockAndOverview(t *testing.T) {
	f := newStockFixture(t, 0, 7)
	svc, _ := newInventoryService(t, f)
	ctx := context.Background()

	rows, err := svc.ListLowStock(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, f.small.ID, rows[0].SizeStockID)
	require.Equal(t, enums.StockStatusOutOfStock, rows[0].Status)
	require.Equal(t, enums.StockStatusLowStock, rows[1].Status)

	rows, err = svc.ListLowStock(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	all, err := svc.ListStock(ctx, "evening")
	require.NoError(t, err)
	require.Len(t, all, 2)
	none, err := svc.ListStock(ctx, "jacket")
	require.NoError(t, err)
	require.Empty(t, none)

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), overview.OutOfStock)
	require.Equal(t, int64(1), overview.LowStock)
	require.Zero(t, overview.InStock)
}
