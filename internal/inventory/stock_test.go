package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/internal/testdb"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
)

type stockFixture struct {
	conn   *gorm.DB
	small  models.SizeStock
	medium models.SizeStock
}

func newStockFixture(t *testing.T, smallStock, mediumStock int) stockFixture {
	t.Helper()
	conn := testdb.Open(t, "inventory")
	category := testdb.MustCategory(t, conn, "Dresses", nil)
	color := testdb.MustColor(t, conn, "Black", "#000000")
	s := testdb.MustSize(t, conn, "S", 1)
	m := testdb.MustSize(t, conn, "M", 2)
	_, rows := testdb.MustProduct(t, conn, "Evening dress", category, color,
		testdb.StockLine{Size: s, Stock: smallStock, Price: "450.00"},
		testdb.StockLine{Size: m, Stock: mediumStock, Price: "470.00"},
	)
	return stockFixture{conn: conn, small: rows[0], medium: rows[1]}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), typed.Message())
	return typed
}

func TestAggregateMergesAndValidates(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	merged, err := Aggregate([]Line{{a, 2}, {b, 1}, {a, 3}})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	total := map[uuid.UUID]int{}
	for _, line := range merged {
		total[line.SizeStockID] = line.Quantity
	}
	require.Equal(t, 5, total[a])
	require.Equal(t, 1, total[b])
	require.True(t, merged[0].SizeStockID.String() < merged[1].SizeStockID.String())

	_, err = Aggregate([]Line{{a, 0}})
	requireCode(t, err, pkgerrors.CodeValidation)
	_, err = Aggregate([]Line{{uuid.Nil, 1}})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestReserveCommitRelease(t *testing.T) {
	f := newStockFixture(t, 5, 2)
	ctx := context.Background()

	require.NoError(t, f.conn.Transaction(func(tx *gorm.DB) error {
		locked, err := Reserve(ctx, tx, []Line{{f.small.ID, 2}, {f.small.ID, 1}, {f.medium.ID, 2}})
		if err != nil {
			return err
		}
		require.Equal(t, "Evening dress", locked[f.small.ID].ProductColor.Product.Name)
		require.Equal(t, 3, locked[f.small.ID].ReservedStock)
		return nil
	}))
	small := testdb.MustReload(t, f.conn, f.small.ID)
	require.Equal(t, 5, small.Stock)
	require.Equal(t, 3, small.ReservedStock)
	require.Equal(t, 2, small.Available())

	require.NoError(t, f.conn.Transaction(func(tx *gorm.DB) error {
		return Commit(ctx, tx, []Line{{f.small.ID, 3}})
	}))
	small = testdb.MustReload(t, f.conn, f.small.ID)
	require.Equal(t, 2, small.Stock)
	require.Zero(t, small.ReservedStock)

	require.NoError(t, f.conn.Transaction(func(tx *gorm.DB) error {
		return Release(ctx, tx, []Line{{f.medium.ID, 2}})
	}))
	medium := testdb.MustReload(t, f.conn, f.medium.ID)
	require.Equal(t, 2, medium.Stock)
	require.Zero(t, medium.ReservedStock)

	require.NoError(t, f.conn.Transaction(func(tx *gorm.DB) error {
		return Restock(ctx, tx, []Line{{f.small.ID, 3}})
	}))
	require.Equal(t, 5, testdb.MustReload(t, f.conn, f.small.ID).Stock)
}

func TestReserveRejectsShortageAndRollsBack(t *testing.T) {
	f := newStockFixture(t, 5, 1)
	ctx := context.Background()

	err := f.conn.Transaction(func(tx *gorm.DB) error {
		_, err := Reserve(ctx, tx, []Line{{f.small.ID, 2}, {f.medium.ID, 2}})
		return err
	})
	typed := requireCode(t, err, pkgerrors.CodeInsufficient)
	shortage, ok := typed.Details().(Shortage)
	require.True(t, ok)
	require.Equal(t, f.medium.ID, shortage.SizeStockID)
	require.Equal(t, "Evening dress", shortage.Product)
	require.Equal(t, "Black", shortage.Color)
	require.Equal(t, "M", shortage.Size)
	require.Equal(t, 2, shortage.Requested)
	require.Equal(t, 1, shortage.Available)

	require.Zero(t, testdb.MustReload(t, f.conn, f.small.ID).ReservedStock)
	require.Zero(t, testdb.MustReload(t, f.conn, f.medium.ID).ReservedStock)
}

func TestReserveCountsExistingReservations(t *testing.T) {
	f := newStockFixture(t, 3, 1)
	ctx := context.Background()
	require.NoError(t, f.conn.Model(&models.SizeStock{}).Where("id = ?", f.small.ID).Update("reserved_stock", 2).Error)

	err := f.conn.Transaction(func(tx *gorm.DB) error {
		_, err := Reserve(ctx, tx, []Line{{f.small.ID, 2}})
		return err
	})
	requireCode(t, err, pkgerrors.CodeInsufficient)
}

func TestGuardedUpdatesRefuseInconsistentState(t *testing.T) {
	f := newStockFixture(t, 3, 1)
	ctx := context.Background()

	err := f.conn.Transaction(func(tx *gorm.DB) error {
		return Commit(ctx, tx, []Line{{f.small.ID, 1}})
	})
	requireCode(t, err, pkgerrors.CodeInvariant)

	err = f.conn.Transaction(func(tx *gorm.DB) error {
		return Release(ctx, tx, []Line{{f.small.ID, 1}})
	})
	requireCode(t, err, pkgerrors.CodeInvariant)

	require.Equal(t, 3, testdb.MustReload(t, f.conn, f.small.ID).Stock)
}

func TestLockSizeStocksMissingRow(t *testing.T) {
	f := newStockFixture(t, 1, 1)
	ctx := context.Background()

	err := f.conn.Transaction(func(tx *gorm.DB) error {
		_, err := LockSizeStocks(ctx, tx, []uuid.UUID{f.small.ID, uuid.New()})
		return err
	})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = LockSizeStocks(ctx, nil, []uuid.UUID{f.small.ID})
	requireCode(t, err, pkgerrors.CodeDependency)
}

func TestLineStatus(t *testing.T) {
	require.Equal(t, "out_of_stock", LineStatus(0, 10).String())
	require.Equal(t, "low_stock", LineStatus(9, 10).String())
	require.Equal(t, "in_stock", LineStatus(10, 10).String())
}
