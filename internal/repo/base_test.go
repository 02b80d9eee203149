package repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&widget{}))
	return conn
}

type ctxKey struct{}

func TestBaseBindsContext(t *testing.T) {
	base := NewBase(newTestDB(t))
	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	assert.Equal(t, "value", base.DB(ctx).Statement.Context.Value(ctxKey{}))
}

func TestBaseWithTxSeesUncommittedRows(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	ctx := context.Background()

	tx := db.Begin()
	defer tx.Rollback()
	require.NoError(t, tx.Create(&widget{Name: "bolt"}).Error)

	found, err := First[widget](base.WithTx(tx).DB(ctx).Where("name = ?", "bolt"))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "bolt", found.Name)

	assert.Equal(t, base, base.WithTx(nil))
}

func TestFirstReturnsNilWhenMissing(t *testing.T) {
	base := NewBase(newTestDB(t))
	found, err := First[widget](base.DB(context.Background()).Where("name = ?", "nut"))
	require.NoError(t, err)
	assert.Nil(t, found)
}
