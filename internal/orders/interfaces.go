package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/internal/inventory"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/pagination"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	// LockOrder loads the order row FOR UPDATE with its items; nil when missing.
	LockOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	// FindOrderDetail loads items down to product, colour, size and images; nil when missing.
	FindOrderDetail(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, error)
}

// StockKeeper moves size stock for the order lifecycle inside the caller's transaction.
type StockKeeper interface {
	Reserve(ctx context.Context, tx *gorm.DB, lines []inventory.Line) (map[uuid.UUID]models.SizeStock, error)
	Commit(ctx context.Context, tx *gorm.DB, lines []inventory.Line) error
	Release(ctx context.Context, tx *gorm.DB, lines []inventory.Line) error
	Restock(ctx context.Context, tx *gorm.DB, lines []inventory.Line) error
}

type stockKeeper struct{}

// NewStockKeeper exposes the default row-locking inventory implementation.
func NewStockKeeper() StockKeeper {
	return stockKeeper{}
}

func (stockKeeper) Reserve(ctx context.Context, tx *gorm.DB, lines []inventory.Line) (map[uuid.UUID]models.SizeStock, error) {
	return inventory.Reserve(ctx, tx, lines)
}

func (stockKeeper) Commit(ctx context.Context, tx *gorm.DB, lines []inventory.Line) error {
	return inventory.Commit(ctx, tx, lines)
}

func (stockKeeper) Release(ctx context.Context, tx *gorm.DB, lines []inventory.Line) error {
	return inventory.Release(ctx, tx, lines)
}

func (stockKeeper) Restock(ctx context.Context, tx *gorm.DB, lines []inventory.Line) error {
	return inventory.Restock(ctx, tx, lines)
}
