package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ichaoui56/e-commerce-backoffice/internal/repo"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/pagination"
)

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *repository) LockOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return repo.First[models.Order](r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("id = ?", id))
}

func (r *repository) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	db := r.DB(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&models.Order{}).Error
}

func preloadDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items.SizeStock.Size").
		Preload("Items.SizeStock.ProductColor.Color").
		Preload("Items.SizeStock.ProductColor.Product").
		Preload("Items.SizeStock.ProductColor.Images")
}

func (r *repository) FindOrderDetail(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return repo.First[models.Order](preloadDetail(r.DB(ctx)).Where("id = ?", id))
}

// ListOrders returns up to limit+1 orders newest first.
func (r *repository) ListOrders(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, error) {
	qb := preloadDetail(r.DB(ctx)).Model(&models.Order{})
	if filter.Status != nil {
		qb = qb.Where("status = ?", *filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(ref_id) LIKE ? OR LOWER(customer_name) LIKE ? OR phone LIKE ?)", pattern, pattern, pattern)
	}

	var rows []models.Order
	err := qb.Scopes(pagination.Keyset("", params)).Find(&rows).Error
	return rows, err
}
