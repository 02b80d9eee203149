package dashboard

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/internal/repo"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
)

// Repository runs the read-only aggregate queries behind the dashboard.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}

func (r *Repository) CountOrders(ctx context.Context, status *enums.OrderStatus) (int64, error) {
	var n int64
	qb := r.DB(ctx).Model(&models.Order{})
	if status != nil {
		qb = qb.Where("status = ?", *status)
	}
	err := qb.Count(&n).Error
	return n, err
}

// CountCustomers counts distinct guest sessions, falling back to the phone
// number for orders placed without one.
func (r *Repository) CountCustomers(ctx context.Context) (int64, error) {
	var n sql.NullInt64
	err := r.DB(ctx).
		Model(&models.Order{}).
		Select("COUNT(DISTINCT COALESCE(NULLIF(guest_session_id, ''), phone))").
		Row().
		Scan(&n)
	return n.Int64, err
}

// Revenue sums line totals of delivered orders.
func (r *Repository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.DB(ctx).
		Table("order_items oi").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.status = ?", enums.OrderStatusDelivered).
		Select("SUM(oi.price_at_purchase * oi.quantity)").
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal.Round(2), nil
}

func (r *Repository) CountStockBelow(ctx context.Context, threshold int) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.SizeStock{}).Where("stock < ?", threshold).Count(&n).Error
	return n, err
}

func (r *Repository) RecentOrders(ctx context.Context, limit int) ([]recentOrder, error) {
	var rows []recentOrder
	err := r.DB(ctx).
		Model(&models.Order{}).
		Select("id, ref_id, customer_name, created_at").
		Order("created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) RecentProducts(ctx context.Context, limit int) ([]recentProduct, error) {
	var rows []recentProduct
	err := r.DB(ctx).
		Model(&models.Product{}).
		Select("id, name, updated_at").
		Order("updated_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) ScarceStock(ctx context.Context, below, limit int) ([]scarceStock, error) {
	var rows []scarceStock
	err := r.DB(ctx).
		Table("size_stocks ss").
		Select("ss.id AS size_stock_id, p.name AS product_name, sz.label AS size_label, ss.stock AS stock").
		Joins("JOIN product_colors pc ON pc.id = ss.product_color_id").
		Joins("JOIN products p ON p.id = pc.product_id").
		Joins("JOIN sizes sz ON sz.id = ss.size_id").
		Where("ss.stock < ?", below).
		Order("ss.stock ASC").
		Order("ss.id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
