package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/internal/repo"
)

const stockRowSelect = `ss.id AS size_stock_id,
	p.id AS product_id,
	p.name AS product_name,
	c.name AS color_name,
	sz.label AS size_label,
	sz.sort_order AS size_order,
	ss.stock,
	ss.reserved_stock,
	ss.price,
	ss.updated_at`

// Repository reads labelled stock rows for reporting.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func (r *Repository) stockQuery(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Table("size_stocks ss").
		Select(stockRowSelect).
		Joins("JOIN product_colors pc ON pc.id = ss.product_color_id").
		Joins("JOIN products p ON p.id = pc.product_id").
		Joins("JOIN colors c ON c.id = pc.color_id").
		Joins("JOIN sizes sz ON sz.id = ss.size_id")
}

// FindRow returns nil when the row does not exist.
func (r *Repository) FindRow(ctx context.Context, id uuid.UUID) (*stockRecord, error) {
	var rows []stockRecord
	if err := r.stockQuery(ctx).Where("ss.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ListBelow returns rows with stock under threshold, lowest first.
func (r *Repository) ListBelow(ctx context.Context, threshold, limit int) ([]stockRecord, error) {
	var rows []stockRecord
	qb := r.stockQuery(ctx).
		Where("ss.stock < ?", threshold).
		Order("ss.stock ASC").
		Order("p.name ASC").
		Order("sz.sort_order ASC")
	if limit > 0 {
		qb = qb.Limit(limit)
	}
	err := qb.Scan(&rows).Error
	return rows, err
}

// ListAll returns every row ordered by product, colour and size, optionally
// narrowed by a product name search.
func (r *Repository) ListAll(ctx context.Context, search string) ([]stockRecord, error) {
	var rows []stockRecord
	qb := r.stockQuery(ctx)
	if search = strings.TrimSpace(search); search != "" {
		qb = qb.Where("LOWER(p.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	err := qb.
		Order("p.name ASC").
		Order("c.name ASC").
		Order("sz.sort_order ASC").
		Scan(&rows).Error
	return rows, err
}

// Counts buckets rows by stock level: zero, under threshold, and the rest.
func (r *Repository) Counts(ctx context.Context, lowThreshold int) (out, low, in int64, err error) {
	var counts struct {
		OutCount int64
		LowCount int64
		InCount  int64
	}
	err = r.DB(ctx).
		Table("size_stocks").
		Select(`COALESCE(SUM(CASE WHEN stock <= 0 THEN 1 ELSE 0 END), 0) AS out_count,
			COALESCE(SUM(CASE WHEN stock > 0 AND stock < ? THEN 1 ELSE 0 END), 0) AS low_count,
			COALESCE(SUM(CASE WHEN stock >= ? THEN 1 ELSE 0 END), 0) AS in_count`, lowThreshold, lowThreshold).
		Scan(&counts).Error
	return counts.OutCount, counts.LowCount, counts.InCount, err
}
