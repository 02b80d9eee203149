package products

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ichaoui56/e-commerce-backoffice/internal/repo"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/pagination"
)

// totalStockExpr sums the on-hand stock of every size row of a product.
const totalStockExpr = `(SELECT COALESCE(SUM(ss.stock), 0)
	FROM size_stocks ss
	JOIN product_colors pc ON pc.id = ss.product_color_id
	WHERE pc.product_id = products.id)`

// Repository wires together catalog persistence: colours, sizes, products and
// their variant rows.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func (r *Repository) ListColors(ctx context.Context) ([]models.Color, error) {
	var rows []models.Color
	err := r.DB(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

// FindColor returns nil when the colour does not exist.
func (r *Repository) FindColor(ctx context.Context, id uuid.UUID) (*models.Color, error) {
	return repo.First[models.Color](r.DB(ctx).Where("id = ?", id))
}

// FindColorByName matches case-insensitively through the lowered name key.
func (r *Repository) FindColorByName(ctx context.Context, name string) (*models.Color, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	return repo.First[models.Color](r.DB(ctx).Where("name_key = ?", key))
}

func (r *Repository) CreateColor(ctx context.Context, color *models.Color) error {
	color.NameKey = strings.ToLower(strings.TrimSpace(color.Name))
	return r.DB(ctx).Create(color).Error
}

// ListSizes orders by sort order, then label.
func (r *Repository) ListSizes(ctx context.Context) ([]models.Size, error) {
	var rows []models.Size
	err := r.DB(ctx).Order("sort_order ASC").Order("label ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) FindSize(ctx context.Context, id uuid.UUID) (*models.Size, error) {
	return repo.First[models.Size](r.DB(ctx).Where("id = ?", id))
}

func (r *Repository) FindSizeByLabel(ctx context.Context, label string) (*models.Size, error) {
	return repo.First[models.Size](r.DB(ctx).Where("label = ?", label))
}

// NextSizeSortOrder returns one past the highest sort order in use.
func (r *Repository) NextSizeSortOrder(ctx context.Context) (int, error) {
	var max sql.NullInt64
	if err := r.DB(ctx).Model(&models.Size{}).Select("MAX(sort_order)").Row().Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

func (r *Repository) CreateSize(ctx context.Context, size *models.Size) error {
	return r.DB(ctx).Create(size).Error
}

func (r *Repository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func preloadCatalog(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Colors.Color").
		Preload("Colors.Images").
		Preload("Colors.SizeStocks.Size")
}

// FindProduct loads a product with every association used by BuildProductView.
// It returns nil when the product does not exist.
func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return repo.First[models.Product](preloadCatalog(r.DB(ctx)).Where("id = ?", id))
}

// FindProductRow loads the product row alone; nil when missing.
func (r *Repository) FindProductRow(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return repo.First[models.Product](r.DB(ctx).Where("id = ?", id))
}

// ListProducts returns up to limit+1 products newest first so the caller can
// detect a following page.
func (r *Repository) ListProducts(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Product, error) {
	qb := preloadCatalog(r.DB(ctx)).Model(&models.Product{})
	if filter.CategoryID != nil {
		qb = qb.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.Featured != nil {
		qb = qb.Where("products.is_featured = ?", *filter.Featured)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?)", pattern, pattern)
	}
	if filter.Status != nil {
		switch *filter.Status {
		case enums.StockStatusOutOfStock:
			qb = qb.Where(totalStockExpr + " = 0")
		case enums.StockStatusLowStock:
			qb = qb.Where(totalStockExpr+" BETWEEN 1 AND ?", enums.LowStockCeiling-1)
		case enums.StockStatusInStock:
			qb = qb.Where(totalStockExpr+" >= ?", enums.LowStockCeiling)
		}
	}

	var rows []models.Product
	err := qb.Scopes(pagination.Keyset("products", params)).Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Omit(clause.Associations).Create(product).Error
}

func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":                product.Name,
			"description":         product.Description,
			"category_id":         product.CategoryID,
			"discount_percentage": product.DiscountPercentage,
			"is_featured":         product.IsFeatured,
		}).Error
}

// LockVariants loads the product's variants and locks their size rows so
// concurrent reservations wait for the edit to finish.
func (r *Repository) LockVariants(ctx context.Context, productID uuid.UUID) ([]models.ProductColor, error) {
	var variants []models.ProductColor
	err := r.DB(ctx).
		Preload("SizeStocks", func(db *gorm.DB) *gorm.DB {
			return db.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id ASC")
		}).
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&variants).Error
	return variants, err
}

func (r *Repository) CreateVariant(ctx context.Context, variant *models.ProductColor) error {
	return r.DB(ctx).Omit(clause.Associations).Create(variant).Error
}

// ReplaceImages swaps every image of a variant.
func (r *Repository) ReplaceImages(ctx context.Context, variantID uuid.UUID, images []models.ProductImage) error {
	db := r.DB(ctx)
	if err := db.Where("product_color_id = ?", variantID).Delete(&models.ProductImage{}).Error; err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}
	for i := range images {
		images[i].ProductColorID = variantID
	}
	return db.Create(&images).Error
}

func (r *Repository) CreateSizeStock(ctx context.Context, row *models.SizeStock) error {
	return r.DB(ctx).Omit(clause.Associations).Create(row).Error
}

func (r *Repository) UpdateSizeStock(ctx context.Context, row *models.SizeStock) error {
	return r.DB(ctx).
		Model(&models.SizeStock{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{"stock": row.Stock, "price": row.Price}).Error
}

func (r *Repository) DeleteSizeStocks(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB(ctx).Where("id IN ?", ids).Delete(&models.SizeStock{}).Error
}

// DeleteVariant removes a variant with its images and size rows.
func (r *Repository) DeleteVariant(ctx context.Context, variantID uuid.UUID) error {
	db := r.DB(ctx)
	if err := db.Where("product_color_id = ?", variantID).Delete(&models.ProductImage{}).Error; err != nil {
		return err
	}
	if err := db.Where("product_color_id = ?", variantID).Delete(&models.SizeStock{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", variantID).Delete(&models.ProductColor{}).Error
}

// CountOrderReferences counts order items pointing at any of the size rows.
func (r *Repository) CountOrderReferences(ctx context.Context, sizeStockIDs []uuid.UUID) (int64, error) {
	if len(sizeStockIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB(ctx).Model(&models.OrderItem{}).Where("size_stock_id IN ?", sizeStockIDs).Count(&count).Error
	return count, err
}

// DeleteProduct removes the product and everything it owns.
func (r *Repository) DeleteProduct(ctx context.Context, productID uuid.UUID, variants []models.ProductColor) error {
	for _, variant := range variants {
		if err := r.DeleteVariant(ctx, variant.ID); err != nil {
			return err
		}
	}
	return r.DB(ctx).Where("id = ?", productID).Delete(&models.Product{}).Error
}
