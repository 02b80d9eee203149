// Package testdb opens throwaway sqlite databases migrated with the gorm
// models and seeds catalog fixtures for repository and service tests.
package testdb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
)

// Open returns an isolated in-memory database with every table migrated.
func Open(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_foreign_keys=on", name, uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return conn
}

func MustCategory(t *testing.T, db *gorm.DB, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	category := &models.Category{
		Name:     name,
		Slug:     strings.ToLower(strings.ReplaceAll(name, " ", "-")) + "-" + uuid.NewString()[:6],
		ParentID: parentID,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func MustColor(t *testing.T, db *gorm.DB, name, hex string) *models.Color {
	t.Helper()
	color := &models.Color{Name: name, NameKey: strings.ToLower(name), Hex: hex}
	if err := db.Create(color).Error; err != nil {
		t.Fatalf("create color: %v", err)
	}
	return color
}

func MustSize(t *testing.T, db *gorm.DB, label string, sortOrder int) *models.Size {
	t.Helper()
	size := &models.Size{Label: label, SortOrder: sortOrder}
	if err := db.Create(size).Error; err != nil {
		t.Fatalf("create size: %v", err)
	}
	return size
}

// StockLine describes one size row of a fixture variant.
type StockLine struct {
	Size  *models.Size
	Stock int
	Price string
}

// MustProduct creates a product with a single colour variant and the given size rows.
func MustProduct(t *testing.T, db *gorm.DB, name string, category *models.Category, color *models.Color, lines ...StockLine) (*models.Product, []models.SizeStock) {
	t.Helper()
	product := &models.Product{Name: name, CategoryID: category.ID}
	if err := db.Omit("Category", "Colors").Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	variant := &models.ProductColor{ProductID: product.ID, ColorID: color.ID}
	if err := db.Omit("Color", "Images", "SizeStocks", "Product").Create(variant).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	image := &models.ProductImage{ProductColorID: variant.ID, URL: "https://cdn.example.com/" + uuid.NewString() + ".webp", IsPrimary: true}
	if err := db.Create(image).Error; err != nil {
		t.Fatalf("create image: %v", err)
	}

	stocks := make([]models.SizeStock, 0, len(lines))
	for _, line := range lines {
		row := models.SizeStock{
			ProductColorID: variant.ID,
			SizeID:         line.Size.ID,
			Stock:          line.Stock,
			Price:          decimal.RequireFromString(line.Price),
		}
		if err := db.Omit("Size", "ProductColor").Create(&row).Error; err != nil {
			t.Fatalf("create size stock: %v", err)
		}
		stocks = append(stocks, row)
	}
	return product, stocks
}

// MustReload fetches the current state of a size stock row.
func MustReload(t *testing.T, db *gorm.DB, id uuid.UUID) models.SizeStock {
	t.Helper()
	var row models.SizeStock
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		t.Fatalf("reload size stock: %v", err)
	}
	return row
}
