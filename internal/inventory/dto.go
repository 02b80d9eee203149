package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
)

// StockRow is one size stock line labelled with its product, colour and size.
type StockRow struct {
	SizeStockID    uuid.UUID         `json:"size_stock_id"`
	ProductID      uuid.UUID         `json:"product_id"`
	ProductName    string            `json:"product_name"`
	ColorName      string            `json:"color_name"`
	SizeLabel      string            `json:"size_label"`
	Stock          int               `json:"stock"`
	ReservedStock  int               `json:"reserved_stock"`
	AvailableStock int               `json:"available_stock"`
	Price          decimal.Decimal   `json:"price"`
	Status         enums.StockStatus `json:"status"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type stockRecord struct {
	SizeStockID   uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	ColorName     string
	SizeLabel     string
	SizeOrder     int
	Stock         int
	ReservedStock int
	Price         decimal.Decimal
	UpdatedAt     time.Time
}

func (r stockRecord) toRow(lowThreshold int) StockRow {
	available := r.Stock - r.ReservedStock
	if available < 0 {
		available = 0
	}
	return StockRow{
		SizeStockID:    r.SizeStockID,
		ProductID:      r.ProductID,
		ProductName:    r.ProductName,
		ColorName:      r.ColorName,
		SizeLabel:      r.SizeLabel,
		Stock:          r.Stock,
		ReservedStock:  r.ReservedStock,
		AvailableStock: available,
		Price:          r.Price,
		Status:         LineStatus(r.Stock, lowThreshold),
		UpdatedAt:      r.UpdatedAt,
	}
}

// LineStatus classifies a single size row against the low-stock threshold.
func LineStatus(stock, lowThreshold int) enums.StockStatus {
	switch {
	case stock <= 0:
		return enums.StockStatusOutOfStock
	case stock < lowThreshold:
		return enums.StockStatusLowStock
	default:
		return enums.StockStatusInStock
	}
}
