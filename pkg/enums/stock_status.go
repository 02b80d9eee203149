package enums

import "fmt"

// StockStatus is derived from total stock on every read and never stored.
type StockStatus string

const (
	StockStatusOutOfStock StockStatus = "out_of_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusInStock    StockStatus = "in_stock"
)

// LowStockCeiling is the first total that counts as in stock.
const LowStockCeiling = 20

var validStockStatuses = []StockStatus{
	StockStatusOutOfStock,
	StockStatusLowStock,
	StockStatusInStock,
}

// StockStatusFor maps a total stock count to its status.
func StockStatusFor(totalStock int) StockStatus {
	switch {
	case totalStock <= 0:
		return StockStatusOutOfStock
	case totalStock < LowStockCeiling:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

func (s StockStatus) String() string {
	return string(s)
}

func (s StockStatus) IsValid() bool {
	for _, candidate := range validStockStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockStatus converts raw input into a StockStatus.
func ParseStockStatus(value string) (StockStatus, error) {
	for _, candidate := range validStockStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock status %q", value)
}
