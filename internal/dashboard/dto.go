package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stats is the headline block of the dashboard.
type Stats struct {
	TotalProducts  int64           `json:"total_products"`
	TotalOrders    int64           `json:"total_orders"`
	TotalCustomers int64           `json:"total_customers"`
	Revenue        decimal.Decimal `json:"revenue"`
	Currency       string          `json:"currency"`
	LowStockItems  int64           `json:"low_stock_items"`
	PendingOrders  int64           `json:"pending_orders"`
}

type ActivityType string

const (
	ActivityOrder    ActivityType = "order"
	ActivityProduct  ActivityType = "product"
	ActivityLowStock ActivityType = "low_stock"
)

// Activity is one entry of the recent activity feed.
type Activity struct {
	ID          uuid.UUID    `json:"id"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
}

type recentOrder struct {
	ID           uuid.UUID
	RefID        string
	CustomerName string
	CreatedAt    time.Time
}

type recentProduct struct {
	ID        uuid.UUID
	Name      string
	UpdatedAt time.Time
}

type scarceStock struct {
	SizeStockID uuid.UUID
	ProductName string
	SizeLabel   string
	Stock       int
}
