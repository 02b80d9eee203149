package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
)

// Order is a customer order placed against reserved size stock.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	RefID          string            `gorm:"column:ref_id;not null;uniqueIndex"`
	CustomerName   string            `gorm:"column:customer_name;not null"`
	Phone          string            `gorm:"column:phone;not null"`
	City           string            `gorm:"column:city;not null"`
	Address        *string           `gorm:"column:address"`
	GuestSessionID *string           `gorm:"column:guest_session_id"`
	ShippingCost   decimal.Decimal   `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0"`
	ShippingOption *string           `gorm:"column:shipping_option"`
	Status         enums.OrderStatus `gorm:"column:status;not null;default:'pending';index"`
	StockReserved  bool              `gorm:"column:stock_reserved;not null;default:false"`
	StockReduced   bool              `gorm:"column:stock_reduced;not null;default:false"`
	Items          []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ConfirmedAt    *time.Time        `gorm:"column:confirmed_at"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// OrderItem snapshots the unit price at purchase time.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	SizeStockID     uuid.UUID       `gorm:"column:size_stock_id;type:uuid;not null;index"`
	SizeStock       *SizeStock      `gorm:"foreignKey:SizeStockID;constraint:OnDelete:RESTRICT"`
	Quantity        int             `gorm:"column:quantity;not null"`
	PriceAtPurchase decimal.Decimal `gorm:"column:price_at_purchase;type:numeric(12,2);not null"`
}

func (oi *OrderItem) BeforeCreate(*gorm.DB) error {
	assignID(&oi.ID)
	return nil
}
