package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
)

// CreateOrderInput carries the customer details and requested lines of a new order.
type CreateOrderInput struct {
	CustomerName   string
	Phone          string
	City           string
	Address        *string
	GuestSessionID *string
	ShippingCost   decimal.Decimal
	ShippingOption *string
	Items          []ItemInput
}

type ItemInput struct {
	SizeStockID uuid.UUID
	Quantity    int
}

// ListFilter narrows ListOrders. Search matches the ref id, customer name or phone.
type ListFilter struct {
	Status *enums.OrderStatus
	Search string
}

// OrderDTO is the order read model with line details and totals.
type OrderDTO struct {
	ID             uuid.UUID         `json:"id"`
	RefID          string            `json:"ref_id"`
	CustomerName   string            `json:"customer_name"`
	Phone          string            `json:"phone"`
	City           string            `json:"city"`
	Address        *string           `json:"address,omitempty"`
	GuestSessionID *string           `json:"guest_session_id,omitempty"`
	ShippingOption *string           `json:"shipping_option,omitempty"`
	Status         enums.OrderStatus `json:"status"`
	StockReserved  bool              `json:"stock_reserved"`
	StockReduced   bool              `json:"stock_reduced"`
	Items          []OrderItemDTO    `json:"items"`
	ItemCount      int               `json:"item_count"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	ShippingCost   decimal.Decimal   `json:"shipping_cost"`
	GrandTotal     decimal.Decimal   `json:"grand_total"`
	Currency       string            `json:"currency"`
	ConfirmedAt    *time.Time        `json:"confirmed_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type OrderItemDTO struct {
	ID              uuid.UUID       `json:"id"`
	SizeStockID     uuid.UUID       `json:"size_stock_id"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	ProductName     string          `json:"product_name"`
	ColorName       string          `json:"color_name"`
	SizeLabel       string          `json:"size_label"`
	ImageURL        *string         `json:"image_url,omitempty"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// OrderCreatedEvent is journaled when an order reserves its stock.
type OrderCreatedEvent struct {
	RefID     string          `json:"ref_id"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderStatusEvent is journaled on approval and status changes.
type OrderStatusEvent struct {
	RefID string            `json:"ref_id"`
	From  enums.OrderStatus `json:"from"`
	To    enums.OrderStatus `json:"to"`
	// StockAction is "commit", "release", "restock" or empty.
	StockAction string `json:"stock_action,omitempty"`
}

type OrderDeletedEvent struct {
	RefID       string            `json:"ref_id"`
	Status      enums.OrderStatus `json:"status"`
	StockAction string            `json:"stock_action,omitempty"`
}
