package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
)

type ColorDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Hex  string    `json:"hex"`
}

type SizeDTO struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	SortOrder int       `json:"sort_order"`
}

type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ProductView is the aggregated read model of a product and its variants.
type ProductView struct {
	ID                 uuid.UUID         `json:"id"`
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Category           CategoryRef       `json:"category"`
	DiscountPercentage int               `json:"discount_percentage"`
	IsFeatured         bool              `json:"is_featured"`
	TotalStock         int               `json:"total_stock"`
	AvailableStock     int               `json:"available_stock"`
	Status             enums.StockStatus `json:"status"`
	MinPrice           *decimal.Decimal  `json:"min_price,omitempty"`
	MaxPrice           *decimal.Decimal  `json:"max_price,omitempty"`
	Variants           []VariantView     `json:"variants"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

type VariantView struct {
	ID           uuid.UUID       `json:"id"`
	Color        ColorDTO        `json:"color"`
	Images       []ImageView     `json:"images"`
	PrimaryImage *string         `json:"primary_image,omitempty"`
	Sizes        []SizeStockView `json:"sizes"`
}

type ImageView struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	IsPrimary bool      `json:"is_primary"`
	SortOrder int       `json:"sort_order"`
}

type SizeStockView struct {
	ID              uuid.UUID       `json:"id"`
	Size            SizeDTO         `json:"size"`
	Stock           int             `json:"stock"`
	ReservedStock   int             `json:"reserved_stock"`
	AvailableStock  int             `json:"available_stock"`
	Price           decimal.Decimal `json:"price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
}

// ListFilter narrows ListProducts. Zero values mean no filter.
type ListFilter struct {
	CategoryID *uuid.UUID
	Status     *enums.StockStatus
	Search     string
	Featured   *bool
}

// ProductInput is the full desired state of a product; updates replace variants.
type ProductInput struct {
	Name               string
	Description        string
	CategoryID         uuid.UUID
	DiscountPercentage int
	IsFeatured         bool
	Variants           []VariantInput
}

// VariantInput names an existing colour by ColorID or an inline NewColor.
type VariantInput struct {
	ColorID  *uuid.UUID
	NewColor *ColorInput
	Images   []ImageInput
	Sizes    []SizeInput
}

type ColorInput struct {
	Name string
	Hex  string
}

type ImageInput struct {
	URL       string
	IsPrimary bool
}

// SizeInput names an existing size by SizeID or an inline NewSizeLabel.
type SizeInput struct {
	SizeID       *uuid.UUID
	NewSizeLabel string
	Stock        int
	Price        decimal.Decimal
}
