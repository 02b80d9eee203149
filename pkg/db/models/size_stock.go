package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SizeStock is the leaf inventory row of a variant: on-hand and reserved units plus price.
type SizeStock struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductColorID uuid.UUID       `gorm:"column:product_color_id;type:uuid;not null;uniqueIndex:size_stocks_variant_size_key"`
	SizeID         uuid.UUID       `gorm:"column:size_id;type:uuid;not null;uniqueIndex:size_stocks_variant_size_key"`
	ProductColor   *ProductColor   `gorm:"foreignKey:ProductColorID"`
	Size           Size            `gorm:"foreignKey:SizeID;constraint:OnDelete:RESTRICT"`
	Stock          int             `gorm:"column:stock;not null;default:0;check:stock >= 0"`
	ReservedStock  int             `gorm:"column:reserved_stock;not null;default:0;check:reserved_stock >= 0"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *SizeStock) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// Available returns the sellable quantity, never negative.
func (s SizeStock) Available() int {
	if avail := s.Stock - s.ReservedStock; avail > 0 {
		return avail
	}
	return 0
}
