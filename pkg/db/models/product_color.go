package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductColor is a variant: one product in one colour.
type ProductColor struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID      `gorm:"column:product_id;type:uuid;not null;uniqueIndex:product_colors_product_color_key"`
	ColorID    uuid.UUID      `gorm:"column:color_id;type:uuid;not null;uniqueIndex:product_colors_product_color_key"`
	Product    *Product       `gorm:"foreignKey:ProductID"`
	Color      Color          `gorm:"foreignKey:ColorID;constraint:OnDelete:RESTRICT"`
	Images     []ProductImage `gorm:"foreignKey:ProductColorID;constraint:OnDelete:CASCADE"`
	SizeStocks []SizeStock    `gorm:"foreignKey:ProductColorID;constraint:OnDelete:CASCADE"`
}

func (pc *ProductColor) BeforeCreate(*gorm.DB) error {
	assignID(&pc.ID)
	return nil
}

type ProductImage struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductColorID uuid.UUID `gorm:"column:product_color_id;type:uuid;not null;index"`
	URL            string    `gorm:"column:url;not null"`
	IsPrimary      bool      `gorm:"column:is_primary;not null;default:false"`
	SortOrder      int       `gorm:"column:sort_order;not null;default:0"`
}

func (pi *ProductImage) BeforeCreate(*gorm.DB) error {
	assignID(&pi.ID)
	return nil
}
