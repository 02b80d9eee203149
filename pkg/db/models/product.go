package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is the catalog listing; it owns its colour variants.
type Product struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name               string         `gorm:"column:name;not null"`
	Description        string         `gorm:"column:description;not null;default:''"`
	CategoryID         uuid.UUID      `gorm:"column:category_id;type:uuid;not null;index"`
	Category           Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	DiscountPercentage int            `gorm:"column:discount_percentage;not null;default:0"`
	IsFeatured         bool           `gorm:"column:is_featured;not null;default:false"`
	Colors             []ProductColor `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
