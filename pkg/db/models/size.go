package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Size struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Label     string    `gorm:"column:label;not null;uniqueIndex"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (s *Size) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
