package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Color is a reusable variant colour; names are unique ignoring case.
type Color struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	NameKey   string    `gorm:"column:name_key;not null;uniqueIndex"`
	Hex       string    `gorm:"column:hex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (c *Color) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
