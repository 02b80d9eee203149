// Package repo holds what the domain repositories share: a connection that
// can be rebound to a transaction, and not-found handling.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB binds ctx to the connection.
func (b Base) DB(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

// WithTx rebinds to tx; a nil tx keeps the current connection.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// First loads the first row of query, returning nil without error when no
// row matches.
func First[T any](query *gorm.DB) (*T, error) {
	var row T
	err := query.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
