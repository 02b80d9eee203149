// Package pagination implements keyset paging over (created_at, id), newest
// first. Cursors are opaque to clients.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Params is what a list endpoint receives from the query string.
type Params struct {
	Limit  int
	Cursor string
}

// PageSize clamps Limit into [1, MaxLimit], defaulting to DefaultLimit.
func (p Params) PageSize() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	}
	return p.Limit
}

// Decode returns nil for the first page.
func (p Params) Decode() (*Cursor, error) {
	token := strings.TrimSpace(p.Cursor)
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.ID == uuid.Nil || c.CreatedAt.IsZero() {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}

// Cursor points at the last row of the previous page.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        uuid.UUID `json:"id"`
}

func (c Cursor) String() string {
	c.CreatedAt = c.CreatedAt.UTC()
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Keyset scopes a query to the page after params.Cursor and fetches one extra
// row so Paginate can tell whether another page follows. table qualifies the
// columns when the query joins.
func Keyset(table string, params Params) func(*gorm.DB) *gorm.DB {
	createdAt, id := "created_at", "id"
	if table != "" {
		createdAt, id = table+"."+createdAt, table+"."+id
	}
	return func(db *gorm.DB) *gorm.DB {
		cursor, err := params.Decode()
		if err != nil {
			_ = db.AddError(err)
			return db
		}
		if cursor != nil {
			db = db.Where(
				fmt.Sprintf("((%s < ?) OR (%s = ? AND %s < ?))", createdAt, createdAt, id),
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
			)
		}
		return db.Order(createdAt + " DESC").Order(id + " DESC").Limit(params.PageSize() + 1)
	}
}

// Page is one window of a list.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Paginate drops the look-ahead row fetched by Keyset and derives the next
// cursor from the last kept item.
func Paginate[T any](rows []T, params Params, key func(T) Cursor) Page[T] {
	size := params.PageSize()
	page := Page[T]{Items: rows}
	if len(rows) > size {
		page.Items = rows[:size]
		page.NextCursor = key(page.Items[size-1]).String()
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page
}
