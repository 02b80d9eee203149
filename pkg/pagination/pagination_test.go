package pagination

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCursorDecode(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 3, 1, 12, 30, 0, 500, time.UTC), ID: uuid.New()}
	out, err := Params{Cursor: in.String()}.Decode()
	require.NoError(t, err)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.ID, out.ID)

	first, err := Params{Cursor: "  "}.Decode()
	require.NoError(t, err)
	assert.Nil(t, first)

	for _, bad := range []string{"%%%", "bm90LWpzb24", Cursor{}.String()} {
		_, err = Params{Cursor: bad}.Decode()
		assert.ErrorIs(t, err, ErrInvalidCursor, bad)
	}
}

func TestPageSize(t *testing.T) {
	assert.Equal(t, DefaultLimit, Params{}.PageSize())
	assert.Equal(t, MaxLimit, Params{Limit: 1000}.PageSize())
	assert.Equal(t, 7, Params{Limit: 7}.PageSize())
}

type row struct {
	id uuid.UUID
	at time.Time
}

func TestPaginate(t *testing.T) {
	now := time.Now().UTC()
	rows := []row{{uuid.New(), now}, {uuid.New(), now.Add(-time.Second)}, {uuid.New(), now.Add(-2 * time.Second)}}
	key := func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} }

	page := Paginate(rows, Params{Limit: 2}, key)
	require.Len(t, page.Items, 2)
	next, err := Params{Cursor: page.NextCursor}.Decode()
	require.NoError(t, err)
	assert.Equal(t, rows[1].id, next.ID)

	last := Paginate(rows[2:], Params{Limit: 2}, key)
	assert.Len(t, last.Items, 1)
	assert.Empty(t, last.NextCursor)

	none := Paginate[row](nil, Params{Limit: 2}, key)
	assert.NotNil(t, none.Items)
}

type note struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

func TestKeysetWalksAllRows(t *testing.T) {
	dsn := fmt.Sprintf("file:pagination_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&note{}))

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := range 5 {
		require.NoError(t, db.Create(&note{ID: uuid.New(), CreatedAt: base.Add(time.Duration(i) * time.Minute)}).Error)
	}

	key := func(n note) Cursor { return Cursor{CreatedAt: n.CreatedAt, ID: n.ID} }
	seen := map[uuid.UUID]bool{}
	params := Params{Limit: 2}
	for range 5 {
		var rows []note
		require.NoError(t, db.Scopes(Keyset("", params)).Find(&rows).Error)
		page := Paginate(rows, params, key)
		for _, n := range page.Items {
			seen[n.ID] = true
		}
		if page.NextCursor == "" {
			break
		}
		params.Cursor = page.NextCursor
	}
	assert.Len(t, seen, 5)

	var rows []note
	err = db.Scopes(Keyset("", Params{Cursor: "%%%"})).Find(&rows).Error
	assert.ErrorIs(t, err, ErrInvalidCursor)
}
