package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationParamsValidate(t *testing.T) {
	tests := []struct {
		name        string
		page        int
		perPage     int
		wantPage    int
		wantPerPage int
	}{
		{"defaults applied to zero values", 0, 0, 1, 15},
		{"negative page reset", -3, 10, 1, 10},
		{"per page capped at 100", 2, 500, 2, 100},
		{"valid values untouched", 3, 25, 3, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PaginationParams{Page: tt.page, PerPage: tt.perPage}
			p.Validate()
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPerPage, p.PerPage)
		})
	}
}

func TestPaginationParamsOffset(t *testing.T) {
	p := &PaginationParams{Page: 3, PerPage: 15}
	assert.Equal(t, 30, p.Offset())

	p = &PaginationParams{Page: 1, PerPage: 50}
	assert.Equal(t, 0, p.Offset())
}

func TestNewPagination(t *testing.T) {
	pg := NewPagination(2, 15, 31)

	assert.Equal(t, 2, pg.CurrentPage)
	assert.Equal(t, int64(31), pg.Total)
	assert.Equal(t, 3, pg.TotalPages)
	assert.True(t, pg.HasNext)
	assert.True(t, pg.HasPrev)

	last := NewPagination(3, 15, 31)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)
}

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	encoded := EncodeCursor("abc-123", createdAt)

	params := &CursorParams{Cursor: encoded}
	cursor, err := params.DecodeCursor()
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "abc-123", cursor.ID)
	assert.True(t, cursor.CreatedAt.Equal(createdAt))
}

func TestDecodeCursorEmpty(t *testing.T) {
	params := &CursorParams{}
	cursor, err := params.DecodeCursor()
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeCursorInvalid(t *testing.T) {
	params := &CursorParams{Cursor: "not base64!!"}
	_, err := params.DecodeCursor()
	assert.Error(t, err)
}

func TestCursorParamsValidate(t *testing.T) {
	c := &CursorParams{}
	c.Validate()
	assert.Equal(t, 15, c.Limit)
	assert.Equal(t, CursorDirectionNext, c.Direction)

	c = &CursorParams{Limit: 500, Direction: CursorDirectionPrev}
	c.Validate()
	assert.Equal(t, 100, c.Limit)
	assert.Equal(t, CursorDirectionPrev, c.Direction)
}

type cursorItem struct {
	ID        string
	CreatedAt time.Time
}

func TestNewCursorPagination(t *testing.T) {
	now := time.Now()
	items := []cursorItem{
		{ID: "a", CreatedAt: now},
		{ID: "b", CreatedAt: now.Add(time.Minute)},
		{ID: "c", CreatedAt: now.Add(2 * time.Minute)},
	}

	// Fetched limit+1, so one extra item signals another page
	pg, trimmed := NewCursorPagination(items, 2,
		func(i cursorItem) string { return i.ID },
		func(i cursorItem) time.Time { return i.CreatedAt },
	)

	assert.Len(t, trimmed, 2)
	assert.True(t, pg.HasNext)
	require.NotNil(t, pg.NextCursor)
	require.NotNil(t, pg.PrevCursor)

	next, err := (&CursorParams{Cursor: *pg.NextCursor}).DecodeCursor()
	require.NoError(t, err)
	assert.Equal(t, "b", next.ID)
}

func TestNewCursorPaginationExactPage(t *testing.T) {
	now := time.Now()
	items := []cursorItem{{ID: "a", CreatedAt: now}}

	pg, trimmed := NewCursorPagination(items, 2,
		func(i cursorItem) string { return i.ID },
		func(i cursorItem) time.Time { return i.CreatedAt },
	)

	assert.Len(t, trimmed, 1)
	assert.False(t, pg.HasNext)
}
