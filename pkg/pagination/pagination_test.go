package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/resellerhub-backend/pkg/errors"
)

func TestCursorRoundTripKeepsNanoseconds(t *testing.T) {
	want := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.FixedZone("WIB", 7*3600)),
		ID:        uuid.New(),
	}
	encoded := EncodeCursor(want)
	require.NotContains(t, encoded, "=")

	got, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.True(t, want.CreatedAt.Equal(got.CreatedAt))
	require.Equal(t, time.UTC, got.CreatedAt.Location())
	require.Equal(t, want.ID, got.ID)
}

func TestParseCursorBlankIsFirstPage(t *testing.T) {
	got, err := ParseCursor("  ")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	for _, value := range []string{"%%%", "bm8tZG90", "MTIzLm5vdC1hLXV1aWQ", "YWJjLjAwMDAwMDAwLTAwMDAtMDAwMC0wMDAwLTAwMDAwMDAwMDAwMA"} {
		_, err := ParseCursor(value)
		require.ErrorIs(t, err, ErrInvalidCursor, value)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), value)
	}
}

func TestPageTrimsBufferRow(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]Cursor, 3)
	for i := range rows {
		rows[i] = Cursor{CreatedAt: base.Add(-time.Duration(i) * time.Minute), ID: uuid.New()}
	}
	key := func(c Cursor) Cursor { return c }

	page, next := Page(rows, 2, key)
	require.Len(t, page, 2)
	require.Equal(t, EncodeCursor(rows[1]), next)

	page, next = Page(rows[:2], 2, key)
	require.Len(t, page, 2)
	require.Empty(t, next)
}

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	require.Equal(t, 7, NormalizeLimit(7))
	require.Equal(t, 8, LimitWithBuffer(7))
}
