package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, DefaultLimit, NormalizeLimit(-3))
	require.Equal(t, 10, NormalizeLimit(10))
	require.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
	require.Equal(t, 11, LimitWithBuffer(10))
}

func TestCursorIDOnly(t *testing.T) {
	encoded := EncodeCursor(Cursor{ID: "ORD-00042"})
	parsed, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.Equal(t, "ORD-00042", parsed.ID)
	require.True(t, parsed.CreatedAt.IsZero())
}

func TestCursorWithTimestamp(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 30, 0, 123, time.UTC)
	encoded := EncodeCursor(Cursor{CreatedAt: at, ID: "b6f3c0a2-7d4f-4c1a-9e2b-0d1f2a3b4c5d"})
	parsed, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.True(t, at.Equal(parsed.CreatedAt))
	require.Equal(t, "b6f3c0a2-7d4f-4c1a-9e2b-0d1f2a3b4c5d", parsed.ID)
}

func TestParseCursorEmpty(t *testing.T) {
	parsed, err := ParseCursor("   ")
	require.NoError(t, err)
	require.Nil(t, parsed)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	_, err := ParseCursor("%%%")
	require.ErrorIs(t, err, ErrInvalidCursor)

	_, err = ParseCursor(base64.RawURLEncoding.EncodeToString([]byte("not-a-time|x")))
	require.Error(t, err)

	_, err = ParseCursor(base64.RawURLEncoding.EncodeToString([]byte("2025-01-01T00:00:00Z|")))
	require.Error(t, err)
}
