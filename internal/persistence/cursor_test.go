package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Z-testacc/ActiLeap/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	original := &domain.Cursor{
		Date: time.Date(2026, time.August, 30, 7, 15, 0, 123456789, time.UTC),
		ID:   "log-42",
	}

	token := EncodeCursor(original)
	require.NotEmpty(t, token)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	require.True(t, decoded.Date.Equal(original.Date))
	require.Equal(t, original.ID, decoded.ID)
}

func TestEncodeNilCursor(t *testing.T) {
	require.Empty(t, EncodeCursor(nil))
}

func TestDecodeEmptyToken(t *testing.T) {
	decoded, err := DecodeCursor("  ")
	require.NoError(t, err)
	require.Nil(t, decoded)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("!!not-base64!!")
	require.Error(t, err)

	// Valid base64, wrong interior shape.
	_, err = DecodeCursor("bm8tc2VwYXJhdG9y")
	require.Error(t, err)
}
