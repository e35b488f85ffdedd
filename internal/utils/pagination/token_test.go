package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	issueDate := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(issueDate, createdAt, "7b0c6a8e-1f7e-4b0a-9d35-6f3f0b0f4a11")
	assert.NotEmpty(t, token)

	cursor, err := DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, issueDate.Equal(cursor.Date))
	assert.True(t, createdAt.Equal(cursor.CreatedAt))
	assert.Equal(t, "7b0c6a8e-1f7e-4b0a-9d35-6f3f0b0f4a11", cursor.ID)
}

func TestDecodeToken_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "%%%"},
		{"missing parts", rawToken("2026-01-01T00:00:00Z")},
		{"bad date", rawToken("yesterday|2026-01-01T00:00:00Z|id")},
		{"empty id", rawToken("2026-01-01T00:00:00Z|2026-01-01T00:00:00Z|")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestCursorBefore(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	created := day.Add(time.Hour)
	cursor := Cursor{Date: day, CreatedAt: created, ID: "m"}

	assert.True(t, cursor.Before(day.AddDate(0, 0, -1), created, "z"), "older date comes later")
	assert.False(t, cursor.Before(day.AddDate(0, 0, 1), created, "a"), "newer date came earlier")
	assert.True(t, cursor.Before(day, created.Add(-time.Minute), "z"))
	assert.True(t, cursor.Before(day, created, "a"))
	assert.False(t, cursor.Before(day, created, "m"), "the cursor row itself is not repeated")
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-5))
	assert.Equal(t, 50, NormalizeLimit(50))
	assert.Equal(t, MaxLimit, NormalizeLimit(10_000))
}

func rawToken(raw string) string {
	return base64.URLEncoding.EncodeToString([]byte(raw))
}
