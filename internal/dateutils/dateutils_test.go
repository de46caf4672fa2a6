package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrftime(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		format   string
		expected time.Time
	}{
		{"iso", "2024-01-15", "%Y-%m-%d", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"swiss", "15.01.2024", "%d.%m.%Y", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"slashes", "01/15/2024", "%m/%d/%Y", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"with time", "2024-01-15 08:30:00", "%Y-%m-%d %H:%M:%S", time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)},
		{"surrounding spaces", "  2024-01-15 ", "%Y-%m-%d", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStrftime(tt.value, tt.format)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestParseStrftime_Errors(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		format string
	}{
		{"empty value", "", "%Y-%m-%d"},
		{"blank value", "   ", "%Y-%m-%d"},
		{"no format", "2024-01-15", ""},
		{"wrong layout", "15.01.2024", "%Y-%m-%d"},
		{"garbage", "yesterday", "%d.%m.%Y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStrftime(tt.value, tt.format)
			assert.Error(t, err)
		})
	}
}

func TestYearMonth(t *testing.T) {
	assert.Equal(t, "2024-01", YearMonth(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1999-12", YearMonth(time.Date(1999, 12, 31, 23, 59, 0, 0, time.UTC)))
}
