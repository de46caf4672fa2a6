// Package dateutils provides the date parsing and formatting used by record derivation.
package dateutils

import (
	"fmt"
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"
)

// DateLayoutYearMonth is the layout of the derived ym and effect_ym columns.
const DateLayoutYearMonth = "2006-01"

// ParseStrftime parses value with a strftime-style format such as "%d.%m.%Y".
// Surrounding whitespace is ignored; an empty value is an error.
func ParseStrftime(value, format string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if format == "" {
		return time.Time{}, fmt.Errorf("no date format configured")
	}

	t, err := timefmt.Parse(value, format)
	if err != nil {
		return time.Time{}, fmt.Errorf("date '%s' does not match format '%s': %w", value, format, err)
	}
	return t, nil
}

// YearMonth formats a date as YYYY-MM.
func YearMonth(date time.Time) string {
	return date.Format(DateLayoutYearMonth)
}
