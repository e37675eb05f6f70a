package prescriptions

import (
	"strings"
	"time"
)

// OutputDateLayout is the format written to the prescription_date column.
const OutputDateLayout = "2006-01-02"

// dateLayouts are tried in order. Single-digit layout elements also accept
// zero-padded values, so "1/2/2006" covers "01/02/2006".
var dateLayouts = []string{
	"2006-1-2",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/1/2",
	"1/2/2006",
	"2.1.2006",
	"20060102",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// NormalizeDate rewrites raw as YYYY-MM-DD. The boolean is false when raw is
// blank or matches none of the known layouts.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(OutputDateLayout), true
		}
	}
	return "", false
}
