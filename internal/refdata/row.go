package refdata

import (
	"math"
	"strconv"
	"strings"
)

// Row is one table record keyed by column header.
type Row map[string]string

// Get returns the trimmed cell for column, or "" when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Number parses the cell for column. See ParseNumber.
func (r Row) Number(column string) (float64, bool) {
	return ParseNumber(r[column])
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

var placeholders = map[string]struct{}{
	"":      {},
	"-":     {},
	"--":    {},
	"---":   {},
	"N/A":   {},
	"NA":    {},
	"NAN":   {},
	"NONE":  {},
	"NULL":  {},
	"#N/A":  {},
	"NOTAP": {},
}

// IsPlaceholder reports whether cell is one of the missing-data markers.
func IsPlaceholder(cell string) bool {
	_, ok := placeholders[strings.ToUpper(strings.TrimSpace(cell))]
	return ok
}

// ParseNumber reads a table cell as a finite float. Placeholder markers such as
// "--" or "N/A" and anything else non-numeric report ok=false; they are missing
// data, never zero.
func ParseNumber(cell string) (float64, bool) {
	if IsPlaceholder(cell) {
		return 0, false
	}
	s := strings.TrimSpace(cell)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
