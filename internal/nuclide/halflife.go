package nuclide

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"hazcat/pkg/domain"
)

// unitSeconds converts half-life unit suffixes to seconds. A year is the mean
// Gregorian year. "ls" is how µs comes out of the extracted nomenclature tables.
var unitSeconds = map[string]float64{
	"us":  1e-6,
	"µs":  1e-6,
	"μs":  1e-6,
	"ls":  1e-6,
	"ms":  1e-3,
	"s":   1,
	"m":   60,
	"min": 60,
	"h":   3600,
	"d":   86400,
	"y":   31556952,
}

// unitsByLength lists suffixes longest first so "ms" wins over "s".
var unitsByLength = []string{"min", "µs", "μs", "us", "ls", "ms", "s", "m", "h", "d", "y"}

// ParseHalfLife converts a half-life string such as "30.17y", "6.015h" or
// "7.22 m" to seconds. A string whose unit is recognised but whose number is
// not yields a NumericInputError; anything else yields a HalfLifeUnitError.
func ParseHalfLife(value string) (float64, error) {
	s := strings.TrimSpace(value)
	for _, unit := range unitsByLength {
		if !strings.HasSuffix(s, unit) {
			continue
		}
		rest := strings.TrimSuffix(s, unit)
		// "fortnights" ends in "s" but is not a unit.
		if r, _ := utf8.DecodeLastRuneInString(rest); unicode.IsLetter(r) {
			continue
		}
		num := strings.TrimSpace(rest)
		if num == "" {
			break
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, &domain.NumericInputError{Field: "half-life", Value: value}
		}
		seconds := v * unitSeconds[unit]
		if seconds <= 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
			return 0, &domain.NumericInputError{Field: "half-life", Value: value}
		}
		return seconds, nil
	}
	return 0, &domain.HalfLifeUnitError{Value: value}
}
