package nuclide

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"hazcat/internal/refdata"
	"hazcat/pkg/domain"
)

// AtomicWeight returns the atomic weight in g/mol. The mass table is keyed
// by ground-state names, so "Tc-99m" is looked up as "Tc-99" first and then
// under its full name.
func (r *Resolver) AtomicWeight(name string) (float64, error) {
	name = strings.TrimSpace(name)
	for _, key := range []string{StripMetastable(name), name} {
		row, ok := r.catalog.First(refdata.TableAtomicMass, key)
		if !ok {
			continue
		}
		cell := row.Get(refdata.ColAtomicMass)
		v, ok := ParseAtomicMass(cell)
		if !ok || v <= 0 {
			return 0, &domain.NumericInputError{Field: "atomic mass", Nuclide: name, Value: cell}
		}
		return v, nil
	}
	return 0, &domain.NuclideNotFoundError{Nuclide: name, Dataset: "atomic mass"}
}

// ParseAtomicMass reads a mass cell. Some source cells carry a stray second
// decimal point ("226.025.4098"); only the first two dot-separated parts are
// kept.
func ParseAtomicMass(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if parts := strings.Split(s, "."); len(parts) > 2 {
		s = parts[0] + "." + parts[1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// StripMetastable drops isomer letters after the mass number: "Tc-99m" and
// "Ag-108M" become "Tc-99" and "Ag-108".
func StripMetastable(name string) string {
	i := strings.LastIndexByte(name, '-')
	if i < 0 {
		return name
	}
	j := i + 1
	for j < len(name) && unicode.IsDigit(rune(name[j])) {
		j++
	}
	if j == i+1 {
		return name
	}
	return name[:j]
}
