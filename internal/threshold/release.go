package threshold

import (
	"math"

	"hazcat/internal/refdata"
	"hazcat/pkg/domain"
)

// hc2Groups assigns the HC-2 release fraction by element.
var hc2Groups = []struct {
	fraction float64
	elements []string
}{
	{1.0, []string{"H", "Kr", "Xe", "Ar", "Rn", "Ne", "Cl", "F", "N", "O"}},
	{0.5, []string{"P", "S", "K", "I", "Na", "Br"}},
	{1e-2, []string{"Se", "Hg", "Cs", "Po", "Te", "Ru", "C"}},
}

// defaultHC2Fraction applies to every element not listed in hc2Groups.
const defaultHC2Fraction = 1e-3

// HC2ReleaseFraction returns the HC-2 release fraction for element.
func HC2ReleaseFraction(element string) float64 {
	for _, g := range hc2Groups {
		for _, e := range g.elements {
			if e == element {
				return g.fraction
			}
		}
	}
	return defaultHC2Fraction
}

// Fractions are the release fractions and soil-to-plant factor applied to one
// nuclide. NaN marks a value the tables do not provide.
type Fractions struct {
	HC2 float64
	HC3 float64
	Bv  float64
}

// ReleaseTable reads HC-3 release fractions and Bv from the r_bv table.
type ReleaseTable struct {
	catalog *refdata.Catalog
}

// NewReleaseTable returns a table over catalog.
func NewReleaseTable(catalog *refdata.Catalog) *ReleaseTable {
	return &ReleaseTable{catalog: catalog}
}

// HC3 returns R and Bv for element. Missing or placeholder cells are NaN.
func (t *ReleaseTable) HC3(element string) (r, bv float64) {
	row, ok := t.catalog.First(refdata.TableReleaseFraction, element)
	if !ok {
		return math.NaN(), math.NaN()
	}
	r, bv = math.NaN(), math.NaN()
	if v, ok := row.Number(refdata.ColReleaseFraction); ok {
		r = v
	}
	if v, ok := row.Number(refdata.ColBv); ok {
		bv = v
	}
	return r, bv
}

// Fractions resolves the fractions for nuclide. Overrides replace the
// tabulated release fractions; Bv always comes from the table.
func (t *ReleaseTable) Fractions(nuclide string, overrideHC2, overrideHC3 *float64) Fractions {
	element := domain.ElementOf(nuclide)
	r, bv := t.HC3(element)
	f := Fractions{HC2: HC2ReleaseFraction(element), HC3: r, Bv: bv}
	if overrideHC2 != nil {
		f.HC2 = *overrideHC2
	}
	if overrideHC3 != nil {
		f.HC3 = *overrideHC3
	}
	return f
}
