// Package facility classifies a facility inventory against published and
// computed threshold quantities.
package facility

import (
	"fmt"
	"math"

	"hazcat/pkg/domain"
)

// Sum-of-ratio bases.
const (
	BasisLookup   = "DOE-STD-1027-2018 lookup"
	BasisComputed = "computed"
)

// Categorize labels a single nuclide: above the HC-2 threshold is HC-2, below
// the HC-3 threshold is below HC-3, anything else HC-3. Unusable thresholds
// give CategoryUnknown.
func Categorize(inventoryCi, hc2Ci, hc3Ci float64) domain.HazardCategory {
	if math.IsNaN(hc2Ci) || math.IsNaN(hc3Ci) || hc2Ci <= 0 || hc3Ci <= 0 {
		return domain.CategoryUnknown
	}
	switch {
	case inventoryCi > hc2Ci:
		return domain.CategoryHC2
	case inventoryCi < hc3Ci:
		return domain.CategoryBelowHC3
	default:
		return domain.CategoryHC3
	}
}

// Ratio is one nuclide's contribution to a sum of ratios.
type Ratio struct {
	Nuclide     string
	InventoryCi float64
	HC2Ci       float64
	HC3Ci       float64
}

// SumOfRatio adds inventory/threshold over ratios. An unbounded threshold
// contributes nothing. The HC-2 sum above 1 makes the facility HC-2, else the
// HC-3 sum above 1 makes it HC-3, else it is below HC-3.
func SumOfRatio(basis string, ratios []Ratio) domain.SumOfRatio {
	out := domain.SumOfRatio{Basis: basis}
	if len(ratios) == 0 {
		out.Reason = "no nuclides"
		return out
	}
	for _, r := range ratios {
		if r.HC2Ci <= 0 || r.HC3Ci <= 0 || math.IsNaN(r.HC2Ci) || math.IsNaN(r.HC3Ci) {
			out.Reason = fmt.Sprintf("no usable threshold for %s", r.Nuclide)
			return out
		}
		out.HC2 += r.InventoryCi / r.HC2Ci
		out.HC3 += r.InventoryCi / r.HC3Ci
	}
	out.Available = true
	switch {
	case out.HC2 > 1:
		out.Category = domain.CategoryHC2
	case out.HC3 > 1:
		out.Category = domain.CategoryHC3
	case math.Min(out.HC2, out.HC3) < 1:
		out.Category = domain.CategoryBelowHC3
	default:
		// Both sums exactly 1.
		out.Category = domain.CategoryHC3
	}
	return out
}

// Classify fills per-nuclide categories from results and runs the sum of
// ratios against both bases. The sums are only evaluated for inventories of
// more than one nuclide in which every nuclide was computed.
func Classify(results []domain.NuclideResult) domain.ClassificationResult {
	out := domain.ClassificationResult{
		Categories: make(map[string]domain.NuclideCategories, len(results)),
		Lookup:     domain.SumOfRatio{Basis: BasisLookup},
		Computed:   domain.SumOfRatio{Basis: BasisComputed},
	}
	var lookup, computed []Ratio
	lookupOK := true
	var failed []string
	for _, res := range results {
		if res.Failed() {
			failed = append(failed, res.Nuclide.Name)
			continue
		}
		out.Categories[res.Nuclide.Name] = Categories(res)
		computed = append(computed, Ratio{
			Nuclide:     res.Nuclide.Name,
			InventoryCi: res.InventoryCi,
			HC2Ci:       res.HC2.Curies.Float(),
			HC3Ci:       res.HC3.Curies.Float(),
		})
		if res.Published == nil {
			lookupOK = false
			out.Lookup.Reason = fmt.Sprintf("%s is not in the published threshold table", res.Nuclide.Name)
			continue
		}
		lookup = append(lookup, Ratio{
			Nuclide:     res.Nuclide.Name,
			InventoryCi: res.InventoryCi,
			HC2Ci:       res.Published.HC2Curies,
			HC3Ci:       res.Published.HC3Curies,
		})
	}

	switch {
	case len(failed) > 0:
		reason := fmt.Sprintf("not computed for %v", failed)
		out.Lookup.Reason, out.Computed.Reason = reason, reason
		return out
	case len(results) < 2:
		reason := "sum of ratios applies to more than one nuclide"
		out.Lookup.Reason, out.Computed.Reason = reason, reason
		return out
	}
	out.Computed = SumOfRatio(BasisComputed, computed)
	if lookupOK {
		out.Lookup = SumOfRatio(BasisLookup, lookup)
	}
	return out
}

// Categories labels one computed result against the published and the
// computed thresholds.
func Categories(res domain.NuclideResult) domain.NuclideCategories {
	c := domain.NuclideCategories{
		Lookup:   domain.CategoryUnknown,
		Computed: Categorize(res.InventoryCi, res.HC2.Curies.Float(), res.HC3.Curies.Float()),
	}
	if res.Published != nil {
		c.Lookup = Categorize(res.InventoryCi, res.Published.HC2Curies, res.Published.HC3Curies)
	}
	return c
}

// Notes returns the report notes for one result.
func Notes(res domain.NuclideResult) []string {
	var notes []string
	if res.Published != nil {
		if n := LimitingPathwayNote(res.Published.LimitingPathway); n != "" {
			notes = append(notes, n)
		}
	}
	notes = append(notes, PathwaysNote)
	return notes
}
