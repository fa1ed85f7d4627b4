package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// HazardCategory is the DOE hazard categorisation label.
type HazardCategory string

// Hazard categories in decreasing severity.
const (
	CategoryHC2      HazardCategory = "HC-2"
	CategoryHC3      HazardCategory = "HC-3"
	CategoryBelowHC3 HazardCategory = "below HC-3"
	// CategoryUnknown marks a comparison that could not be made (no threshold).
	CategoryUnknown HazardCategory = "unknown"
)

// FacilityInventoryEntry is one nuclide of a facility inventory. The release
// fraction overrides replace the element-group tables when set.
type FacilityInventoryEntry struct {
	Nuclide            string   `json:"nuclide" yaml:"nuclide"`
	InventoryCi        float64  `json:"inventory_ci" yaml:"inventory_ci"`
	ReleaseFractionHC2 *float64 `json:"release_fraction_hc2,omitempty" yaml:"release_fraction_hc2,omitempty"`
	ReleaseFractionHC3 *float64 `json:"release_fraction_hc3,omitempty" yaml:"release_fraction_hc3,omitempty"`
}

// FacilityInput is the full request for one computation.
type FacilityInput struct {
	Name    string                   `json:"name,omitempty" yaml:"name,omitempty"`
	Entries []FacilityInventoryEntry `json:"entries" yaml:"entries"`
}

// NewFacilityInput builds an input from parallel lists. rfHC2 and rfHC3 are
// optional: pass nil for none, or one value per nuclide.
func NewFacilityInput(nuclides []string, inventories []float64, rfHC2, rfHC3 []float64) (FacilityInput, error) {
	if len(nuclides) != len(inventories) {
		return FacilityInput{}, fmt.Errorf("%w: %d nuclides but %d inventories", ErrInvalidInput, len(nuclides), len(inventories))
	}
	if rfHC2 != nil && len(rfHC2) != len(nuclides) {
		return FacilityInput{}, fmt.Errorf("%w: %d HC-2 release fractions for %d nuclides", ErrInvalidReleaseFractionOverride, len(rfHC2), len(nuclides))
	}
	if rfHC3 != nil && len(rfHC3) != len(nuclides) {
		return FacilityInput{}, fmt.Errorf("%w: %d HC-3 release fractions for %d nuclides", ErrInvalidReleaseFractionOverride, len(rfHC3), len(nuclides))
	}
	in := FacilityInput{Entries: make([]FacilityInventoryEntry, len(nuclides))}
	for i, name := range nuclides {
		entry := FacilityInventoryEntry{Nuclide: name, InventoryCi: inventories[i]}
		if rfHC2 != nil {
			v := rfHC2[i]
			entry.ReleaseFractionHC2 = &v
		}
		if rfHC3 != nil {
			v := rfHC3[i]
			entry.ReleaseFractionHC3 = &v
		}
		in.Entries[i] = entry
	}
	return in, in.Validate()
}

// Nuclides returns the nuclide identifiers in input order.
func (in FacilityInput) Nuclides() []string {
	out := make([]string, len(in.Entries))
	for i, e := range in.Entries {
		out[i] = e.Nuclide
	}
	return out
}

// Validate checks inventory values and the all-or-none override rule.
func (in FacilityInput) Validate() error {
	if len(in.Entries) == 0 {
		return fmt.Errorf("%w: no nuclides selected", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(in.Entries))
	var hc2, hc3 int
	for _, e := range in.Entries {
		name := strings.TrimSpace(e.Nuclide)
		if name == "" {
			return fmt.Errorf("%w: empty nuclide identifier", ErrInvalidInput)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: nuclide %s listed twice", ErrInvalidInput, name)
		}
		seen[name] = struct{}{}
		if !positiveFinite(e.InventoryCi) {
			return fmt.Errorf("%w: inventory for %s must be a positive number of curies", ErrInvalidInput, name)
		}
		if e.ReleaseFractionHC2 != nil {
			if !validFraction(*e.ReleaseFractionHC2) {
				return fmt.Errorf("%w: HC-2 release fraction %v for %s", ErrInvalidReleaseFractionOverride, *e.ReleaseFractionHC2, name)
			}
			hc2++
		}
		if e.ReleaseFractionHC3 != nil {
			if !validFraction(*e.ReleaseFractionHC3) {
				return fmt.Errorf("%w: HC-3 release fraction %v for %s", ErrInvalidReleaseFractionOverride, *e.ReleaseFractionHC3, name)
			}
			hc3++
		}
	}
	if hc2 != 0 && hc2 != len(in.Entries) {
		return fmt.Errorf("%w: HC-2 overrides given for %d of %d nuclides", ErrInvalidReleaseFractionOverride, hc2, len(in.Entries))
	}
	if hc3 != 0 && hc3 != len(in.Entries) {
		return fmt.Errorf("%w: HC-3 overrides given for %d of %d nuclides", ErrInvalidReleaseFractionOverride, hc3, len(in.Entries))
	}
	return nil
}

func validFraction(v float64) bool {
	return v > 0 && v <= 1 && !math.IsNaN(v)
}

// PublishedThreshold is a row of the DOE-STD-1027-2018 threshold table.
type PublishedThreshold struct {
	Nuclide         string  `json:"nuclide"`
	HC2Curies       float64 `json:"hc2_curies"`
	HC3Curies       float64 `json:"hc3_curies"`
	LimitingPathway string  `json:"limiting_pathway,omitempty"`
}

// SumOfRatio is one sum-of-ratio evaluation over a facility inventory.
type SumOfRatio struct {
	Basis     string         `json:"basis"`
	HC2       float64        `json:"hc2"`
	HC3       float64        `json:"hc3"`
	Category  HazardCategory `json:"category"`
	Available bool           `json:"available"`
	Reason    string         `json:"reason,omitempty"`
}

// ClassificationResult carries the facility-level outcome.
type ClassificationResult struct {
	Categories map[string]NuclideCategories `json:"categories"`
	Lookup     SumOfRatio                   `json:"lookup"`
	Computed   SumOfRatio                   `json:"computed"`
}

// NuclideCategories labels one nuclide against both threshold bases.
type NuclideCategories struct {
	Lookup   HazardCategory `json:"lookup"`
	Computed HazardCategory `json:"computed"`
}

// NuclideResult is the per-nuclide output of a run. Err is set when the nuclide
// could not be computed; only the nuclide name and inventory are then set.
type NuclideResult struct {
	Nuclide     Nuclide             `json:"nuclide"`
	InventoryCi float64             `json:"inventory_ci"`
	DCFs        ResolvedDCFSet      `json:"dcfs"`
	HC2         ThresholdHC2        `json:"hc2"`
	HC3         ThresholdHC3        `json:"hc3"`
	Bv          *float64            `json:"bv,omitempty"`
	Published   *PublishedThreshold `json:"published,omitempty"`
	Categories  NuclideCategories   `json:"categories"`
	Notes       []string            `json:"notes,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
	Err         string              `json:"error,omitempty"`
}

// Failed reports whether the nuclide could not be computed.
func (r NuclideResult) Failed() bool { return r.Err != "" }

// Report is the complete result of one invocation.
type Report struct {
	ID             string                `json:"id"`
	Facility       string                `json:"facility,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	Results        []NuclideResult       `json:"results"`
	Classification *ClassificationResult `json:"classification,omitempty"`
}

// Result returns the entry for the named nuclide.
func (r Report) Result(nuclide string) (NuclideResult, bool) {
	for _, res := range r.Results {
		if res.Nuclide.Name == nuclide {
			return res, true
		}
	}
	return NuclideResult{}, false
}
