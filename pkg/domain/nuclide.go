// Package domain defines the value types, result records, and error kinds
// shared by the threshold quantity engine and its storage adapters.
package domain

import (
	"fmt"
	"math"
)

// NameFamily identifies a reference standard whose tables use their own
// nomenclature for the same isotope.
type NameFamily string

// Supported nomenclature families.
const (
	// FamilyICRP107 is the ICRP-107 / ICRP-119 naming used by the master table and ICRP annexes.
	FamilyICRP107 NameFamily = "icrp119_107"
	// FamilyDOESTD1196 is the DOE-STD-1196-2011 naming.
	FamilyDOESTD1196 NameFamily = "doe_std_1196"
	// FamilyFGR12 is the Federal Guidance Report naming used by the FGR submersion tables.
	FamilyFGR12 NameFamily = "fgr_12"
	// FamilyICRP38 is the ICRP-38 naming used by the JAERI tables.
	FamilyICRP38 NameFamily = "icrp_38"
)

// NameFamilies lists the families in the order alternates are tried.
var NameFamilies = []NameFamily{FamilyICRP107, FamilyDOESTD1196, FamilyFGR12, FamilyICRP38}

// Nuclide carries the resolved physical parameters for one radionuclide.
type Nuclide struct {
	Name            string                `json:"name"`
	HalfLifeSeconds float64               `json:"half_life_s"`
	DecayConstant   float64               `json:"decay_constant_per_s"`
	AtomicWeight    float64               `json:"atomic_weight"`
	PhotonEnergy    float64               `json:"photon_energy_mev"`
	AlternateNames  map[NameFamily]string `json:"alternate_names,omitempty"`
}

// AlternateName returns the name the given family uses for the nuclide, falling
// back to the canonical name.
func (n Nuclide) AlternateName(family NameFamily) string {
	if alt, ok := n.AlternateNames[family]; ok && alt != "" {
		return alt
	}
	return n.Name
}

// Element returns the element symbol ("Cs" for "Cs-137").
func (n Nuclide) Element() string {
	return ElementOf(n.Name)
}

// Validate enforces that the parameters used as formula divisors are usable.
func (n Nuclide) Validate() error {
	if !positiveFinite(n.HalfLifeSeconds) {
		return &NumericInputError{Field: "half-life", Nuclide: n.Name, Value: fmt.Sprint(n.HalfLifeSeconds)}
	}
	if !positiveFinite(n.AtomicWeight) {
		return &NumericInputError{Field: "atomic weight", Nuclide: n.Name, Value: fmt.Sprint(n.AtomicWeight)}
	}
	return nil
}

// DecayConstantFor returns ln(2)/halfLife.
func DecayConstantFor(halfLifeSeconds float64) float64 {
	return math.Ln2 / halfLifeSeconds
}

// ElementOf extracts the element symbol from an "Element-Mass[m]" identifier.
func ElementOf(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == '-' {
			return name[:i]
		}
	}
	return name
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
