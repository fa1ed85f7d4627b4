// Package pointsource estimates on-site gamma dose rates from an unshielded
// point source using the 6CEN rule of thumb.
package pointsource

import (
	"fmt"
	"math"

	"hazcat/internal/refdata"
	"hazcat/pkg/domain"
)

// Lines below either cutoff are neglected.
const (
	MinEnergyMeV = 0.05
	MinYield     = 1e-3
)

const feetPerMetre = 3.28084

// Unit selects the dose-rate unit of a table.
type Unit string

// Supported units.
const (
	UnitMilliSievertPerHour  Unit = "mSv/h"
	UnitMilliRoentgenPerHour Unit = "mR/h"
)

// DefaultDistances are the receptor distances in metres.
var DefaultDistances = []float64{10, 20, 40, 50, 100, 200, 400, 600, 800, 1000}

// DefaultFractions are the exposed fractions of the inventory.
var DefaultFractions = []float64{1, 1e-3, 5e-4, 1e-5}

// GammaLine is one photon emission.
type GammaLine struct {
	EnergyMeV float64 `json:"energy_mev"`
	Yield     float64 `json:"yield"`
}

// Spectrum is the filtered line list of a nuclide.
type Spectrum struct {
	Nuclide   string      `json:"nuclide"`
	Lines     []GammaLine `json:"lines"`
	Neglected []GammaLine `json:"neglected,omitempty"`
}

// E1 is the sum of energy times yield over the kept lines, in MeV.
func (s Spectrum) E1() float64 {
	var sum float64
	for _, l := range s.Lines {
		sum += l.EnergyMeV * l.Yield
	}
	return sum
}

// Lines reads the gamma lines of nuclide from the catalog and applies the
// cutoffs. A nuclide without lines yields an empty spectrum, which is how
// pure beta emitters appear.
func Lines(catalog *refdata.Catalog, nuclide string) Spectrum {
	s := Spectrum{Nuclide: nuclide}
	for _, row := range catalog.Exact(refdata.TableGammaLines, refdata.ColNuclide, nuclide) {
		e, okE := row.Number(refdata.ColEnergy)
		y, okY := row.Number(refdata.ColYield)
		if !okE || !okY {
			continue
		}
		line := GammaLine{EnergyMeV: e, Yield: y}
		if e < MinEnergyMeV || y < MinYield {
			s.Neglected = append(s.Neglected, line)
			continue
		}
		s.Lines = append(s.Lines, line)
	}
	return s
}

// DoseRate returns the rate at distanceM metres from activityCi curies for the
// given exposed fraction.
func DoseRate(lines []GammaLine, activityCi, distanceM, fraction float64, unit Unit) (float64, error) {
	if !positive(activityCi) {
		return 0, fmt.Errorf("%w: activity must be a positive number of curies", domain.ErrInvalidInput)
	}
	if !positive(distanceM) {
		return 0, fmt.Errorf("%w: distance must be positive", domain.ErrInvalidInput)
	}
	if !positive(fraction) {
		return 0, fmt.Errorf("%w: exposed fraction must be positive", domain.ErrInvalidInput)
	}
	var scale float64
	switch unit {
	case UnitMilliSievertPerHour, "":
		// 114 R per Sv for the 6CEN rule.
		scale = 1000.0 / 114
	case UnitMilliRoentgenPerHour:
		scale = 1000
	default:
		return 0, fmt.Errorf("%w: unsupported dose-rate unit %q", domain.ErrInvalidInput, unit)
	}
	feet := distanceM * feetPerMetre
	var rate float64
	for _, l := range lines {
		rate += scale * 6 * l.Yield * activityCi * l.EnergyMeV / (feet * feet)
	}
	return rate * fraction, nil
}

// Point is one entry of a dose-rate table.
type Point struct {
	DistanceM float64 `json:"distance_m"`
	Fraction  float64 `json:"fraction"`
	Rate      float64 `json:"rate"`
}

// Table evaluates DoseRate over every fraction and distance. Nil slices use
// the defaults.
func Table(lines []GammaLine, activityCi float64, distances, fractions []float64, unit Unit) ([]Point, error) {
	if distances == nil {
		distances = DefaultDistances
	}
	if fractions == nil {
		fractions = DefaultFractions
	}
	out := make([]Point, 0, len(distances)*len(fractions))
	for _, f := range fractions {
		for _, d := range distances {
			rate, err := DoseRate(lines, activityCi, d, f, unit)
			if err != nil {
				return nil, err
			}
			out = append(out, Point{DistanceM: d, Fraction: f, Rate: rate})
		}
	}
	return out, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
