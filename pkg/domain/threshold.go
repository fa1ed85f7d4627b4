package domain

import (
	"math"
	"strconv"
)

// ExposurePathway identifies one of the HC-3 threshold pathways.
type ExposurePathway string

// HC-3 pathways in evaluation order. Ties on the governing threshold resolve to
// the earliest entry.
const (
	ExposureInhalation     ExposurePathway = "inhalation"
	ExposureFoodIngestion  ExposurePathway = "food_ingestion"
	ExposureWaterIngestion ExposurePathway = "water_ingestion"
	ExposureDirectExposure ExposurePathway = "direct_exposure"
	ExposureSubmersion     ExposurePathway = "submersion"
)

// ExposurePathways lists the HC-3 pathways in evaluation order.
var ExposurePathways = []ExposurePathway{
	ExposureInhalation,
	ExposureFoodIngestion,
	ExposureWaterIngestion,
	ExposureDirectExposure,
	ExposureSubmersion,
}

// PathwayResult is the threshold quantity for a single pathway. An infinite
// value means the pathway cannot produce the threshold dose.
type PathwayResult struct {
	Pathway ExposurePathway `json:"pathway"`
	Curies  Quantity        `json:"curies"`
	Grams   Quantity        `json:"grams"`
}

// ThresholdHC2 is the HC-2 threshold quantity for a nuclide.
type ThresholdHC2 struct {
	Curies           Quantity `json:"curies"`
	Grams            Quantity `json:"grams"`
	ReleaseFraction  float64  `json:"release_fraction"`
	SpecificActivity float64  `json:"specific_activity_ci_per_g"`
}

// ThresholdHC3 is the governing HC-3 threshold with its per-pathway breakdown.
type ThresholdHC3 struct {
	Curies          Quantity        `json:"curies"`
	Grams           Quantity        `json:"grams"`
	Dominant        ExposurePathway `json:"dominant_pathway"`
	Pathways        []PathwayResult `json:"pathways"`
	ReleaseFraction float64         `json:"release_fraction"` // 0 when not tabulated
}

// Pathway returns the breakdown entry for p.
func (t ThresholdHC3) Pathway(p ExposurePathway) (PathwayResult, bool) {
	for _, r := range t.Pathways {
		if r.Pathway == p {
			return r, true
		}
	}
	return PathwayResult{}, false
}

// Quantity is a float64 that serialises +Inf as the string "inf" so results
// survive JSON encoding.
type Quantity float64

// Float returns the raw value.
func (q Quantity) Float() float64 { return float64(q) }

// IsInf reports whether the quantity is unbounded.
func (q Quantity) IsInf() bool { return math.IsInf(float64(q), 1) }

// MarshalJSON implements json.Marshaler.
func (q Quantity) MarshalJSON() ([]byte, error) {
	v := float64(q)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"inf"`), nil
	case math.IsNaN(v) || math.IsInf(v, -1):
		return []byte(`null`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := string(data)
	switch s {
	case `"inf"`:
		*q = Quantity(math.Inf(1))
		return nil
	case `null`:
		*q = Quantity(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return &NumericInputError{Field: "quantity", Value: s}
	}
	*q = Quantity(v)
	return nil
}
