// Package threshold computes DOE-STD-1027-2018 threshold quantities for the
// HC-2 and HC-3 hazard categories.
package threshold

import (
	"math"

	"hazcat/internal/dcf"
	"hazcat/pkg/domain"
)

const secondsPerDay = 86400

// Input is everything the formulas need for one nuclide.
type Input struct {
	Nuclide   domain.Nuclide
	DCFs      domain.ResolvedDCFSet
	Fractions Fractions
}

// Calculator evaluates the threshold formulas with a fixed parameter set.
type Calculator struct {
	params Parameters
}

// New returns a calculator. Invalid parameters are rejected.
func New(params Parameters) (*Calculator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{params: params}, nil
}

// Default returns a calculator using DefaultParameters.
func Default() *Calculator {
	return &Calculator{params: DefaultParameters()}
}

// Parameters returns the constants in use.
func (c *Calculator) Parameters() Parameters { return c.params }

// SpecificActivity returns Ci/g for the nuclide.
func (c *Calculator) SpecificActivity(n domain.Nuclide) float64 {
	return math.Ln2 * c.params.Avogadro / (n.AtomicWeight * n.HalfLifeSeconds * c.params.BqPerCurie)
}

// HC2 evaluates the HC-2 threshold. Unavailable DCFs contribute nothing to
// the dose; a zero dose yields an unbounded threshold.
func (c *Calculator) HC2(in Input) domain.ThresholdHC2 {
	p := c.params
	sa := c.SpecificActivity(in.Nuclide)
	inh := in.DCFs.Get(domain.DCFInhalationHC2).Or(0)
	sub := in.DCFs.Get(domain.DCFSubmersionHC2).Or(0)
	r := in.Fractions.HC2

	denominator := r * sa * p.DispersionHC2 * (inh*p.BreathingRate + sub)
	grams := math.Inf(1)
	if denominator != 0 && !math.IsNaN(denominator) {
		grams = p.UnitConversion / denominator
	}
	return domain.ThresholdHC2{
		Curies:           domain.Quantity(finite(grams * sa)),
		Grams:            domain.Quantity(finite(grams)),
		ReleaseFraction:  r,
		SpecificActivity: sa,
	}
}

// HC3 evaluates all five HC-3 pathways and keeps the governing one. Pathways
// that cannot be evaluated are +Inf.
func (c *Calculator) HC3(in Input) domain.ThresholdHC3 {
	sa := c.SpecificActivity(in.Nuclide)
	curies := map[domain.ExposurePathway]float64{
		domain.ExposureFoodIngestion:  c.food(in),
		domain.ExposureWaterIngestion: c.water(in),
		domain.ExposureDirectExposure: c.direct(in),
		domain.ExposureSubmersion:     c.submersion(in),
	}
	inhGrams := c.inhalationGrams(in, sa)

	out := domain.ThresholdHC3{Pathways: make([]domain.PathwayResult, 0, len(domain.ExposurePathways))}
	if !math.IsNaN(in.Fractions.HC3) {
		out.ReleaseFraction = in.Fractions.HC3
	}
	for _, pw := range domain.ExposurePathways {
		var ci, g float64
		if pw == domain.ExposureInhalation {
			g = inhGrams
			ci = finite(g * sa)
		} else {
			ci = curies[pw]
			g = finite(ci / sa)
		}
		out.Pathways = append(out.Pathways, domain.PathwayResult{Pathway: pw, Curies: domain.Quantity(ci), Grams: domain.Quantity(g)})
	}
	gov := Dominant(out.Pathways)
	out.Dominant = gov.Pathway
	out.Curies = gov.Curies
	out.Grams = gov.Grams
	return out
}

// Dominant returns the pathway with the smallest curie threshold. Ties go to
// the earlier entry; an empty slice yields a zero result.
func Dominant(pathways []domain.PathwayResult) domain.PathwayResult {
	if len(pathways) == 0 {
		return domain.PathwayResult{}
	}
	best := pathways[0]
	for _, pr := range pathways[1:] {
		if pr.Curies < best.Curies {
			best = pr
		}
	}
	return best
}

func (c *Calculator) inhalationGrams(in Input, sa float64) float64 {
	p := c.params
	dcfInh := in.DCFs.Get(domain.DCFInhalationHC3)
	r := in.Fractions.HC3
	if !dcfInh.Available || math.IsNaN(r) {
		return math.Inf(1)
	}
	return finite(p.HC3DoseRem / (r * sa * p.DispersionHC3 * dcfInh.Value * p.BreathingRate) * p.UnitConversion)
}

// decayPerDay is λi in d⁻¹.
func (c *Calculator) decayPerDay(n domain.Nuclide) float64 {
	return secondsPerDay * math.Ln2 / n.HalfLifeSeconds
}

func (c *Calculator) food(in Input) float64 {
	p := c.params
	ing := in.DCFs.Get(domain.DCFIngestionHC3)
	if !ing.Available {
		return math.Inf(1)
	}
	li := c.decayPerDay(in.Nuclide)
	lw := math.Ln2 / p.WeatheringDays
	ct := -math.Expm1(-(li+lw)*p.GrowingSeason) / (li + lw)
	df := p.DepositionBase + p.DepositionBv*in.Fractions.Bv
	return finite(p.HC3DoseRem / (df * p.FoodConsumption * ct * in.Fractions.HC3 * ing.Value) * p.UnitConversion)
}

func (c *Calculator) water(in Input) float64 {
	p := c.params
	ing := in.DCFs.Get(domain.DCFIngestionHC3)
	if !ing.Available {
		return math.Inf(1)
	}
	li := c.decayPerDay(in.Nuclide)
	ct := -math.Expm1(-li*p.WaterContact) / li
	df := p.WaterDilution * math.Exp(-p.WaterTransit*secondsPerDay*p.Retardation/in.Nuclide.HalfLifeSeconds)
	return finite(p.HC3DoseRem / (df * ct * p.WaterIntake * ing.Value) * p.UnitConversion)
}

func (c *Calculator) direct(in Input) float64 {
	p := c.params
	if dcf.IsInertGas(in.Nuclide.Name) {
		return math.Inf(1)
	}
	li := c.decayPerDay(in.Nuclide)
	expo := -math.Expm1(-li*p.ExposureDays) / li
	s := p.SourceDistance
	numerator := p.HC3DoseRem * s * s * p.GammaConstant
	denominator := in.Nuclide.PhotonEnergy * p.AirAbsorption * 24 * expo * math.Exp(-100*p.AirAbsorption*s)
	if denominator == 0 {
		return math.Inf(1)
	}
	return finite(numerator / denominator)
}

func (c *Calculator) submersion(in Input) float64 {
	p := c.params
	gas, ok := dcf.LookupInertGas(in.Nuclide.Name)
	if !ok || gas.DoseRate() == 0 {
		return math.Inf(1)
	}
	return finite(p.HC3DoseRem / (p.DispersionHC3 * gas.DoseRate()) * p.UnitConversion)
}

// finite maps NaN and negative results to +Inf so a pathway that cannot be
// evaluated never governs.
func finite(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return math.Inf(1)
	}
	return v
}
