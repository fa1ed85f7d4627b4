package threshold

import (
	"fmt"
	"math"
	"reflect"
)

// Parameters holds the physical and regulatory constants of the threshold
// formulas. The zero value is not usable; start from DefaultParameters.
type Parameters struct {
	Avogadro        float64 `yaml:"avogadro"`
	BqPerCurie      float64 `yaml:"bq_per_curie"`
	BreathingRate   float64 `yaml:"breathing_rate_m3_per_s"`
	DispersionHC2   float64 `yaml:"chi_over_q_hc2"`
	DispersionHC3   float64 `yaml:"chi_over_q_hc3"`
	UnitConversion  float64 `yaml:"unit_conversion"`
	HC3DoseRem      float64 `yaml:"hc3_dose_rem"`
	FoodConsumption float64 `yaml:"food_consumption_kg_per_day"`
	GrowingSeason   float64 `yaml:"growing_season_days"`
	WeatheringDays  float64 `yaml:"weathering_half_life_days"`
	DepositionBase  float64 `yaml:"deposition_base"`
	DepositionBv    float64 `yaml:"deposition_bv"`
	WaterContact    float64 `yaml:"water_contact_days"`
	WaterIntake     float64 `yaml:"water_intake_l_per_day"`
	WaterDilution   float64 `yaml:"water_dilution"`
	WaterTransit    float64 `yaml:"water_transit_days"`
	Retardation     float64 `yaml:"retardation"`
	SourceDistance  float64 `yaml:"source_distance_m"`
	GammaConstant   float64 `yaml:"gamma_constant"`
	AirAbsorption   float64 `yaml:"air_absorption_per_cm"`
	ExposureDays    float64 `yaml:"exposure_days"`
}

// DefaultParameters returns the DOE-STD-1027-2018 constants.
func DefaultParameters() Parameters {
	return Parameters{
		Avogadro:        6.022e23,
		BqPerCurie:      3.7e10,
		BreathingRate:   3.3333e-4,
		DispersionHC2:   1e-4,
		DispersionHC3:   7.2e-2,
		UnitConversion:  0.01 / 3.7e10,
		HC3DoseRem:      10,
		FoodConsumption: 0.175,
		GrowingSeason:   60,
		WeatheringDays:  14,
		DepositionBase:  1e-4,
		DepositionBv:    3.5e-6,
		WaterContact:    9,
		WaterIntake:     2,
		WaterDilution:   7.6e-8,
		WaterTransit:    4.2,
		Retardation:     1,
		SourceDistance:  30,
		GammaConstant:   6.41e-5,
		AirAbsorption:   3.7e-5,
		ExposureDays:    1,
	}
}

// Validate requires every constant to be positive and finite.
func (p Parameters) Validate() error {
	v := reflect.ValueOf(p)
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i).Float()
		if f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Errorf("threshold parameter %s must be positive and finite, got %g", t.Field(i).Name, f)
		}
	}
	return nil
}
