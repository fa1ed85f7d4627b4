package domain

// Pathway identifies the exposure route a dose conversion factor applies to.
type Pathway string

// Dose conversion pathways.
const (
	PathwayInhalation Pathway = "inhalation"
	PathwaySubmersion Pathway = "submersion"
	PathwayIngestion  Pathway = "ingestion"
)

// Population identifies the exposed group a coefficient was derived for.
type Population string

// Exposed populations.
const (
	PopulationPublic Population = "public"
	PopulationWorker Population = "worker"
)

// Source enumerates the reference standards dose coefficients are drawn from.
type Source string

// Reference standards. The resolver ranks them by tier, see dcf.DefaultPriority.
const (
	SourceICRP119    Source = "ICRP-119"
	SourceFGR15      Source = "FGR-15"
	SourceDOESTD1196 Source = "DOE-STD-1196-2011"
	SourceJAERI      Source = "JAERI-Data/Code 2002-013"
)

// DoseConversionRecord is one coefficient read from a reference table.
type DoseConversionRecord struct {
	Nuclide      string     `json:"nuclide"`
	Pathway      Pathway    `json:"pathway"`
	Population   Population `json:"population"`
	Value        float64    `json:"value"`
	Source       Source     `json:"source"`
	Table        string     `json:"table"`
	ChemicalForm string     `json:"chemical_form,omitempty"`
	ParticleSize string     `json:"particle_size,omitempty"`
}

// DCFKey names one slot of a ResolvedDCFSet.
type DCFKey string

// Resolved DCF slots.
const (
	DCFInhalationHC2 DCFKey = "hc2_inhalation"
	DCFSubmersionHC2 DCFKey = "hc2_submersion"
	DCFInhalationHC3 DCFKey = "hc3_inhalation"
	DCFIngestionHC3  DCFKey = "hc3_ingestion"
)

// DCFKeys lists every slot in reporting order.
var DCFKeys = []DCFKey{DCFInhalationHC2, DCFSubmersionHC2, DCFInhalationHC3, DCFIngestionHC3}

// ResolvedDCF is the governing coefficient for one slot. Available is false when
// no source supplied a usable value.
type ResolvedDCF struct {
	Value      float64 `json:"value"`
	Available  bool    `json:"available"`
	Source     Source  `json:"source,omitempty"`
	Candidates int     `json:"candidates"`
}

// Or returns the value when available and fallback otherwise.
func (r ResolvedDCF) Or(fallback float64) float64 {
	if !r.Available {
		return fallback
	}
	return r.Value
}

// ResolvedDCFSet holds the governing coefficients for one nuclide.
type ResolvedDCFSet struct {
	Nuclide string                 `json:"nuclide"`
	Values  map[DCFKey]ResolvedDCF `json:"values"`
}

// Get returns the slot value; a missing slot reads as unavailable.
func (s ResolvedDCFSet) Get(key DCFKey) ResolvedDCF {
	return s.Values[key]
}

// Missing lists the slots without a usable value, in DCFKeys order.
func (s ResolvedDCFSet) Missing() []DCFKey {
	var out []DCFKey
	for _, key := range DCFKeys {
		if !s.Values[key].Available {
			out = append(out, key)
		}
	}
	return out
}
