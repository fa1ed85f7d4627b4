package facility

import (
	"hazcat/internal/refdata"
	"hazcat/pkg/domain"
)

// Limiting pathway codes of the published table that carry a note.
const (
	LimitingTritium     = "C"
	LimitingEqualHC3    = "E"
	LimitingInhalationD = "Inhalation-D"
)

var limitingNotes = map[string]string{
	LimitingTritium: "At the recommendation of the Tritium Focus Group, the HC-2 and HC-3 tritium threshold values " +
		"were provided by the Tritium Focus Group and are not calculated using the methodology of DOE-STD-1027-2018.",
	LimitingEqualHC3: "The HC-3 TQ is set equal to the HC-2 TQ for nine radionuclides: " +
		"Bi-212n, Po-213, Po-214, Po-216, Po-218, Rn-215, Rn-216, Rn-217 and U-235m.",
	LimitingInhalationD: "To be used only if segmentation or the nature of the process precludes the potential for " +
		"criticality. Otherwise the single-parameter limits for fissile nuclides in Section 5 of ANSI/ANS-8.1-2014 " +
		"are evaluated consistent with Section 3.1.6 of DOE-STD-1027-2018.",
}

// PathwaysNote names the pathways the HC-3 threshold is evaluated over.
const PathwaysNote = "The limiting exposure pathways used for determining the HC-3 threshold are inhalation, " +
	"ingestion of food, ingestion of water, direct exposure and air submersion."

// LimitingPathwayNote returns the note attached to a limiting pathway code, or
// "" when the code has none.
func LimitingPathwayNote(code string) string {
	return limitingNotes[code]
}

// Published reads the DOE-STD-1027-2018 threshold table.
type Published struct {
	catalog *refdata.Catalog
}

// NewPublished returns a reader over catalog.
func NewPublished(catalog *refdata.Catalog) *Published {
	return &Published{catalog: catalog}
}

// Lookup returns the published thresholds for nuclide. Rows whose curie cells
// are not numbers are treated as absent.
func (p *Published) Lookup(nuclide string) (domain.PublishedThreshold, bool) {
	row, ok := p.catalog.First(refdata.TableThresholds, nuclide)
	if !ok {
		return domain.PublishedThreshold{}, false
	}
	hc2, ok2 := row.Number(refdata.ColHC2Curies)
	hc3, ok3 := row.Number(refdata.ColHC3Curies)
	if !ok2 || !ok3 || hc2 <= 0 || hc3 <= 0 {
		return domain.PublishedThreshold{}, false
	}
	return domain.PublishedThreshold{
		Nuclide:         row.Get(refdata.ColRadionuclide),
		HC2Curies:       hc2,
		HC3Curies:       hc3,
		LimitingPathway: row.Get(refdata.ColLimitingPathway),
	}, true
}
