package dcf

import (
	"hazcat/internal/refdata"
	"hazcat/pkg/domain"
)

// tableSource binds one reference table to the slot it feeds. When several
// value columns are listed the record takes their maximum.
type tableSource struct {
	table      refdata.TableName
	source     domain.Source
	pathway    domain.Pathway
	population domain.Population
	columns    []string
}

var particleSizes = map[string]string{
	refdata.ColInhalation1um: "1um",
	refdata.ColInhalation5um: "5um",
}

// slotSources lists, per slot, the tables whose records are merged before
// priority selection. DOE-STD-1196 Table A2 takes part in the HC-2 inhalation
// merge.
var slotSources = map[domain.DCFKey][]tableSource{
	domain.DCFInhalationHC2: {
		{refdata.TableJAERITable7, domain.SourceJAERI, domain.PathwayInhalation, domain.PopulationPublic, []string{refdata.ColInhalation}},
		{refdata.TableJAERITable5, domain.SourceJAERI, domain.PathwayInhalation, domain.PopulationPublic, []string{refdata.ColInhalation}},
		{refdata.TableDOESTDTableA2, domain.SourceDOESTD1196, domain.PathwayInhalation, domain.PopulationPublic, []string{refdata.ColInhalation}},
		{refdata.TableICRP119AnnexG, domain.SourceICRP119, domain.PathwayInhalation, domain.PopulationPublic, []string{refdata.ColInhalation}},
		{refdata.TableICRP119AnnexH, domain.SourceICRP119, domain.PathwayInhalation, domain.PopulationPublic, []string{refdata.ColInhalation}},
	},
	domain.DCFSubmersionHC2: {
		{refdata.TableFGR15Table46, domain.SourceFGR15, domain.PathwaySubmersion, domain.PopulationPublic, []string{refdata.ColSubmersion}},
		{refdata.TableDOESTDTableA3, domain.SourceDOESTD1196, domain.PathwaySubmersion, domain.PopulationPublic, []string{refdata.ColSubmersion}},
	},
	domain.DCFInhalationHC3: {
		{refdata.TableICRP119AnnexA, domain.SourceICRP119, domain.PathwayInhalation, domain.PopulationWorker, []string{refdata.ColInhalation1um, refdata.ColInhalation5um}},
		{refdata.TableICRP119AnnexB, domain.SourceICRP119, domain.PathwayInhalation, domain.PopulationWorker, []string{refdata.ColInhalation}},
		{refdata.TableJAERITable3, domain.SourceJAERI, domain.PathwayInhalation, domain.PopulationWorker, []string{refdata.ColInhalation1um, refdata.ColInhalation5um}},
		{refdata.TableJAERITable6, domain.SourceJAERI, domain.PathwayInhalation, domain.PopulationWorker, []string{refdata.ColInhalation}},
	},
	domain.DCFIngestionHC3: {
		{refdata.TableICRP119AnnexA, domain.SourceICRP119, domain.PathwayIngestion, domain.PopulationWorker, []string{refdata.ColIngestion}},
		{refdata.TableJAERITable3, domain.SourceJAERI, domain.PathwayIngestion, domain.PopulationWorker, []string{refdata.ColIngestion}},
	},
}

// SourceTables returns the tables consulted for key, in merge order.
func SourceTables(key domain.DCFKey) []refdata.TableName {
	srcs := slotSources[key]
	out := make([]refdata.TableName, len(srcs))
	for i, s := range srcs {
		out[i] = s.table
	}
	return out
}

// record turns a table row into a candidate. ok is false when no value column
// holds a number.
func (s tableSource) record(nuclide string, row refdata.Row) (domain.DoseConversionRecord, bool) {
	rec := domain.DoseConversionRecord{
		Nuclide:      row.Get(refdata.ColNuclide),
		Pathway:      s.pathway,
		Population:   s.population,
		Source:       s.source,
		Table:        string(s.table),
		ChemicalForm: row.Get(refdata.ColChemicalForm),
	}
	if rec.Nuclide == "" {
		rec.Nuclide = nuclide
	}
	found := false
	for _, col := range s.columns {
		v, ok := row.Number(col)
		if !ok {
			continue
		}
		if !found || v > rec.Value {
			rec.Value = v
			rec.ParticleSize = particleSizes[col]
			found = true
		}
	}
	return rec, found
}
