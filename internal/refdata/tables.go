// Package refdata holds the named reference tables the threshold quantity
// engine reads from, the backends they can be loaded from, and the immutable
// in-memory catalog the engine queries.
package refdata

import (
	"fmt"

	"hazcat/pkg/domain"
)

// TableName identifies one reference table. It doubles as the CSV file stem
// in directory and blob backed stores.
type TableName string

// Reference tables.
const (
	TableNuclideMaster   TableName = "nuclide_master"
	TableJAERIHalfLife   TableName = "jaeri_half_life"
	TableNomenclature    TableName = "nomenclature"
	TableAtomicMass      TableName = "atomic_mass"
	TableICRP119AnnexA   TableName = "icrp119_annex_a"
	TableICRP119AnnexB   TableName = "icrp119_annex_b"
	TableICRP119AnnexG   TableName = "icrp119_annex_g"
	TableICRP119AnnexH   TableName = "icrp119_annex_h"
	TableDOESTDTableA2   TableName = "doe_std_1196_table_a2"
	TableDOESTDTableA3   TableName = "doe_std_1196_table_a3"
	TableFGR15Table46    TableName = "fgr15_table_4_6"
	TableJAERITable3     TableName = "jaeri_table_3"
	TableJAERITable5     TableName = "jaeri_table_5"
	TableJAERITable6     TableName = "jaeri_table_6"
	TableJAERITable7     TableName = "jaeri_table_7"
	TableReleaseFraction TableName = "r_bv"
	TableThresholds      TableName = "tq_doe_std_1027_2018"
	TableGammaLines      TableName = "gamma_lines"
)

// Column names shared across tables.
const (
	ColNuclide         = "Nuclide"
	ColHalfLife        = "Half-life"
	ColPhoton          = "E1"
	ColType            = "Type"
	ColChemicalForm    = "Chemical Form"
	ColInhalation      = "inh_adult"
	ColInhalation1um   = "inh_adult_1um"
	ColInhalation5um   = "inh_adult_5um"
	ColIngestion       = "ing_adult"
	ColSubmersion      = "sub_adult"
	ColAtomicMass      = "Atomic Mass"
	ColFixedName       = "Fixed_nuclide_name"
	ColICRP107Name     = "ICRP119_107_name"
	ColDOESTDName      = "DOE_STD_1196_name"
	ColFGR12Name       = "FGR_12_name"
	ColICRP38Name      = "ICRP_38_name"
	ColSymbol          = "Symbol"
	ColReleaseFraction = "Release Fraction (R)"
	ColBv              = "Bv"
	ColRadionuclide    = "Radionuclide"
	ColHC2Curies       = "HC2_Curies"
	ColHC3Curies       = "HC3_Curies"
	ColLimitingPathway = "Limiting_Pathway"
	ColEnergy          = "Energy_MeV"
	ColYield           = "Yield"
)

// NomenclatureHalfLifeColumns lists the (value, unit) column pairs of the
// nomenclature table. Sources disagree, so the table keeps several.
var NomenclatureHalfLifeColumns = [][2]string{
	{"Half-life", "unit"},
	{"Half-life.1", "unit.1"},
	{"Half-life.2", "unit.2"},
	{"Half-life.3", "unit.3"},
	{"Half-life.4", "unit.4"},
}

// FamilyColumns maps each naming family to its nomenclature column.
var FamilyColumns = map[domain.NameFamily]string{
	domain.FamilyICRP107:    ColICRP107Name,
	domain.FamilyDOESTD1196: ColDOESTDName,
	domain.FamilyFGR12:      ColFGR12Name,
	domain.FamilyICRP38:     ColICRP38Name,
}

// TableSpec describes a table's key column and layout.
type TableSpec struct {
	Name TableName
	// KeyColumn holds the nuclide (or element) identifier rows are looked up by.
	KeyColumn string
	// Family is the nomenclature the key column follows.
	Family  domain.NameFamily
	Columns []string
	// Optional tables may be absent from a store without failing a load.
	Optional bool
}

var specs = []TableSpec{
	{Name: TableNuclideMaster, KeyColumn: ColNuclide, Family: domain.FamilyICRP107, Columns: []string{ColNuclide, ColHalfLife, ColPhoton}},
	{Name: TableJAERIHalfLife, KeyColumn: ColNuclide, Family: domain.FamilyICRP38, Columns: []string{ColNuclide, ColHalfLife}},
	{Name: TableNomenclature, KeyColumn: ColFixedName, Columns: []string{
		ColFixedName, ColICRP107Name, ColDOESTDName, ColFGR12Name, ColICRP38Name,
		"Half-life", "unit", "Half-life.1", "unit.1", "Half-life.2", "unit.2", "Half-life.3", "unit.3", "Half-life.4", "unit.4",
	}},
	{Name: TableAtomicMass, KeyColumn: ColNuclide, Columns: []string{ColNuclide, ColAtomicMass}},
	{Name: TableICRP119AnnexA, KeyColumn: ColNuclide, Family: domain.FamilyICRP107, Columns: []string{ColNuclide, ColType, ColInhalation1um, ColInhalation5um, ColIngestion}},
	{Name: TableICRP119AnnexB, KeyColumn: ColNuclide, Family: domain.FamilyICRP107, Columns: []string{ColNuclide, ColChemicalForm, ColInhalation}},
	{Name: TableICRP119AnnexG, KeyColumn: ColNuclide, Family: domain.FamilyICRP107, Columns: []string{ColNuclide, ColType, ColInhalation}},
	{Name: TableICRP119AnnexH, KeyColumn: ColNuclide, Family: domain.FamilyICRP107, Columns: []string{ColNuclide, ColChemicalForm, ColInhalation}},
	{Name: TableDOESTDTableA2, KeyColumn: ColNuclide, Family: domain.FamilyDOESTD1196, Columns: []string{ColNuclide, ColType, ColInhalation}},
	{Name: TableDOESTDTableA3, KeyColumn: ColNuclide, Family: domain.FamilyDOESTD1196, Columns: []string{ColNuclide, ColSubmersion}},
	{Name: TableFGR15Table46, KeyColumn: ColNuclide, Family: domain.FamilyFGR12, Columns: []string{ColNuclide, ColSubmersion}},
	{Name: TableJAERITable3, KeyColumn: ColNuclide, Family: domain.FamilyICRP38, Columns: []string{ColNuclide, ColType, ColInhalation1um, ColInhalation5um, ColIngestion}},
	{Name: TableJAERITable5, KeyColumn: ColNuclide, Family: domain.FamilyICRP38, Columns: []string{ColNuclide, ColType, ColInhalation}},
	{Name: TableJAERITable6, KeyColumn: ColNuclide, Family: domain.FamilyICRP38, Columns: []string{ColNuclide, ColChemicalForm, ColInhalation}},
	{Name: TableJAERITable7, KeyColumn: ColNuclide, Family: domain.FamilyICRP38, Columns: []string{ColNuclide, ColChemicalForm, ColInhalation}},
	{Name: TableReleaseFraction, KeyColumn: ColSymbol, Columns: []string{ColSymbol, ColReleaseFraction, ColBv}},
	{Name: TableThresholds, KeyColumn: ColRadionuclide, Columns: []string{ColRadionuclide, ColHC2Curies, ColHC3Curies, ColLimitingPathway}},
	{Name: TableGammaLines, KeyColumn: ColNuclide, Family: domain.FamilyICRP107, Columns: []string{ColNuclide, ColEnergy, ColYield}, Optional: true},
}

// Tables returns the specs of every reference table in load order.
func Tables() []TableSpec {
	out := make([]TableSpec, len(specs))
	copy(out, specs)
	return out
}

// Spec returns the spec registered for name.
func Spec(name TableName) (TableSpec, error) {
	for _, s := range specs {
		if s.Name == name {
			return s, nil
		}
	}
	return TableSpec{}, fmt.Errorf("unknown reference table %q", name)
}

// FileName returns the CSV object name of the table.
func (t TableName) FileName() string { return string(t) + ".csv" }
