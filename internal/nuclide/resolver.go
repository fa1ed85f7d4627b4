// Package nuclide resolves the physical parameters of a radionuclide from the
// reference catalog: half-life, decay constant, atomic weight, photon energy
// and the names other standards use for it.
package nuclide

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"hazcat/internal/refdata"
	"hazcat/pkg/domain"
)

// Resolver is a pure function over an immutable catalog and is safe for
// concurrent use.
type Resolver struct {
	catalog *refdata.Catalog
}

// NewResolver returns a resolver over catalog.
func NewResolver(catalog *refdata.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// errNoHalfLife marks a source that has no usable half-life for the name.
var errNoHalfLife = errors.New("no half-life")

// Resolve returns the parameters of the named nuclide.
func (r *Resolver) Resolve(name string) (domain.Nuclide, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Nuclide{}, fmt.Errorf("%w: empty nuclide identifier", domain.ErrInvalidInput)
	}
	alts := r.AlternateNames(name)
	n := domain.Nuclide{Name: name, AlternateNames: alts}

	halfLife, master, err := r.halfLife(name, alts)
	if err != nil {
		return domain.Nuclide{}, err
	}
	n.HalfLifeSeconds = halfLife
	n.DecayConstant = domain.DecayConstantFor(halfLife)
	if master != nil {
		if e1, ok := master.Number(refdata.ColPhoton); ok && e1 > 0 {
			n.PhotonEnergy = e1
		}
	}

	aw, err := r.AtomicWeight(name)
	if err != nil {
		return domain.Nuclide{}, err
	}
	n.AtomicWeight = aw
	if err := n.Validate(); err != nil {
		return domain.Nuclide{}, err
	}
	return n, nil
}

// halfLife walks the sources in order: master by name and by ICRP-107 name,
// the JAERI table by name and by ICRP-38 name, every alternate name against
// both, then the nomenclature table's own half-life columns. The master row is
// returned when the value came from it so callers can read its photon column.
func (r *Resolver) halfLife(name string, alts map[domain.NameFamily]string) (float64, refdata.Row, error) {
	type probe struct {
		table refdata.TableName
		name  string
	}
	probes := []probe{
		{refdata.TableNuclideMaster, name},
		{refdata.TableNuclideMaster, alts[domain.FamilyICRP107]},
		{refdata.TableJAERIHalfLife, name},
		{refdata.TableJAERIHalfLife, alts[domain.FamilyICRP38]},
	}
	for _, family := range domain.NameFamilies {
		probes = append(probes,
			probe{refdata.TableNuclideMaster, alts[family]},
			probe{refdata.TableJAERIHalfLife, alts[family]},
		)
	}
	tried := make(map[probe]struct{}, len(probes))
	for _, p := range probes {
		if p.name == "" {
			continue
		}
		if _, dup := tried[p]; dup {
			continue
		}
		tried[p] = struct{}{}
		row, ok := r.catalog.First(p.table, p.name)
		if !ok {
			continue
		}
		v, err := halfLifeCell(row.Get(refdata.ColHalfLife))
		if errors.Is(err, errNoHalfLife) {
			continue
		}
		if err != nil {
			return 0, nil, annotate(err, name)
		}
		if p.table == refdata.TableNuclideMaster {
			return v, row, nil
		}
		return v, nil, nil
	}

	v, err := r.nomenclatureHalfLife(name)
	if err != nil {
		return 0, nil, annotate(err, name)
	}
	return v, nil, nil
}

func halfLifeCell(cell string) (float64, error) {
	if refdata.IsPlaceholder(cell) {
		return 0, errNoHalfLife
	}
	return ParseHalfLife(cell)
}

// nomenclatureHalfLife takes the largest of the value/unit pairs the
// nomenclature row carries.
func (r *Resolver) nomenclatureHalfLife(name string) (float64, error) {
	row, ok := r.nomenclatureRow(name)
	if !ok {
		return 0, &domain.NuclideNotFoundError{Nuclide: name}
	}
	best := 0.0
	for _, pair := range refdata.NomenclatureHalfLifeColumns {
		value, unit := row.Get(pair[0]), row.Get(pair[1])
		if _, ok := refdata.ParseNumber(value); !ok {
			continue
		}
		if refdata.IsPlaceholder(unit) {
			continue
		}
		v, err := ParseHalfLife(value + " " + unit)
		if err != nil {
			return 0, err
		}
		if v > best {
			best = v
		}
	}
	if best == 0 {
		return 0, &domain.NuclideNotFoundError{Nuclide: name}
	}
	return best, nil
}

func annotate(err error, name string) error {
	var unitErr *domain.HalfLifeUnitError
	if errors.As(err, &unitErr) {
		return fmt.Errorf("%s: %w", name, err)
	}
	var numErr *domain.NumericInputError
	if errors.As(err, &numErr) && numErr.Nuclide == "" {
		numErr.Nuclide = name
	}
	return err
}

// nomenclatureRow finds the nomenclature entry for name, first by the fixed
// name column and then by any family column.
func (r *Resolver) nomenclatureRow(name string) (refdata.Row, bool) {
	if row, ok := r.catalog.First(refdata.TableNomenclature, name); ok {
		return row, true
	}
	for _, family := range domain.NameFamilies {
		rows := r.catalog.Exact(refdata.TableNomenclature, refdata.FamilyColumns[family], name)
		if len(rows) > 0 {
			return rows[0], true
		}
	}
	return nil, false
}

// AlternateNames returns the names each standard family uses for the nuclide.
// Families without an entry are omitted.
func (r *Resolver) AlternateNames(name string) map[domain.NameFamily]string {
	row, ok := r.nomenclatureRow(name)
	if !ok {
		return nil
	}
	out := make(map[domain.NameFamily]string, len(domain.NameFamilies))
	for _, family := range domain.NameFamilies {
		alt := row.Get(refdata.FamilyColumns[family])
		if refdata.IsPlaceholder(alt) {
			continue
		}
		out[family] = alt
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Known lists every nuclide name the master, JAERI and nomenclature tables
// carry, sorted.
func (r *Resolver) Known() []string {
	seen := make(map[string]struct{})
	for _, table := range []refdata.TableName{refdata.TableNuclideMaster, refdata.TableJAERIHalfLife, refdata.TableNomenclature} {
		for _, k := range r.catalog.Keys(table) {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
