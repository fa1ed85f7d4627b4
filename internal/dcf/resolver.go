// Package dcf gathers dose conversion factor candidates for a nuclide from the
// reference tables and picks the governing value for each pathway slot.
package dcf

import (
	"hazcat/internal/refdata"
	"hazcat/pkg/domain"
)

// Resolver selects dose conversion factors from a catalog.
type Resolver struct {
	catalog  *refdata.Catalog
	priority []Tier
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPriority replaces DefaultPriority.
func WithPriority(tiers []Tier) Option {
	return func(r *Resolver) {
		if len(tiers) > 0 {
			r.priority = tiers
		}
	}
}

// NewResolver returns a resolver over catalog.
func NewResolver(catalog *refdata.Catalog, opts ...Option) *Resolver {
	r := &Resolver{catalog: catalog, priority: DefaultPriority}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Candidates returns every usable record for key. Each table is queried with
// the name its own nomenclature family uses for the nuclide.
func (r *Resolver) Candidates(n domain.Nuclide, key domain.DCFKey) []domain.DoseConversionRecord {
	var out []domain.DoseConversionRecord
	for _, src := range slotSources[key] {
		name := n.Name
		if spec, err := refdata.Spec(src.table); err == nil && spec.Family != "" {
			name = n.AlternateName(spec.Family)
		}
		for _, row := range r.catalog.Lookup(src.table, name) {
			if rec, ok := src.record(name, row); ok {
				out = append(out, rec)
			}
		}
	}
	return out
}

// Resolve returns the governing value for every slot. Slots without a value
// are marked unavailable; that is never an error.
func (r *Resolver) Resolve(n domain.Nuclide) domain.ResolvedDCFSet {
	set := domain.ResolvedDCFSet{Nuclide: n.Name, Values: make(map[domain.DCFKey]domain.ResolvedDCF, len(domain.DCFKeys))}
	for _, key := range domain.DCFKeys {
		set.Values[key] = Select(r.Candidates(n, key), r.priority)
	}
	return set
}
