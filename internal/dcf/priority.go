package dcf

import (
	"fmt"

	"hazcat/pkg/domain"
)

// Tier groups the sources that rank equally. Within a tier the largest value
// governs.
type Tier struct {
	Name  string
	Match func(domain.Source) bool
}

func sourceIn(sources ...domain.Source) func(domain.Source) bool {
	return func(s domain.Source) bool {
		for _, want := range sources {
			if s == want {
				return true
			}
		}
		return false
	}
}

// DefaultPriority ranks ICRP-119 and FGR-15 first, DOE-STD-1196 second and
// JAERI last.
var DefaultPriority = []Tier{
	{Name: "international", Match: sourceIn(domain.SourceICRP119, domain.SourceFGR15)},
	{Name: "national", Match: sourceIn(domain.SourceDOESTD1196)},
	{Name: "tertiary", Match: sourceIn(domain.SourceJAERI)},
}

// Select applies tiers in order and returns the maximum of the first tier that
// holds any candidate. Records matching no tier are ignored.
func Select(records []domain.DoseConversionRecord, tiers []Tier) domain.ResolvedDCF {
	for _, tier := range tiers {
		var (
			best  domain.ResolvedDCF
			count int
		)
		for _, rec := range records {
			if !tier.Match(rec.Source) {
				continue
			}
			count++
			if !best.Available || rec.Value > best.Value {
				best = domain.ResolvedDCF{Value: rec.Value, Available: true, Source: rec.Source}
			}
		}
		if count > 0 {
			best.Candidates = len(records)
			return best
		}
	}
	return domain.ResolvedDCF{Candidates: len(records)}
}

// PriorityFromNames reorders the DefaultPriority tiers by name. Tiers left
// out are dropped. No names yields DefaultPriority.
func PriorityFromNames(names []string) ([]Tier, error) {
	if len(names) == 0 {
		return DefaultPriority, nil
	}
	out := make([]Tier, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate dcf tier %q", domain.ErrInvalidInput, name)
		}
		seen[name] = true
		found := false
		for _, tier := range DefaultPriority {
			if tier.Name == name {
				out = append(out, tier)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown dcf tier %q", domain.ErrInvalidInput, name)
		}
	}
	return out, nil
}
