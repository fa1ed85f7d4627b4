package nuclide

import (
	"context"
	"errors"
	"math"
	"testing"

	"hazcat/internal/refdata"
	"hazcat/pkg/domain"
)

const year = 31556952.0

func embeddedResolver(t *testing.T) *Resolver {
	t.Helper()
	c, err := refdata.Load(context.Background(), refdata.Embedded())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewResolver(c)
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func TestResolveFromMaster(t *testing.T) {
	r := embeddedResolver(t)
	n, err := r.Resolve("Co-60")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !near(n.HalfLifeSeconds, 5.2713*year) {
		t.Fatalf("half-life %g", n.HalfLifeSeconds)
	}
	if !near(n.DecayConstant, math.Ln2/n.HalfLifeSeconds) {
		t.Fatalf("decay constant %g", n.DecayConstant)
	}
	if n.PhotonEnergy != 2.50385 || n.AtomicWeight != 59.9338171 {
		t.Fatalf("unexpected nuclide %+v", n)
	}
}

func TestResolveMetastableUsesGroundStateMass(t *testing.T) {
	r := embeddedResolver(t)
	n, err := r.Resolve("Tc-99m")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if n.AtomicWeight != 98.9062547 || !near(n.HalfLifeSeconds, 6.015*3600) {
		t.Fatalf("unexpected nuclide %+v", n)
	}
	if n.AlternateName(domain.FamilyDOESTD1196) != "Tc-99M" {
		t.Fatalf("alternate names %+v", n.AlternateNames)
	}
}

func TestResolveFallsBackToJAERI(t *testing.T) {
	r := embeddedResolver(t)
	n, err := r.Resolve("Ra-226")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !near(n.HalfLifeSeconds, 1600*year) {
		t.Fatalf("half-life %g", n.HalfLifeSeconds)
	}
	if n.PhotonEnergy != 0 {
		t.Fatalf("expected no photon energy outside master, got %g", n.PhotonEnergy)
	}
	if !near(n.AtomicWeight, 226.025) {
		t.Fatalf("malformed mass not repaired: %g", n.AtomicWeight)
	}
}

func TestResolveFallsBackToNomenclatureMaximum(t *testing.T) {
	r := embeddedResolver(t)
	for _, name := range []string{"Np-240m", "Np-240M"} {
		n, err := r.Resolve(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !near(n.HalfLifeSeconds, 7.4*60) {
			t.Fatalf("%s: expected the longer listed half-life, got %g", name, n.HalfLifeSeconds)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	r := embeddedResolver(t)
	_, err := r.Resolve("Xx-999")
	if !errors.Is(err, domain.ErrNuclideNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := r.Resolve("  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestResolveOrderAndErrors(t *testing.T) {
	hl, unit := refdata.NomenclatureHalfLifeColumns[0][0], refdata.NomenclatureHalfLifeColumns[0][1]
	c := refdata.NewCatalog(map[refdata.TableName][]refdata.Row{
		refdata.TableNuclideMaster: {
			{refdata.ColNuclide: "Aa-1", refdata.ColHalfLife: "--", refdata.ColPhoton: "1.0"},
			{refdata.ColNuclide: "Bb-2", refdata.ColHalfLife: "4.0 fortnights"},
			{refdata.ColNuclide: "Cc-3x", refdata.ColHalfLife: "2d", refdata.ColPhoton: "N/A"},
		},
		refdata.TableJAERIHalfLife: {
			{refdata.ColNuclide: "Aa-1", refdata.ColHalfLife: "3h"},
		},
		refdata.TableNomenclature: {
			{refdata.ColFixedName: "Cc-3", refdata.ColICRP107Name: "Cc-3x", hl: "9", unit: "y"},
		},
		refdata.TableAtomicMass: {
			{refdata.ColNuclide: "Aa-1", refdata.ColAtomicMass: "1.0"},
			{refdata.ColNuclide: "Bb-2", refdata.ColAtomicMass: "2.0"},
			{refdata.ColNuclide: "Cc-3", refdata.ColAtomicMass: "3.0"},
			{refdata.ColNuclide: "Dd-4", refdata.ColAtomicMass: "--"},
		},
	})
	r := NewResolver(c)

	// A placeholder in master moves on to the next source.
	n, err := r.Resolve("Aa-1")
	if err != nil || n.HalfLifeSeconds != 3*3600 {
		t.Fatalf("Aa-1: %+v %v", n, err)
	}

	if _, err := r.Resolve("Bb-2"); !errors.Is(err, domain.ErrUnrecognizedHalfLifeUnit) {
		t.Fatalf("Bb-2: expected unit error, got %v", err)
	}

	// The ICRP-107 alternate wins over the nomenclature half-life.
	n, err = r.Resolve("Cc-3")
	if err != nil || n.HalfLifeSeconds != 2*86400 || n.PhotonEnergy != 0 {
		t.Fatalf("Cc-3: %+v %v", n, err)
	}

	if _, err := r.AtomicWeight("Dd-4"); !errors.Is(err, domain.ErrInvalidNumericInput) {
		t.Fatalf("Dd-4: expected numeric error, got %v", err)
	}
	if _, err := r.AtomicWeight("Ee-5"); !errors.Is(err, domain.ErrNuclideNotFound) {
		t.Fatalf("Ee-5: expected not found, got %v", err)
	}
}

func TestStripMetastable(t *testing.T) {
	cases := map[string]string{
		"Tc-99m":  "Tc-99",
		"Ag-108M": "Ag-108",
		"Cs-137":  "Cs-137",
		"Am-242m": "Am-242",
		"H":       "H",
		"Xx-m":    "Xx-m",
	}
	for in, want := range cases {
		if got := StripMetastable(in); got != want {
			t.Fatalf("%s: got %s want %s", in, got, want)
		}
	}
}

func TestKnownIsSortedAndDistinct(t *testing.T) {
	r := embeddedResolver(t)
	known := r.Known()
	for i := 1; i < len(known); i++ {
		if known[i-1] >= known[i] {
			t.Fatalf("not sorted/distinct at %d: %v", i, known)
		}
	}
}
