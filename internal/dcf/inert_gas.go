package dcf

// InertGas is an entry of the inert-gas submersion table compiled from
// ICRP-119 Annex C and JAERI-Data/Code 2002-013 Table 8. Rates are identical
// for workers and the public.
type InertGas struct {
	Element  string
	Nuclide  string
	HalfLife string
	// DoseRatePerDay is in Sv/day per Bq/m³.
	DoseRatePerDay float64
}

// DoseRate returns the rate in Sv/s per Bq/m³.
func (g InertGas) DoseRate() float64 { return g.DoseRatePerDay / 86400 }

var inertGases = []InertGas{
	{"Argon", "Ar-37", "35.02 d", 4.1e-15},
	{"Argon", "Ar-39", "269 y", 1.1e-11},
	{"Argon", "Ar-41", "1.827 h", 5.3e-09},
	{"Argon", "Ar-42", "32.9 y", 1.3e-11},
	{"Argon", "Ar-44", "11.87 m", 8.1e-09},
	{"Krypton", "Kr-74", "11.50 m", 4.5e-09},
	{"Krypton", "Kr-75", "4.29 m", 5.1e-09},
	{"Krypton", "Kr-76", "14.8 h", 1.6e-09},
	{"Krypton", "Kr-77", "74.7 m", 3.9e-09},
	{"Krypton", "Kr-79", "35.04 h", 9.7e-10},
	{"Krypton", "Kr-81", "2.1E5 y", 2.1e-11},
	{"Krypton", "Kr-81m", "13 s", 4.8e-10},
	{"Krypton", "Kr-83m", "1.83 h", 2.1e-13},
	{"Krypton", "Kr-85", "10.72 y", 2.2e-11},
	{"Krypton", "Kr-85m", "4.48 h", 5.9e-10},
	{"Krypton", "Kr-87", "76.3 m", 3.4e-09},
	{"Krypton", "Kr-88", "2.84 h", 8.4e-09},
	{"Krypton", "Kr-89", "3.15 m", 8.3e-09},
	{"Xenon", "Xe-120", "40 m", 1.5e-09},
	{"Xenon", "Xe-121", "40.1 m", 7.5e-09},
	{"Xenon", "Xe-122", "20.1 h", 1.9e-10},
	{"Xenon", "Xe-123", "2.08 h", 2.4e-09},
	{"Xenon", "Xe-125", "17.0 h", 9.3e-10},
	{"Xenon", "Xe-127", "36.41 d", 9.7e-10},
	{"Xenon", "Xe-127m", "1.15333 m", 6.0e-10},
	{"Xenon", "Xe-129m", "8.0 d", 8.1e-11},
	{"Xenon", "Xe-131m", "11.9 d", 3.2e-11},
	{"Xenon", "Xe-133", "5.245 d", 1.2e-10},
	{"Xenon", "Xe-133m", "2.188 d", 1.1e-10},
	{"Xenon", "Xe-135", "9.09 h", 9.6e-10},
	{"Xenon", "Xe-135m", "15.29 m", 1.6e-09},
	{"Xenon", "Xe-137", "3.818 m", 9.4e-10},
	{"Xenon", "Xe-138", "14.17 m", 4.7e-09},
	{"Nitrogen", "N-13", "9.965 m", 4.0e-09},
	{"Oxygen", "O-14", "1.17677 m", 1.4e-08},
	{"Oxygen", "O-15", "2.03733 m", 4.0e-09},
}

var inertGasIndex = func() map[string]InertGas {
	m := make(map[string]InertGas, len(inertGases))
	for _, g := range inertGases {
		m[g.Nuclide] = g
	}
	return m
}()

// LookupInertGas returns the table entry for nuclide. Names match exactly.
func LookupInertGas(nuclide string) (InertGas, bool) {
	g, ok := inertGasIndex[nuclide]
	return g, ok
}

// IsInertGas reports whether nuclide is on the inert-gas list.
func IsInertGas(nuclide string) bool {
	_, ok := inertGasIndex[nuclide]
	return ok
}

// InertGases returns a copy of the table.
func InertGases() []InertGas {
	return append([]InertGas(nil), inertGases...)
}
