// Command hazcat computes DOE-STD-1027 hazard category threshold quantities
// for a facility radionuclide inventory and manages the reference data and
// report archive behind them.
package main

import (
	"fmt"
	"os"
)

var (
	// Version is set at build time with -ldflags.
	Version  = "dev"
	exitFunc = os.Exit
)

func main() {
	cmd := newRootCmd()
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitFunc(1)
		return
	}
	exitFunc(0)
}
