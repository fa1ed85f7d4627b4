package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"hazcat/pkg/domain"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func checkOutput(format string) error {
	switch format {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("%w: output format %q (want table or json)", domain.ErrInvalidInput, format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// num prints a value with four significant digits, "inf" for unbounded
// quantities and "-" for missing ones.
func num(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsNaN(v):
		return "-"
	default:
		return strconv.FormatFloat(v, 'g', 4, 64)
	}
}

func published(p *domain.PublishedThreshold) (string, string) {
	if p == nil {
		return "-", "-"
	}
	return num(p.HC2Curies), num(p.HC3Curies)
}

func writeReport(w io.Writer, format string, report domain.Report) error {
	if err := checkOutput(format); err != nil {
		return err
	}
	if format == outputJSON {
		return writeJSON(w, report)
	}

	fmt.Fprintf(w, "Report %s", report.ID)
	if report.Facility != "" {
		fmt.Fprintf(w, " (%s)", report.Facility)
	}
	fmt.Fprintf(w, " %s\n\n", report.CreatedAt.Format("2006-01-02 15:04:05Z07:00"))

	tw := newTable(w)
	fmt.Fprintln(tw, "NUCLIDE\tINVENTORY_CI\tHC2_CI\tHC3_CI\tDOMINANT\tTABLE_HC2_CI\tTABLE_HC3_CI\tLOOKUP\tCOMPUTED")
	for _, res := range report.Results {
		if res.Failed() {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\t-\t-\n", res.Nuclide.Name, num(res.InventoryCi))
			continue
		}
		pubHC2, pubHC3 := published(res.Published)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			res.Nuclide.Name, num(res.InventoryCi),
			num(res.HC2.Curies.Float()), num(res.HC3.Curies.Float()), res.HC3.Dominant,
			pubHC2, pubHC3, res.Categories.Lookup, res.Categories.Computed)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if c := report.Classification; c != nil {
		fmt.Fprintln(w)
		for _, sor := range []domain.SumOfRatio{c.Lookup, c.Computed} {
			if !sor.Available {
				fmt.Fprintf(w, "Sum of ratios (%s): unavailable: %s\n", sor.Basis, sor.Reason)
				continue
			}
			fmt.Fprintf(w, "Sum of ratios (%s): HC-2 %s, HC-3 %s => %s\n", sor.Basis, num(sor.HC2), num(sor.HC3), sor.Category)
		}
	}

	for _, res := range report.Results {
		if res.Failed() {
			fmt.Fprintf(w, "\n%s: error: %s", res.Nuclide.Name, res.Err)
		}
		for _, note := range res.Notes {
			fmt.Fprintf(w, "\n%s: note: %s", res.Nuclide.Name, note)
		}
		for _, warning := range res.Warnings {
			fmt.Fprintf(w, "\n%s: warning: %s", res.Nuclide.Name, warning)
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeNuclides(w io.Writer, format string, nuclides []domain.Nuclide) error {
	if err := checkOutput(format); err != nil {
		return err
	}
	if format == outputJSON {
		return writeJSON(w, nuclides)
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "NUCLIDE\tHALF_LIFE_S\tDECAY_CONST_PER_S\tATOMIC_WEIGHT\tE1_MEV")
	for _, n := range nuclides {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.Name, num(n.HalfLifeSeconds), num(n.DecayConstant), num(n.AtomicWeight), num(n.PhotonEnergy))
	}
	return tw.Flush()
}

func writeSummaries(w io.Writer, format string, summaries []domain.ReportSummary) error {
	if err := checkOutput(format); err != nil {
		return err
	}
	if format == outputJSON {
		return writeJSON(w, summaries)
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tFACILITY\tCREATED\tNUCLIDES\tFAILED")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", s.ID, s.Facility, s.CreatedAt.Format("2006-01-02 15:04:05"), s.Nuclides, s.Failed)
	}
	return tw.Flush()
}
