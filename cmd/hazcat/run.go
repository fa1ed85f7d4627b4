package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hazcat/pkg/domain"
)

type runOptions struct {
	name     string
	nuclides []string
	rfHC2    []float64
	rfHC3    []float64
	output   string
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [facility.yaml]",
		Short: "Compute threshold quantities and classify a facility inventory",
		Example: `  hazcat run facility.yaml
  hazcat run --nuclide Co-60=500 --nuclide Cs-137=10 --name "waste vault"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := facilityInput(args, opts)
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				svc, err := a.service(ctx)
				if err != nil {
					return err
				}
				report, runErr := svc.Run(ctx, in)
				if report.ID == "" {
					return runErr
				}
				if err := writeReport(cmd.OutOrStdout(), opts.output, report); err != nil {
					return err
				}
				return runErr
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "", "Facility name")
	f.StringArrayVarP(&opts.nuclides, "nuclide", "n", nil, "Inventory entry NAME=CURIES (repeatable)")
	f.Float64SliceVar(&opts.rfHC2, "rf-hc2", nil, "HC-2 release fraction override, one per nuclide")
	f.Float64SliceVar(&opts.rfHC3, "rf-hc3", nil, "HC-3 release fraction override, one per nuclide")
	f.StringVarP(&opts.output, "output", "o", outputTable, "Output format (table, json)")
	f.BoolVar(&flags.export, "export", false, "Write report artifacts to the blob store")
	return cmd
}

// facilityInput reads the inventory from a YAML file or from --nuclide flags.
func facilityInput(args []string, opts *runOptions) (domain.FacilityInput, error) {
	if len(args) == 1 {
		if len(opts.nuclides) > 0 {
			return domain.FacilityInput{}, fmt.Errorf("%w: give an inventory file or --nuclide flags, not both", domain.ErrInvalidInput)
		}
		return readFacilityFile(args[0], opts.name)
	}
	if len(opts.nuclides) == 0 {
		return domain.FacilityInput{}, fmt.Errorf("%w: no nuclides selected", domain.ErrInvalidInput)
	}
	names := make([]string, len(opts.nuclides))
	inventories := make([]float64, len(opts.nuclides))
	for i, spec := range opts.nuclides {
		name, ci, err := parseInventoryFlag(spec)
		if err != nil {
			return domain.FacilityInput{}, err
		}
		names[i], inventories[i] = name, ci
	}
	in, err := domain.NewFacilityInput(names, inventories, opts.rfHC2, opts.rfHC3)
	if err != nil {
		return domain.FacilityInput{}, err
	}
	in.Name = opts.name
	return in, nil
}

func parseInventoryFlag(spec string) (string, float64, error) {
	name, value, ok := strings.Cut(spec, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return "", 0, fmt.Errorf("%w: inventory entry %q must be NAME=CURIES", domain.ErrInvalidInput, spec)
	}
	ci, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: inventory for %s: %v", domain.ErrInvalidInput, name, err)
	}
	return strings.TrimSpace(name), ci, nil
}

func readFacilityFile(path, name string) (domain.FacilityInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.FacilityInput{}, fmt.Errorf("read inventory: %w", err)
	}
	var in domain.FacilityInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return domain.FacilityInput{}, fmt.Errorf("parse inventory %s: %w", path, err)
	}
	if name != "" {
		in.Name = name
	}
	return in, in.Validate()
}
