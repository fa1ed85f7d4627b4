package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "hazcat",
		Short: "Hazard category threshold quantities for radionuclide inventories",
		Long: `hazcat derives HC-2 and HC-3 threshold quantities for each radionuclide of a
facility inventory from reference dose conversion factors, compares them with
the DOE-STD-1027-2018 table and classifies the facility by sum of ratios.

Configuration is read from --config (or ./hazcat.yaml) and HAZCAT_* variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.storage, "storage", "", "Storage driver override (memory, sqlite, postgres)")
	pf.BoolVar(&flags.trace, "trace", false, "Write JSON trace spans to stderr")
	pf.BoolVar(&flags.metrics, "metrics", false, "Print operation metrics to stderr on exit")

	cmd.AddCommand(
		newRunCmd(flags),
		newNuclideCmd(flags),
		newDoseCmd(flags),
		newRefdataCmd(flags),
		newReportsCmd(flags),
		newConfigCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

// withApp opens the backends for one command and closes them afterwards.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(context.Context, *app) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.close())
	}()
	return fn(ctx, a)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "hazcat version %s\n", Version)
			return err
		},
	}
}
