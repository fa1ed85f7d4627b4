package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hazcat/internal/core"
	"hazcat/internal/pointsource"
	"hazcat/internal/refdata"
	"hazcat/pkg/domain"
)

func newNuclideCmd(flags *globalFlags) *cobra.Command {
	var (
		output string
		list   bool
	)
	cmd := &cobra.Command{
		Use:   "nuclide NAME...",
		Short: "Show resolved half-life, atomic weight and photon energy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !list && len(args) == 0 {
				return fmt.Errorf("%w: name at least one nuclide or pass --list", domain.ErrInvalidInput)
			}
			if err := checkOutput(output); err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				svc, err := a.service(ctx)
				if err != nil {
					return err
				}
				if list {
					for _, name := range svc.KnownNuclides() {
						fmt.Fprintln(cmd.OutOrStdout(), name)
					}
					return nil
				}
				nuclides := make([]domain.Nuclide, 0, len(args))
				for _, name := range args {
					n, err := svc.ResolveNuclide(ctx, name)
					if err != nil {
						return err
					}
					nuclides = append(nuclides, n)
				}
				return writeNuclides(cmd.OutOrStdout(), output, nuclides)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format (table, json)")
	cmd.Flags().BoolVar(&list, "list", false, "List every nuclide the reference data knows")
	return cmd
}

func newDoseCmd(flags *globalFlags) *cobra.Command {
	var (
		req    core.PointSourceRequest
		unit   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "dose NUCLIDE",
		Short: "Tabulate the unshielded point-source dose rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			req.Nuclide = args[0]
			req.Unit = pointsource.Unit(unit)
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				svc, err := a.service(ctx)
				if err != nil {
					return err
				}
				res, err := svc.PointSourceDose(ctx, req)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if output == outputJSON {
					return writeJSON(w, res)
				}
				fmt.Fprintf(w, "%s: %d gamma lines, E1 %s MeV, %s Ci\n\n", args[0], len(res.Spectrum.Lines), num(res.Spectrum.E1()), num(req.ActivityCi))
				tw := newTable(w)
				fmt.Fprintf(tw, "DISTANCE_M\tFRACTION\tRATE_%s\n", res.Unit)
				for _, p := range res.Points {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", num(p.DistanceM), num(p.Fraction), num(p.Rate))
				}
				return tw.Flush()
			})
		},
	}
	f := cmd.Flags()
	f.Float64VarP(&req.ActivityCi, "activity", "a", 1, "Source activity in curies")
	f.Float64SliceVar(&req.Distances, "distance", nil, "Receptor distances in metres (default table when empty)")
	f.Float64SliceVar(&req.Fractions, "fraction", nil, "Exposed fractions (default table when empty)")
	f.StringVar(&unit, "unit", string(pointsource.UnitMilliSievertPerHour), "Dose-rate unit (mSv/h, mR/h)")
	f.StringVarP(&output, "output", "o", outputTable, "Output format (table, json)")
	return cmd
}

func newRefdataCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refdata",
		Short: "Manage reference tables",
	}

	var from string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Copy reference tables into the persistent store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				src, err := a.referenceSource(ctx, core.RefdataSource(from))
				if err != nil {
					return err
				}
				names, err := a.store.ImportTables(ctx, src)
				if err != nil {
					return fmt.Errorf("import reference tables: %w", err)
				}
				a.logger.Info("reference tables imported", "tables", len(names), "storage", string(a.cfg.Storage.Driver))
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
	importCmd.Flags().StringVar(&from, "from", string(core.RefdataEmbedded), "Source of the tables (embedded, blob)")

	var prefix string
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Write the embedded reference tables to the blob store as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				bs, err := a.blobStore(ctx)
				if err != nil {
					return err
				}
				if prefix == "" {
					prefix = a.cfg.Refdata.BlobPrefix
				}
				keys, err := refdata.NewBlobStore(bs, prefix).Publish(ctx, refdata.Embedded())
				if err != nil {
					return fmt.Errorf("publish reference tables: %w", err)
				}
				a.logger.Info("reference tables published", "objects", len(keys), "blob", string(a.cfg.Blob.Driver))
				for _, key := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
				return nil
			})
		},
	}
	publishCmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default refdata.blob_prefix or \"refdata\")")

	tablesCmd := &cobra.Command{
		Use:   "tables",
		Short: "List reference tables and their row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				svc, err := a.service(ctx)
				if err != nil {
					return err
				}
				catalog := svc.Catalog()
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "TABLE\tROWS")
				for _, spec := range refdata.Tables() {
					fmt.Fprintf(tw, "%s\t%d\n", spec.Name, catalog.Len(spec.Name))
				}
				return tw.Flush()
			})
		},
	}

	cmd.AddCommand(importCmd, publishCmd, tablesCmd)
	return cmd
}

// referenceSource resolves the tables to import. Importing from the store
// into itself is rejected.
func (a *app) referenceSource(ctx context.Context, src core.RefdataSource) (refdata.Store, error) {
	cfg := core.RefdataConfig{Source: src, BlobPrefix: a.cfg.Refdata.BlobPrefix}
	switch src {
	case core.RefdataBlob:
		bs, err := a.blobStore(ctx)
		if err != nil {
			return nil, err
		}
		return core.ReferenceStore(cfg, core.RefdataDeps{Blob: bs})
	case core.RefdataStore:
		return nil, fmt.Errorf("%w: cannot import the persistent store into itself", domain.ErrInvalidInput)
	default:
		return core.ReferenceStore(cfg, core.RefdataDeps{})
	}
}

func newReportsCmd(flags *globalFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List archived reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				svc, err := a.service(ctx)
				if err != nil {
					return err
				}
				summaries, err := svc.Reports(ctx)
				if err != nil {
					return err
				}
				return writeSummaries(cmd.OutOrStdout(), output, summaries)
			})
		},
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", outputTable, "Output format (table, json)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Print an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				svc, err := a.service(ctx)
				if err != nil {
					return err
				}
				report, err := svc.Report(ctx, args[0])
				if err != nil {
					return err
				}
				return writeReport(cmd.OutOrStdout(), output, report)
			})
		},
	})
	return cmd
}

const redacted = "<redacted>"

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.Blob.S3.SecretAccessKey != "" {
				shown.Blob.S3.SecretAccessKey = redacted
			}
			if shown.Blob.S3.SessionToken != "" {
				shown.Blob.S3.SessionToken = redacted
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(&shown); err != nil {
				return err
			}
			return enc.Close()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "init PATH",
		Short: "Write the effective configuration to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if err := cfg.SaveToFile(args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return err
		},
	})
	return cmd
}
