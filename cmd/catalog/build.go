package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
	"github.com/TuanThanh1609/leparfurm/internal/infrastructure/export"
	"github.com/TuanThanh1609/leparfurm/internal/infrastructure/source"
	"github.com/TuanThanh1609/leparfurm/internal/usecase"
)

var (
	buildDryRun     bool
	buildReportJSON bool
	buildSnapshot   string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Reconcile the sources and publish the catalog",
	Long: `build reads every configured source, merges records that share an id,
extracts description attributes and writes the catalog artifact. When a
snapshot is configured it seeds the catalog and the CSV export only
refreshes it. Nothing is written if any source fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("snapshot") {
			cfg.Sources.SnapshotPath = buildSnapshot
		}

		var secondary []domain.CatalogWriter
		if cfg.Output.XLSXPath != "" {
			secondary = append(secondary, export.NewXLSXWriter(cfg.Output.XLSXPath))
		}
		if cfg.Output.SQLitePath != "" {
			secondary = append(secondary, export.NewSQLiteWriter(cfg.Output.SQLitePath))
		}

		service := usecase.NewCatalogService(
			source.NewLoader(),
			usecase.CatalogServiceConfig{
				CSVPath:               cfg.Sources.CSVPath,
				FeedPath:              cfg.Sources.FeedPath,
				SnapshotPath:          cfg.Sources.SnapshotPath,
				PlaceholderImageToken: cfg.Sources.PlaceholderImageToken,
				MinDescriptionLength:  cfg.Extract.MinDescriptionLength,
				InferVibeTags:         cfg.Extract.InferVibeTags,
				EnableDebugLogging:    cfg.Extract.EnableDebugLogging,
			},
			export.NewJSONWriter(cfg.Output.CatalogPath),
			secondary...,
		)

		ctx := cmd.Context()
		var report *domain.RunReport
		var err error
		if buildDryRun {
			_, report, err = service.Build(ctx)
		} else {
			report, err = service.Run(ctx)
		}
		if err != nil {
			return fmt.Errorf("catalog build failed: %w", err)
		}

		if buildReportJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printReport(report, buildDryRun)
		return nil
	},
}

func printReport(report *domain.RunReport, dryRun bool) {
	fmt.Printf("Run %s (%s mode)\n", report.RunID, report.Mode)
	for _, s := range report.Sources {
		fmt.Printf("  %-7s parsed %5d  skipped %4d  new %5d  merged %5d\n",
			s.Source, s.Parsed, s.Skipped, s.Inserted, s.Merged)
	}
	fmt.Printf("Dropped %d incomplete products; %d in catalog (%s)\n",
		report.Filtered, report.Final, report.Duration.Round(time.Millisecond))
	if dryRun {
		fmt.Println("Dry run: nothing written")
	} else {
		fmt.Printf("Wrote %s\n", cfg.Output.CatalogPath)
	}
}

func init() {
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Build and report without writing any artifact")
	buildCmd.Flags().BoolVar(&buildReportJSON, "json", false, "Print the run report as JSON")
	buildCmd.Flags().StringVar(&buildSnapshot, "snapshot", "", "Prior catalog snapshot to refresh (overrides config)")
	rootCmd.AddCommand(buildCmd)
}
