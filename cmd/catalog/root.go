package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/TuanThanh1609/leparfurm/config"
	"github.com/TuanThanh1609/leparfurm/internal/usecase"
)

var (
	configPath string
	verbose    bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Build and query the Leparfurm perfume catalog",
	Long: `catalog reconciles the crawler's CSV export, RSS feed and an optional
prior snapshot into one product catalog, and ranks that catalog against
quiz answers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetFlags(log.Ldate | log.Ltime)
		log.SetOutput(os.Stderr)

		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if verbose {
			loaded.Extract.EnableDebugLogging = true
			loaded.Matching.EnableDebugLogging = true
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: config.yaml in ., ./config or /etc/leparfurm)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// matchConfig maps the matching section onto the engine's configuration
func matchConfig(m config.MatchingConfig) usecase.MatchConfig {
	return usecase.MatchConfig{
		TagWeight:          m.TagWeight,
		BudgetBonus:        m.BudgetBonus,
		PremiumBrandBonus:  m.PremiumBrandBonus,
		BudgetMax:          m.BudgetMax,
		MidMin:             m.MidMin,
		MidMax:             m.MidMax,
		LuxuryMin:          m.LuxuryMin,
		PremiumBrands:      m.PremiumBrands,
		DefaultTopN:        m.DefaultTopN,
		Workers:            m.Workers,
		EnableDebugLogging: m.EnableDebugLogging,
	}
}
