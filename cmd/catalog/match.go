package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
	"github.com/TuanThanh1609/leparfurm/internal/infrastructure/store"
	"github.com/TuanThanh1609/leparfurm/internal/usecase"
)

var (
	matchCatalog string
	matchLimit   int
	matchJSON    bool
)

var matchCmd = &cobra.Command{
	Use:   "match <answer>...",
	Short: "Rank a built catalog against quiz answers",
	Long: `match scores every product of a catalog artifact against the given
answers and prints the best matches. Budget, Mid and Luxury select a price
tier; any other answer is matched against product tags.`,
	Example: "  catalog match Fresh Office Budget --limit 3",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := matchCatalog
		if path == "" {
			path = cfg.Output.CatalogPath
		}

		catalog, err := store.LoadFile(path)
		if err != nil {
			return err
		}

		service := usecase.NewRecommendationService(catalog, nil, usecase.RecommendationServiceConfig{
			Match: matchConfig(cfg.Matching),
		})

		results, err := service.Recommend(cmd.Context(), &domain.MatchRequest{
			Answers: args,
			Limit:   matchLimit,
		})
		if err != nil {
			return err
		}

		if matchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tID\tTITLE\tBRAND\tPRICE")
		for _, r := range results {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", r.Score, r.Product.ID, r.Product.Title, r.Product.Brand, r.Product.Price)
		}
		return w.Flush()
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchCatalog, "catalog", "", "Catalog artifact to rank (default: output.catalog_path)")
	matchCmd.Flags().IntVarP(&matchLimit, "limit", "n", 0, "Number of matches to return (default: matching.default_top_n)")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(matchCmd)
}
