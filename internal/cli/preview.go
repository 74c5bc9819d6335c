package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opengreens/verdant/internal/observability"
	"github.com/opengreens/verdant/internal/pipeline"
	"github.com/opengreens/verdant/internal/store"
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Run the pipeline without persisting or calling an LLM",
	Long: `Preview runs fetch, categorization, and clustering exactly like scrape,
but forces the dryrun store and template event copy. Nothing is written
anywhere and no LLM is called; the output shows which events a real run
would create.

Example:
  verdant preview --boston-csv 311.csv
  verdant preview --sources socrata:Chicago`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVar(&bostonCSV, "boston-csv", "", "path to a Boston 311 CSV export")
	previewCmd.Flags().StringSliceVar(&sourceFilter, "sources", nil, "restrict to these sources (boston, socrata, open311, or a full name like socrata:Chicago)")
	previewCmd.Flags().IntVar(&daysBack, "days-back", 14, "recency window in days for API sources")
	previewCmd.Flags().IntVar(&rowLimit, "limit", 1000, "max rows to fetch per source")
	previewCmd.Flags().Float64Var(&maxDistanceKM, "max-distance", 0.5, "max distance in km between an issue and its cluster seed")
	previewCmd.Flags().DurationVar(&scrapeTimeout, "timeout", 10*time.Minute, "overall run timeout")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Compose.Provider = ""
	cfg.Store.Driver = "dryrun"
	cfg.RateLimit.ComposeDelay = 0

	dryrun := store.NewDryRunStore()
	p := pipeline.New(cfg, dryrun, observability.NewMetrics())

	sources, err := buildSources(cfg, p.Fetcher())
	if err != nil {
		return err
	}

	report := p.Run(ctx, sources)
	if err := p.RenderReport(report); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	fmt.Printf("\nDry run: %d marker(s) and %d event(s) would be created\n",
		len(dryrun.Markers()), len(dryrun.Events()))

	return nil
}
