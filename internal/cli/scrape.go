package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opengreens/verdant/internal/model"
	"github.com/opengreens/verdant/internal/observability"
	"github.com/opengreens/verdant/internal/pipeline"
	"github.com/opengreens/verdant/internal/source"
	"github.com/opengreens/verdant/internal/store"
)

var (
	bostonCSV     string
	sourceFilter  []string
	daysBack      int
	rowLimit      int
	maxDistanceKM float64
	storeDriver   string
	composeName   string
	composeModel  string
	outJSON       string
	outMD         string
	scrapeTimeout time.Duration
	userAgent     string
	noCache       bool
	noRobots      bool
	cacheDir      string
	metricsAddr   string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch 311 issues, cluster them, and create community events",
	Long: `Scrape runs the full pipeline:
- Fetch recent environmental issues from the configured 311 sources
- Cluster nearby issues of the same category
- Compose event copy (with the configured LLM provider, or templates)
- Persist a marker and an event per cluster

Events are written through the configured store driver. The default driver
is dryrun, which only prints what would be created; pass --store supabase
or --store postgres to persist.

Example:
  verdant scrape --boston-csv 311.csv
  verdant scrape --sources socrata:Chicago,open311:Baltimore --store supabase
  verdant scrape --boston-csv 311.csv --compose anthropic --store postgres`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	// Source flags
	scrapeCmd.Flags().StringVar(&bostonCSV, "boston-csv", "", "path to a Boston 311 CSV export")
	scrapeCmd.Flags().StringSliceVar(&sourceFilter, "sources", nil, "restrict to these sources (boston, socrata, open311, or a full name like socrata:Chicago)")
	scrapeCmd.Flags().IntVar(&daysBack, "days-back", 14, "recency window in days for API sources")
	scrapeCmd.Flags().IntVar(&rowLimit, "limit", 1000, "max rows to fetch per source")

	// Clustering flags
	scrapeCmd.Flags().Float64Var(&maxDistanceKM, "max-distance", 0.5, "max distance in km between an issue and its cluster seed")

	// Compose flags
	scrapeCmd.Flags().StringVar(&composeName, "compose", "", "LLM provider for event copy (anthropic, openai, ollama; empty = templates)")
	scrapeCmd.Flags().StringVar(&composeModel, "compose-model", "", "model name for the compose provider")

	// Store flags
	scrapeCmd.Flags().StringVar(&storeDriver, "store", "dryrun", "persistence driver (supabase, postgres, dryrun)")

	// Output flags
	scrapeCmd.Flags().StringVar(&outJSON, "json", "", "write run report JSON to this path")
	scrapeCmd.Flags().StringVar(&outMD, "md", "", "write run report Markdown to this path")

	// HTTP flags
	scrapeCmd.Flags().DurationVar(&scrapeTimeout, "timeout", 10*time.Minute, "overall run timeout")
	scrapeCmd.Flags().StringVar(&userAgent, "ua", "Verdant/0.1 (+https://github.com/opengreens/verdant)", "HTTP User-Agent")
	scrapeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response caching (force fresh fetches)")
	scrapeCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks")
	scrapeCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "persist the response cache to this directory")

	// Observability flags
	scrapeCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (e.g. :9090)")
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	metrics := observability.NewMetrics()
	if metricsAddr != "" {
		srv := observability.NewServer(metricsAddr)
		srv.Start()
		defer func() { _ = srv.Stop(context.Background()) }()
	}

	p := pipeline.New(cfg, st, metrics)

	sources, err := buildSources(cfg, p.Fetcher())
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Scraping %d source(s), store: %s\n", len(sources), st.Name())
	}

	report := p.Run(ctx, sources)
	if err := p.RenderReport(report); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	// Every source failing means the run produced nothing; surface that as
	// a command failure so cron jobs notice.
	failed := 0
	for _, sr := range report.Sources {
		if sr.Error != "" {
			failed++
		}
	}
	if len(report.Sources) > 0 && failed == len(report.Sources) {
		return fmt.Errorf("all %d sources failed", failed)
	}

	return nil
}

// buildConfig assembles the run configuration from defaults, flags, and
// environment variables.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.CheckRobots = !noRobots
	cfg.Cache.Enabled = !noCache
	cfg.Cache.Dir = cacheDir
	cfg.Cluster.MaxDistanceKM = maxDistanceKM
	cfg.Cluster.DaysBack = daysBack
	cfg.Cluster.RowLimit = rowLimit
	cfg.Output.Verbose = verbose
	cfg.Output.JSON = outJSON
	cfg.Output.MD = outMD

	cfg.Compose.Provider = composeName
	cfg.Compose.Model = composeModel
	switch composeName {
	case "anthropic", "claude":
		cfg.Compose.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.Compose.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "openai":
		cfg.Compose.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Compose.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.Compose.BaseURL = baseURL
		}
	}

	cfg.Store.Driver = storeDriver
	switch storeDriver {
	case "supabase":
		cfg.Store.SupabaseURL = os.Getenv("SUPABASE_URL")
		cfg.Store.SupabaseKey = os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
		if cfg.Store.SupabaseURL == "" || cfg.Store.SupabaseKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY environment variables are required for the supabase store")
		}
	case "postgres":
		cfg.Store.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.Store.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for the postgres store")
		}
	}

	return cfg, nil
}

// buildSources registers every configured source and applies the --sources
// filter.
func buildSources(cfg *model.Config, client source.HTTPClient) ([]source.Source, error) {
	registry := source.NewRegistry()

	if bostonCSV != "" {
		registry.Register(source.NewBostonSource(bostonCSV, cfg.Cluster.RowLimit))
	}

	appToken := os.Getenv("SOCRATA_APP_TOKEN")
	for _, city := range source.DefaultSocrataCities() {
		city.AppToken = appToken
		registry.Register(source.NewSocrataSource(city, client, cfg.Cluster.DaysBack, cfg.Cluster.RowLimit))
	}

	for _, city := range source.DefaultOpen311Cities() {
		registry.Register(source.NewOpen311Source(city, client, cfg.Cluster.DaysBack))
	}

	if len(sourceFilter) == 0 {
		return registry.All(), nil
	}

	var selected []source.Source
	for _, s := range registry.All() {
		if matchesFilter(s.Name(), sourceFilter) {
			selected = append(selected, s)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no sources match filter %v", sourceFilter)
	}
	return selected, nil
}

// matchesFilter accepts either a full source name (socrata:Chicago) or a
// source family (socrata).
func matchesFilter(name string, filters []string) bool {
	for _, f := range filters {
		if strings.EqualFold(name, f) {
			return true
		}
		if family, _, ok := strings.Cut(name, ":"); ok && strings.EqualFold(family, f) {
			return true
		}
	}
	return false
}
