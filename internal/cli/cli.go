package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stockii/event-skill-for-openclaw/internal/cache"
	"github.com/stockii/event-skill-for-openclaw/internal/config"
	"github.com/stockii/event-skill-for-openclaw/internal/daterange"
	"github.com/stockii/event-skill-for-openclaw/internal/event"
	"github.com/stockii/event-skill-for-openclaw/internal/logger"
	"github.com/stockii/event-skill-for-openclaw/internal/orchestrator"
	"github.com/stockii/event-skill-for-openclaw/internal/provider"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig   string
	flagRegion   string
	flagLatLong  string
	flagRadius   int
	flagCategory string
	flagLimit    int
	flagDate     string
	flagFormat   string
	flagDataDir  string
	flagNoCache  bool
	flagVerbose  bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event-skill",
		Short: "Aggregate regional event listings from multiple sources",
		Long: `Fetches event listings for a region from a ticketing API, scraped
municipal pages, and JavaScript-rendered tourism widgets in parallel, then
deduplicates, filters, and sorts them into a single list. Individual source
failures never fail the run.`,
		RunE:          runFetch,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&flagRegion, "region", "", "Region label (overrides config)")
	cmd.Flags().StringVar(&flagLatLong, "latlong", "", "Search center as lat,long (overrides config)")
	cmd.Flags().IntVar(&flagRadius, "radius", 0, "Search radius in km (overrides config)")
	cmd.Flags().StringVar(&flagCategory, "category", "", "Only show events of this category")
	cmd.Flags().IntVar(&flagLimit, "limit", 0, "Maximum number of results (overrides config)")
	cmd.Flags().StringVar(&flagDate, "date", "", `Date expression: "today", "weekend", YYYY-MM-DD, or YYYY-MM-DD:YYYY-MM-DD (default: next 7 days)`)
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", "", "Cache directory (overrides config)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the result cache")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	return cmd
}

// runFetch is the main command logic
func runFetch(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyOverrides(cfg)

	// A bad date expression is a user-input fault and fatal to the run.
	rng, err := daterange.Resolve(flagDate, time.Now().In(cfg.Location()))
	if err != nil {
		return err
	}

	store, err := cache.New(cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	key := cache.Key(cfg.Region, rng, cfg.RadiusKM)

	if !flagNoCache {
		events, ok, err := store.Get(key)
		if err != nil {
			return fmt.Errorf("reading cache: %w", err)
		}
		if ok {
			logger.Debug("cache hit", logger.Fields{"key": key, "events": len(events)})
			return render(cmd, events, rng, format, true)
		}
	}

	providers := make([]provider.Provider, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		p, err := provider.NewFromConfig(src, cfg)
		if err != nil {
			return fmt.Errorf("configuring source %q: %w", src.Name, err)
		}
		providers = append(providers, p)
	}

	fetched := orchestrator.Run(context.Background(), providers, rng)
	merged := event.Dedup(fetched)
	merged = event.FilterCategory(merged, flagCategory)
	if cfg.Limit > 0 && len(merged) > cfg.Limit {
		merged = merged[:cfg.Limit]
	}

	if err := store.Put(key, merged); err != nil {
		// Losing the memo costs the next run a refetch, nothing more.
		logger.Warn("writing cache failed", logger.Fields{"key": key, "error": err.Error()})
	}

	return render(cmd, merged, rng, format, false)
}

func applyOverrides(cfg *config.Config) {
	if flagRegion != "" {
		cfg.Region = flagRegion
	}
	if flagLatLong != "" {
		cfg.LatLong = flagLatLong
	}
	if flagRadius > 0 {
		cfg.RadiusKM = flagRadius
	}
	if flagLimit > 0 {
		cfg.Limit = flagLimit
	}
	if flagDataDir != "" {
		cfg.CacheDir = flagDataDir
	}
}

func render(cmd *cobra.Command, events []*event.Event, rng daterange.Range, format OutputFormat, cached bool) error {
	result := &OutputResult{
		FetchedAt:  time.Now().UTC(),
		RangeStart: rng.Start,
		RangeEnd:   rng.End,
		Events:     events,
		EventCount: len(events),
		FromCache:  cached,
	}
	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
