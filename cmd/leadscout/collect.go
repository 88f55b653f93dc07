package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexryan/leadscout/internal/cache"
	"github.com/alexryan/leadscout/internal/config"
	"github.com/alexryan/leadscout/internal/logging"
	"github.com/alexryan/leadscout/internal/metrics"
)

var (
	collectName     string
	collectDomain   string
	collectContacts bool
	collectNoCache  bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect and score a company profile from the command line",
	Long:  `Run a one-off aggregation across the configured sources and print the merged, scored profile as JSON. Results are not persisted.`,
	RunE:  runCollect,
}

func init() {
	collectCmd.Flags().StringVar(&collectName, "name", "", "Company name")
	collectCmd.Flags().StringVar(&collectDomain, "domain", "", "Company domain")
	collectCmd.Flags().BoolVar(&collectContacts, "contacts", false, "Also collect contacts")
	collectCmd.Flags().BoolVar(&collectNoCache, "no-cache", false, "Bypass the response cache")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(_ *cobra.Command, _ []string) error {
	if collectName == "" && collectDomain == "" {
		return fmt.Errorf("--name or --domain is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// One-off runs cache in memory; no database needed.
	col := newCollector(cfg, cache.NewMemory(), logger, metrics.New())

	profile, err := col.CollectFullProfile(context.Background(), collectName, collectDomain,
		collectContacts, !collectNoCache)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(profile)
}
