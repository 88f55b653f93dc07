package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexryan/leadscout/internal/cache"
	"github.com/alexryan/leadscout/internal/config"
	"github.com/alexryan/leadscout/internal/db"
	"github.com/alexryan/leadscout/internal/logging"
)

var invalidateNamespace string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Drop all cached responses for a source namespace",
	RunE:  runCacheInvalidate,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cache entries",
	RunE:  runCachePrune,
}

func init() {
	cacheInvalidateCmd.Flags().StringVar(&invalidateNamespace, "namespace", "", "Source namespace (linkedin, clearbit, hunter)")
	_ = cacheInvalidateCmd.MarkFlagRequired("namespace")
	cacheCmd.AddCommand(cacheInvalidateCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openStore(ctx context.Context) (*cache.PGStore, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("database url is required (LEADSCOUT_DATABASE_URL)")
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cache.NewPGStore(database.Pool(), logger), database.Close, nil
}

func runCacheInvalidate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	n := store.InvalidateNamespace(ctx, invalidateNamespace)
	fmt.Printf("invalidated %d entries in %s\n", n, invalidateNamespace)
	return nil
}

func runCachePrune(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	n := store.PruneExpired(ctx)
	fmt.Printf("pruned %d expired entries\n", n)
	return nil
}
