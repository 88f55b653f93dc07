package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexryan/leadscout/internal/agents"
	"github.com/alexryan/leadscout/internal/cache"
	"github.com/alexryan/leadscout/internal/config"
	"github.com/alexryan/leadscout/internal/db"
	"github.com/alexryan/leadscout/internal/llm"
	"github.com/alexryan/leadscout/internal/logging"
	"github.com/alexryan/leadscout/internal/metrics"
	"github.com/alexryan/leadscout/internal/outreach"
	"github.com/alexryan/leadscout/internal/server"
	"github.com/alexryan/leadscout/internal/tasks"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for lead collection, scoring, analysis and outreach.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database url is required (LEADSCOUT_DATABASE_URL)")
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	m := metrics.New()
	store := cache.NewPGStore(database.Pool(), logger)

	col := newCollector(cfg, store, logger, m)

	var analyst *agents.Analyst
	var generator *agents.Generator
	if cfg.Gemini.Key != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.Gemini.Key, cfg.Gemini.Model)
		if err != nil {
			return fmt.Errorf("failed to create llm client: %w", err)
		}
		defer func() { _ = client.Close() }()
		analyst = agents.NewAnalyst(client, logger)
		generator = agents.NewGenerator(client, logger)
	} else {
		logger.Warn("gemini key not set, analysis and outreach endpoints disabled")
	}

	runner := tasks.NewRunner(database, logger, m, cfg.Tasks.Workers, cfg.Tasks.Queue)

	srv := server.New(server.Config{Port: cfg.Server.Port}, server.Deps{
		DB:        database,
		Cache:     store,
		Collector: col,
		Analyst:   analyst,
		Generator: generator,
		Mailer:    outreach.NewMailer(cfg.SMTP, logger),
		Runner:    runner,
		Logger:    logger,
		Metrics:   m,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runner.Start(runCtx)

	go pruneLoop(runCtx, store, logger)

	return srv.Start()
}

// pruneLoop removes expired cache rows hourly.
func pruneLoop(ctx context.Context, store *cache.PGStore, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.PruneExpired(ctx); n > 0 {
				logger.Info("pruned expired cache entries", zap.Int("count", n))
			}
		}
	}
}
