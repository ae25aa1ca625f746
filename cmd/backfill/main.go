// Command backfill force-ingests the full configured year range: every
// season champion and every season's race winners. Meant to be run once
// against an empty database so the API starts warm.
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cormacd/f1api/config"
	"github.com/cormacd/f1api/db"
	"github.com/cormacd/f1api/ergast"
	"github.com/cormacd/f1api/ingest"
	applog "github.com/cormacd/f1api/logger"
	"github.com/cormacd/f1api/store"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	bdb := db.Setup(cfg)
	defer bdb.Close()

	ctx := context.Background()
	if err := db.CreateTables(ctx, bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	svc := ingest.New(ingest.Config{
		BaseURL:   cfg.ErgastBaseURL,
		StartYear: cfg.StartYear,
		Fetcher:   ergast.NewClient(cfg.UpstreamMaxRetries, logger),
		Store:     store.New(bdb, logger),
		Logger:    logger,
	})

	start := time.Now()

	champions, err := svc.GetChampions(ctx, true)
	if err != nil {
		logger.Fatal("champion backfill failed", zap.Error(err))
	}
	logger.Info("champions ingested", zap.Int("count", len(champions)))

	current := time.Now().Year()
	for year := cfg.StartYear; year <= current; year++ {
		results, err := svc.GetRaceWinners(ctx, year, true)
		if err != nil {
			logger.Warn("race winner backfill failed, continuing",
				zap.Int("year", year),
				zap.Error(err),
			)
			continue
		}
		logger.Info("race winners ingested", zap.Int("year", year), zap.Int("count", len(results)))
	}

	logger.Info("backfill complete", zap.Duration("elapsed", time.Since(start)))
}
