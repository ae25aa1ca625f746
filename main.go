package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/time/rate"

	"github.com/cormacd/f1api/cache"
	"github.com/cormacd/f1api/config"
	"github.com/cormacd/f1api/db"
	"github.com/cormacd/f1api/ergast"
	"github.com/cormacd/f1api/handlers"
	"github.com/cormacd/f1api/ingest"
	applog "github.com/cormacd/f1api/logger"
	mw "github.com/cormacd/f1api/middleware"
	"github.com/cormacd/f1api/scheduler"
	"github.com/cormacd/f1api/store"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	st := store.New(bdb, logger)
	if warm, err := st.HasChampions(context.Background()); err != nil {
		logger.Warn("could not check persisted data", zap.Error(err))
	} else if !warm {
		logger.Info("no champion data persisted yet; first read or refresh will ingest from upstream")
	}

	respCache := cache.New(cfg.CacheTTL)
	defer respCache.Close()

	client := ergast.NewClient(cfg.UpstreamMaxRetries, logger)
	svc := ingest.New(ingest.Config{
		BaseURL:   cfg.ErgastBaseURL,
		StartYear: cfg.StartYear,
		Fetcher:   client,
		Store:     st,
		Logger:    logger,
	})

	job := scheduler.New(svc, respCache, logger, scheduler.Config{
		Weekday:   cfg.RefreshDay,
		Hour:      cfg.RefreshHour,
		Minute:    cfg.RefreshMinute,
		StartYear: cfg.StartYear,
	})
	job.Start()
	defer job.Stop()

	h := handlers.New(svc, respCache, job, cfg.Debug)

	e := echo.New()
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.FrontendOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"*"},
	}))
	e.Use(mw.RateLimit(rate.Limit(cfg.RPSLimit), cfg.RPSBurst))

	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	e.GET("/champions", h.Champions)
	e.GET("/race-winners/:year", h.RaceWinners)

	ops := e.Group("/ops")
	ops.POST("/refresh", h.TriggerRefresh)
	ops.GET("/refresh/next", h.NextRefresh)
	ops.GET("/cache/stats", h.CacheStats)
	ops.DELETE("/cache", h.InvalidateCache)

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	logger.Info("starting server", zap.String("mode", "tls"), zap.Strings("domains", cfg.TLSDomains))
	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
