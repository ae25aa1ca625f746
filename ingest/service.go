// Package ingest drives the cache-or-fetch protocol: answer reads from the
// database when it already holds data, otherwise walk the upstream API
// year by year, persisting as it goes.
package ingest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/cormacd/f1api/ergast"
	"github.com/cormacd/f1api/models"
)

// FirstSeason is the first F1 World Championship season; no data exists
// before it.
const FirstSeason = 1950

// Fetcher is the upstream client the walker drives. Calls are strictly
// sequential – the client's rate limiting depends on it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Store is the persistence surface the orchestrator reads and writes.
type Store interface {
	UpsertChampion(ctx context.Context, rec ergast.ChampionRecord) error
	UpsertRaceResult(ctx context.Context, rec ergast.RaceWinnerRecord) error
	FindAllChampions(ctx context.Context) ([]models.SeasonChampion, error)
	FindRaceResults(ctx context.Context, season string) ([]models.RaceResult, error)
}

// Config wires a Service. BaseURL may be empty; ingestion then fails with a
// ConfigError while reads of already-persisted data keep working.
type Config struct {
	BaseURL   string
	StartYear int
	Fetcher   Fetcher
	Store     Store
	Logger    *zap.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

type Service struct {
	baseURL   string
	startYear int
	fetcher   Fetcher
	store     Store
	logger    *zap.Logger
	now       func() time.Time
}

func New(cfg Config) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		baseURL:   cfg.BaseURL,
		startYear: cfg.StartYear,
		fetcher:   cfg.Fetcher,
		store:     cfg.Store,
		logger:    cfg.Logger.Named("ingest"),
		now:       now,
	}
}

// GetChampions returns every season champion. Unless force is set, a
// non-empty database answers immediately and no upstream call is made.
func (s *Service) GetChampions(ctx context.Context, force bool) ([]models.SeasonChampion, error) {
	if !force {
		existing, err := s.store.FindAllChampions(ctx)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return existing, nil
		}
	}

	if err := s.requireBaseURL(); err != nil {
		return nil, err
	}
	if err := s.validateYear(s.startYear); err != nil {
		return nil, err
	}

	// Walk the configured range sequentially. A single bad year is logged
	// and skipped; the walk keeps going.
	current := s.now().Year()
	for year := s.startYear; year <= current; year++ {
		if err := s.ingestChampion(ctx, year); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("champion ingestion failed, continuing",
				zap.Int("year", year),
				zap.Error(err),
			)
		}
	}

	return s.store.FindAllChampions(ctx)
}

// GetRaceWinners returns the winners of every race in one season. Unless
// force is set, a non-empty database answers immediately. Year bounds are
// checked before anything else; the walk is a single unit of work, so an
// upstream failure propagates to the caller.
func (s *Service) GetRaceWinners(ctx context.Context, year int, force bool) ([]models.RaceResult, error) {
	if err := s.validateYear(year); err != nil {
		return nil, err
	}
	season := strconv.Itoa(year)

	if !force {
		existing, err := s.store.FindRaceResults(ctx, season)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return existing, nil
		}
	}

	if err := s.requireBaseURL(); err != nil {
		return nil, err
	}

	raw, err := s.fetcher.Get(ctx, s.resultsURL(year))
	if err != nil {
		return nil, err
	}

	count := ergast.RaceCount(raw)
	for i := 0; i < count; i++ {
		rec, ok := ergast.MapRaceWinner(raw, i)
		if !ok {
			continue
		}
		if rec.Season == "" {
			rec.Season = season
		}
		if err := s.store.UpsertRaceResult(ctx, rec); err != nil {
			s.logger.Warn("race result upsert failed",
				zap.String("season", rec.Season),
				zap.String("round", rec.Round),
				zap.Error(err),
			)
		}
	}

	return s.store.FindRaceResults(ctx, season)
}

func (s *Service) ingestChampion(ctx context.Context, year int) error {
	raw, err := s.fetcher.Get(ctx, s.championURL(year))
	if err != nil {
		return err
	}

	rec := ergast.MapChampion(raw)
	if rec.Season == "" {
		return fmt.Errorf("no standings data for %d", year)
	}

	return s.store.UpsertChampion(ctx, rec)
}

func (s *Service) requireBaseURL() error {
	if s.baseURL == "" {
		return newConfigError("upstream base URL is not configured")
	}
	return nil
}

func (s *Service) validateYear(year int) error {
	if year < FirstSeason {
		return newConfigError("year %d invalid: must be %d or later", year, FirstSeason)
	}
	if current := s.now().Year(); year > current {
		return newConfigError("year %d invalid: cannot be greater than current year %d", year, current)
	}
	return nil
}

func (s *Service) championURL(year int) string {
	return fmt.Sprintf("%s/%d/driverstandings/1.json", s.baseURL, year)
}

func (s *Service) resultsURL(year int) string {
	return fmt.Sprintf("%s/%d/results/1.json", s.baseURL, year)
}
