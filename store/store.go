// Package store persists champion and race-winner records in Postgres.
// All writes are natural-key upserts, so re-ingesting the same season or
// race is a no-op and changed upstream data overwrites in place.
package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/cormacd/f1api/ergast"
	"github.com/cormacd/f1api/models"
)

type Store struct {
	db     *bun.DB
	logger *zap.Logger
}

func New(db *bun.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger.Named("store")}
}

// UpsertChampion writes the driver identity row, then the season link.
// Records failing sanitization are dropped with a log line – bad upstream
// data must never fail the surrounding ingestion run.
func (s *Store) UpsertChampion(ctx context.Context, rec ergast.ChampionRecord) error {
	clean, ok := sanitizeChampion(rec)
	if !ok {
		s.logger.Warn("dropping champion record that failed content checks",
			zap.String("season", rec.Season),
			zap.String("driverId", rec.DriverID),
		)
		return nil
	}

	driver := &models.Driver{
		DriverID:   clean.DriverID,
		GivenName:  clean.GivenName,
		FamilyName: clean.FamilyName,
	}
	if _, err := s.db.NewInsert().Model(driver).
		On("CONFLICT (driver_id) DO UPDATE SET given_name = EXCLUDED.given_name, family_name = EXCLUDED.family_name").
		Exec(ctx); err != nil {
		return fmt.Errorf("upsert driver %s: %w", clean.DriverID, err)
	}

	champion := &models.SeasonChampion{
		Season:   clean.Season,
		DriverID: clean.DriverID,
	}
	if _, err := s.db.NewInsert().Model(champion).
		On("CONFLICT (season) DO UPDATE SET driver_id = EXCLUDED.driver_id").
		Exec(ctx); err != nil {
		return fmt.Errorf("upsert champion for season %s: %w", clean.Season, err)
	}

	return nil
}

// UpsertRaceResult writes one race winner keyed by (season, round).
func (s *Store) UpsertRaceResult(ctx context.Context, rec ergast.RaceWinnerRecord) error {
	clean, ok := sanitizeRaceWinner(rec)
	if !ok {
		s.logger.Warn("dropping race result that failed content checks",
			zap.String("season", rec.Season),
			zap.String("round", rec.Round),
		)
		return nil
	}

	result := &models.RaceResult{
		Season:           clean.Season,
		Round:            clean.Round,
		GpName:           clean.GpName,
		WinnerID:         clean.WinnerID,
		WinnerGivenName:  clean.WinnerGivenName,
		WinnerFamilyName: clean.WinnerFamilyName,
	}
	if _, err := s.db.NewInsert().Model(result).
		On("CONFLICT (season, round) DO UPDATE SET gp_name = EXCLUDED.gp_name, winner_id = EXCLUDED.winner_id, winner_given_name = EXCLUDED.winner_given_name, winner_family_name = EXCLUDED.winner_family_name").
		Exec(ctx); err != nil {
		return fmt.Errorf("upsert race result %s round %s: %w", clean.Season, clean.Round, err)
	}

	return nil
}

// FindAllChampions returns every persisted champion with its driver joined,
// ordered by season ascending.
func (s *Store) FindAllChampions(ctx context.Context) ([]models.SeasonChampion, error) {
	var champions []models.SeasonChampion
	err := s.db.NewSelect().
		Model(&champions).
		Relation("Driver").
		OrderExpr("sc.season ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select champions: %w", err)
	}
	return champions, nil
}

// FindRaceResults returns every persisted winner for one season, ordered by
// round ascending (numeric, not lexical).
func (s *Store) FindRaceResults(ctx context.Context, season string) ([]models.RaceResult, error) {
	var results []models.RaceResult
	err := s.db.NewSelect().
		Model(&results).
		Where("rr.season = ?", season).
		OrderExpr("rr.round::int ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select race results for %s: %w", season, err)
	}
	return results, nil
}

// HasChampions reports whether at least one champion row exists.
func (s *Store) HasChampions(ctx context.Context) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*models.SeasonChampion)(nil)).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("champions existence check: %w", err)
	}
	return exists, nil
}
