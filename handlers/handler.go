package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cormacd/f1api/cache"
	"github.com/cormacd/f1api/ergast"
	"github.com/cormacd/f1api/ingest"
	"github.com/cormacd/f1api/models"
)

// ChampionshipService is the data surface behind the read endpoints.
type ChampionshipService interface {
	GetChampions(ctx context.Context, force bool) ([]models.SeasonChampion, error)
	GetRaceWinners(ctx context.Context, year int, force bool) ([]models.RaceResult, error)
}

// RefreshJob exposes the scheduled-refresh controls used by the ops
// endpoints.
type RefreshJob interface {
	TriggerNow() bool
	NextRun() time.Time
	Running() bool
}

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	svc   ChampionshipService
	cache *cache.Cache
	job   RefreshJob
	debug bool
}

// New creates a Handler. When debug is false, upstream error detail is
// hidden behind a generic failure message.
func New(svc ChampionshipService, c *cache.Cache, job RefreshJob, debug bool) *Handler {
	return &Handler{svc: svc, cache: c, job: job, debug: debug}
}

// mapError translates service errors to HTTP responses: configuration and
// parameter problems are the client's fault, upstream failures become a
// bad-gateway.
func (h *Handler) mapError(err error) error {
	var cfgErr *ingest.ConfigError
	if errors.As(err, &cfgErr) {
		return echo.NewHTTPError(http.StatusBadRequest, cfgErr.Error())
	}

	var upErr *ergast.UpstreamError
	if errors.As(err, &upErr) {
		if h.debug {
			return echo.NewHTTPError(http.StatusBadGateway, upErr.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, "upstream data source unavailable")
	}

	if h.debug {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
