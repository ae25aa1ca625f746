package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cormacd/f1api/cache"
)

type raceWinnerData struct {
	Round            string `json:"round"`
	GpName           string `json:"gpName"`
	WinnerID         string `json:"winnerId"`
	WinnerGivenName  string `json:"winnerGivenName"`
	WinnerFamilyName string `json:"winnerFamilyName"`
}

// RaceWinners returns the winner of every race in one season, by round.
func (h *Handler) RaceWinners(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "year must be an integer")
	}

	key := cache.RaceWinnersKey(strconv.Itoa(year))
	if cached, ok := h.cache.Get(key); ok {
		return c.JSON(http.StatusOK, cached)
	}

	results, err := h.svc.GetRaceWinners(c.Request().Context(), year, false)
	if err != nil {
		return h.mapError(err)
	}

	out := make([]raceWinnerData, 0, len(results))
	for _, r := range results {
		out = append(out, raceWinnerData{
			Round:            r.Round,
			GpName:           r.GpName,
			WinnerID:         r.WinnerID,
			WinnerGivenName:  r.WinnerGivenName,
			WinnerFamilyName: r.WinnerFamilyName,
		})
	}

	if len(out) > 0 {
		h.cache.Set(key, out)
	}
	return c.JSON(http.StatusOK, out)
}
