package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// TriggerRefresh schedules an immediate force-refresh run.
func (h *Handler) TriggerRefresh(c echo.Context) error {
	if !h.job.TriggerNow() {
		return c.JSON(http.StatusConflict, map[string]string{
			"status": "refresh already running",
		})
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"status": "refresh scheduled",
	})
}

// NextRefresh reports the next scheduled run and whether one is in flight.
func (h *Handler) NextRefresh(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"nextRun": h.job.NextRun().UTC().Format(time.RFC3339),
		"running": h.job.Running(),
	})
}

// CacheStats returns response-cache counters.
func (h *Handler) CacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cache.Stats())
}

// InvalidateCache removes entries by exact key (?key=) or glob pattern
// (?pattern=).
func (h *Handler) InvalidateCache(c echo.Context) error {
	key := c.QueryParam("key")
	pattern := c.QueryParam("pattern")

	switch {
	case key != "":
		removed := 0
		if h.cache.Delete(key) {
			removed = 1
		}
		return c.JSON(http.StatusOK, map[string]int{"removed": removed})
	case pattern != "":
		return c.JSON(http.StatusOK, map[string]int{"removed": h.cache.DeletePattern(pattern)})
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "key or pattern is required")
	}
}
