package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cormacd/f1api/cache"
)

type championData struct {
	Season     string `json:"season"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
	DriverID   string `json:"driverId"`
}

// Champions returns every season champion, oldest season first.
func (h *Handler) Champions(c echo.Context) error {
	if cached, ok := h.cache.Get(cache.ChampionsKey); ok {
		return c.JSON(http.StatusOK, cached)
	}

	champions, err := h.svc.GetChampions(c.Request().Context(), false)
	if err != nil {
		return h.mapError(err)
	}

	out := make([]championData, 0, len(champions))
	for _, champ := range champions {
		row := championData{
			Season:   champ.Season,
			DriverID: champ.DriverID,
		}
		if champ.Driver != nil {
			row.GivenName = champ.Driver.GivenName
			row.FamilyName = champ.Driver.FamilyName
		}
		out = append(out, row)
	}

	// An empty list usually means nothing is ingested yet. Caching it would
	// pin the empty answer for the full TTL after ingestion completes.
	if len(out) > 0 {
		h.cache.Set(cache.ChampionsKey, out)
	}
	return c.JSON(http.StatusOK, out)
}
