package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/cormacd/f1api/cache"
	"github.com/cormacd/f1api/ergast"
	"github.com/cormacd/f1api/ingest"
	"github.com/cormacd/f1api/models"
)

type fakeService struct {
	champions []models.SeasonChampion
	results   []models.RaceResult
	err       error

	championCalls int
	raceCalls     int
}

func (f *fakeService) GetChampions(context.Context, bool) ([]models.SeasonChampion, error) {
	f.championCalls++
	return f.champions, f.err
}

func (f *fakeService) GetRaceWinners(context.Context, int, bool) ([]models.RaceResult, error) {
	f.raceCalls++
	return f.results, f.err
}

type fakeJob struct {
	triggered bool
	accepted  bool
	next      time.Time
	running   bool
}

func (f *fakeJob) TriggerNow() bool {
	f.triggered = true
	return f.accepted
}

func (f *fakeJob) NextRun() time.Time { return f.next }
func (f *fakeJob) Running() bool      { return f.running }

func newTestHandler(svc ChampionshipService, job RefreshJob) (*Handler, *cache.Cache) {
	c := cache.New(time.Minute)
	return New(svc, c, job, false), c
}

func doRequest(h echo.HandlerFunc, method, target string, paramNames, paramValues []string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(paramNames...)
	c.SetParamValues(paramValues...)

	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestChampions_ReturnsData(t *testing.T) {
	svc := &fakeService{champions: []models.SeasonChampion{
		{
			Season:   "1950",
			DriverID: "farina",
			Driver:   &models.Driver{DriverID: "farina", GivenName: "Nino", FamilyName: "Farina"},
		},
	}}
	h, c := newTestHandler(svc, &fakeJob{})
	defer c.Close()

	rec := doRequest(h.Champions, http.MethodGet, "/champions", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	require.Equal(t, "1950", body[0]["season"])
	require.Equal(t, "Nino", body[0]["givenName"])
	require.Equal(t, "Farina", body[0]["familyName"])
	require.Equal(t, "farina", body[0]["driverId"])
}

func TestChampions_ServedFromCacheOnSecondCall(t *testing.T) {
	svc := &fakeService{champions: []models.SeasonChampion{{Season: "1950", DriverID: "farina"}}}
	h, c := newTestHandler(svc, &fakeJob{})
	defer c.Close()

	doRequest(h.Champions, http.MethodGet, "/champions", nil, nil)
	doRequest(h.Champions, http.MethodGet, "/champions", nil, nil)

	require.Equal(t, 1, svc.championCalls, "second request must hit the response cache")
}

func TestChampions_EmptyResultIsNotCached(t *testing.T) {
	svc := &fakeService{}
	h, c := newTestHandler(svc, &fakeJob{})
	defer c.Close()

	doRequest(h.Champions, http.MethodGet, "/champions", nil, nil)

	svc.champions = []models.SeasonChampion{{Season: "1950", DriverID: "farina"}}
	rec := doRequest(h.Champions, http.MethodGet, "/champions", nil, nil)

	require.Equal(t, 2, svc.championCalls, "an empty list must not pin the cache")
	require.Contains(t, rec.Body.String(), "farina")
}

func TestRaceWinners_EmptyResultIsNotCached(t *testing.T) {
	svc := &fakeService{}
	h, c := newTestHandler(svc, &fakeJob{})
	defer c.Close()

	doRequest(h.RaceWinners, http.MethodGet, "/race-winners/2020", []string{"year"}, []string{"2020"})
	doRequest(h.RaceWinners, http.MethodGet, "/race-winners/2020", []string{"year"}, []string{"2020"})

	require.Equal(t, 2, svc.raceCalls)
}

func TestRaceWinners_InvalidYearParam(t *testing.T) {
	h, c := newTestHandler(&fakeService{}, &fakeJob{})
	defer c.Close()

	rec := doRequest(h.RaceWinners, http.MethodGet, "/race-winners/abc", []string{"year"}, []string{"abc"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRaceWinners_ConfigErrorIsClientError(t *testing.T) {
	svc := &fakeService{err: &ingest.ConfigError{}}
	h, c := newTestHandler(svc, &fakeJob{})
	defer c.Close()

	rec := doRequest(h.RaceWinners, http.MethodGet, "/race-winners/1949", []string{"year"}, []string{"1949"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRaceWinners_UpstreamErrorHidesDetailInProduction(t *testing.T) {
	svc := &fakeService{err: &ergast.UpstreamError{URL: "http://internal-upstream/2020/results/1.json", StatusCode: 503}}
	h, c := newTestHandler(svc, &fakeJob{})
	defer c.Close()

	rec := doRequest(h.RaceWinners, http.MethodGet, "/race-winners/2020", []string{"year"}, []string{"2020"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotContains(t, rec.Body.String(), "internal-upstream", "production mode must not leak upstream detail")
}

func TestRaceWinners_ReturnsData(t *testing.T) {
	svc := &fakeService{results: []models.RaceResult{
		{
			Season:           "2020",
			Round:            "1",
			GpName:           "Austrian Grand Prix",
			WinnerID:         "bottas",
			WinnerGivenName:  "Valtteri",
			WinnerFamilyName: "Bottas",
		},
	}}
	h, c := newTestHandler(svc, &fakeJob{})
	defer c.Close()

	rec := doRequest(h.RaceWinners, http.MethodGet, "/race-winners/2020", []string{"year"}, []string{"2020"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	require.Equal(t, "1", body[0]["round"])
	require.Equal(t, "Austrian Grand Prix", body[0]["gpName"])
	require.Equal(t, "bottas", body[0]["winnerId"])
}

func TestTriggerRefresh(t *testing.T) {
	job := &fakeJob{accepted: true}
	h, c := newTestHandler(&fakeService{}, job)
	defer c.Close()

	rec := doRequest(h.TriggerRefresh, http.MethodPost, "/ops/refresh", nil, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.True(t, job.triggered)

	job.accepted = false
	rec = doRequest(h.TriggerRefresh, http.MethodPost, "/ops/refresh", nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestNextRefresh(t *testing.T) {
	next := time.Date(2026, time.September, 7, 3, 0, 0, 0, time.UTC)
	h, c := newTestHandler(&fakeService{}, &fakeJob{next: next, running: true})
	defer c.Close()

	rec := doRequest(h.NextRefresh, http.MethodGet, "/ops/refresh/next", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "2026-09-07T03:00:00Z", body["nextRun"])
	require.Equal(t, true, body["running"])
}

func TestInvalidateCache(t *testing.T) {
	h, c := newTestHandler(&fakeService{}, &fakeJob{})
	defer c.Close()

	c.Set(cache.ChampionsKey, "x")
	c.Set(cache.RaceWinnersKey("1950"), "y")
	c.Set(cache.RaceWinnersKey("1951"), "z")

	rec := doRequest(h.InvalidateCache, http.MethodDelete, "/ops/cache?key=champions", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"removed":1}`, rec.Body.String())

	rec = doRequest(h.InvalidateCache, http.MethodDelete, "/ops/cache?pattern=race-winners:*", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"removed":2}`, rec.Body.String())

	rec = doRequest(h.InvalidateCache, http.MethodDelete, "/ops/cache", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCacheStats(t *testing.T) {
	h, c := newTestHandler(&fakeService{}, &fakeJob{})
	defer c.Close()

	c.Set("k", "v")
	_, _ = c.Get("k")

	rec := doRequest(h.CacheStats, http.MethodGet, "/ops/cache/stats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats cache.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.EqualValues(t, 1, stats.Hits)
	require.Equal(t, 1, stats.Keys)
}
