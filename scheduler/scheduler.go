// Package scheduler runs the weekly data refresh: invalidate cached
// responses, force-refresh champions, then force-refresh the current
// season's race winners. The job is fire-and-forget; a failed sub-step is
// logged and never aborts the other one.
package scheduler

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cormacd/f1api/cache"
	"github.com/cormacd/f1api/models"
)

// Refresher is the ingestion surface the job drives in force mode.
type Refresher interface {
	GetChampions(ctx context.Context, force bool) ([]models.SeasonChampion, error)
	GetRaceWinners(ctx context.Context, year int, force bool) ([]models.RaceResult, error)
}

// Invalidator clears response-cache entries before a refresh.
type Invalidator interface {
	Delete(key string) bool
	DeletePattern(pattern string) int
}

// Config fixes the weekly slot (UTC) and the year range whose cache entries
// are cleared.
type Config struct {
	Weekday   time.Weekday
	Hour      int
	Minute    int
	StartYear int

	// RunTimeout bounds a single refresh run. Zero means one hour.
	RunTimeout time.Duration
}

type Scheduler struct {
	svc    Refresher
	cache  Invalidator
	logger *zap.Logger
	cfg    Config
	now    func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	trigger chan struct{}
}

func New(svc Refresher, cacheInst Invalidator, logger *zap.Logger, cfg Config) *Scheduler {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = time.Hour
	}
	return &Scheduler{
		svc:     svc,
		cache:   cacheInst,
		logger:  logger.Named("scheduler"),
		cfg:     cfg,
		now:     time.Now,
		trigger: make(chan struct{}, 1),
	}
}

// NextRun returns the next occurrence of the configured weekday/time. A
// current time exactly on the slot rolls to next week.
func (s *Scheduler) NextRun() time.Time {
	return nextAfter(s.now(), s.cfg)
}

// Running reports whether a refresh is in flight.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// TriggerNow requests an immediate refresh. It returns false when one is
// already running or already queued.
func (s *Scheduler) TriggerNow() bool {
	if s.Running() {
		return false
	}
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Start launches the scheduling loop. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.stopCh != nil {
		s.mu.Unlock()
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	s.logger.Info("scheduler started", zap.Time("nextRun", s.NextRun()))
	go s.loop(stopCh, doneCh)
}

// Stop halts the loop and waits for any in-flight refresh to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.stopCh = nil
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (s *Scheduler) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	for {
		timer := time.NewTimer(time.Until(s.NextRun()))
		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-s.trigger:
			timer.Stop()
			s.runOnce()
		case <-timer.C:
			s.runOnce()
		}
	}
}

// runOnce performs one full refresh. Sub-step failures are logged and do not
// propagate; the scheduler always returns to idle.
func (s *Scheduler) runOnce() {
	s.setRunning(true)
	defer s.setRunning(false)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	current := s.now().Year()
	s.invalidate(current)

	if _, err := s.svc.GetChampions(ctx, true); err != nil {
		s.logger.Error("champions refresh failed", zap.Error(err))
	}
	// Only the current season's races: refreshing the full historical range
	// every week would cost thousands of upstream calls for data that no
	// longer changes.
	if _, err := s.svc.GetRaceWinners(ctx, current, true); err != nil {
		s.logger.Error("race winners refresh failed", zap.Int("year", current), zap.Error(err))
	}

	s.logger.Info("refresh complete", zap.Time("nextRun", s.NextRun()))
}

func (s *Scheduler) invalidate(currentYear int) {
	s.cache.Delete(cache.ChampionsKey)
	for year := s.cfg.StartYear; year <= currentYear; year++ {
		s.cache.Delete(cache.RaceWinnersKey(strconv.Itoa(year)))
	}
}

func (s *Scheduler) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

// nextAfter computes the next weekly slot strictly after t.
func nextAfter(t time.Time, cfg Config) time.Time {
	t = t.UTC()
	days := (int(cfg.Weekday) - int(t.Weekday()) + 7) % 7
	next := time.Date(t.Year(), t.Month(), t.Day(), cfg.Hour, cfg.Minute, 0, 0, time.UTC)
	next = next.AddDate(0, 0, days)
	if !next.After(t) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}
