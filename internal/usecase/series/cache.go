package series

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-widgets/internal/domain"
)

// Cache keeps a snapshot of every return series in memory
// Simulations read it on every slider move; refreshes swap the whole snapshot
type Cache struct {
	repo domain.ReturnSeriesRepository
	log  zerolog.Logger

	mu          sync.RWMutex
	snapshot    map[string]domain.ReturnSeries
	refreshedAt time.Time

	cron *cron.Cron
}

// NewCache creates an empty cache; call Refresh to load it
func NewCache(repo domain.ReturnSeriesRepository, log zerolog.Logger) *Cache {
	return &Cache{
		repo:     repo,
		log:      log.With().Str("component", "series_cache").Logger(),
		snapshot: make(map[string]domain.ReturnSeries),
	}
}

// Refresh reloads every series from the repository
// On failure the previous snapshot is kept
func (c *Cache) Refresh(ctx context.Context) error {
	all, err := c.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh series cache: %w", err)
	}

	snapshot := make(map[string]domain.ReturnSeries, len(all))
	for _, s := range all {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("failed to refresh series cache: %w", err)
		}
		snapshot[s.InstrumentID] = *s
	}

	c.mu.Lock()
	c.snapshot = snapshot
	c.refreshedAt = time.Now()
	c.mu.Unlock()

	c.log.Debug().Int("series", len(snapshot)).Msg("Series cache refreshed")
	return nil
}

// ErrRefreshScheduled is returned by Start when a schedule is already running
var ErrRefreshScheduled = errors.New("series refresh already scheduled")

// Lookup returns a copy of the cached series of an instrument
// It satisfies domain.SeriesLookup
func (c *Cache) Lookup(instrumentID string) (domain.ReturnSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.snapshot[instrumentID]
	if !ok {
		return domain.ReturnSeries{}, false
	}
	s.Points = slices.Clone(s.Points)
	return s, true
}

// RefreshedAt returns the time of the last successful refresh
func (c *Cache) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}

// Start schedules periodic refreshes using a cron spec (e.g. "@every 1h")
// An empty spec leaves the cache static. Call Stop before scheduling again
func (c *Cache) Start(spec string) error {
	if spec == "" {
		return nil
	}
	if c.cron != nil {
		return ErrRefreshScheduled
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.Refresh(ctx); err != nil {
			c.log.Error().Err(err).Msg("Scheduled series refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid series refresh schedule %q: %w", spec, err)
	}

	c.cron = scheduler
	c.cron.Start()
	c.log.Info().Str("schedule", spec).Msg("Series cache refresh scheduled")
	return nil
}

// Stop cancels scheduled refreshes and waits for a running one to finish
func (c *Cache) Stop() {
	if c.cron == nil {
		return
	}
	<-c.cron.Stop().Done()
	c.cron = nil
}
