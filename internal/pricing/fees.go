package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/skinflip/models"
)

// ErrFeeScheduleUnavailable means no usable fee schedule could be obtained.
// Callers decide whether to continue with a fallback schedule or skip.
var ErrFeeScheduleUnavailable = errors.New("fee schedule unavailable")

// DefaultFeeTTL is how long a fetched schedule is reused.
const DefaultFeeTTL = time.Hour

// FeeFetcher is the part of the marketplace client the cache needs.
type FeeFetcher interface {
	GetFeeSchedule(ctx context.Context, gameID string) (models.FeeSchedule, error)
}

type cachedFee struct {
	schedule  models.FeeSchedule
	fetchedAt time.Time
}

// FeeCache keeps one fee schedule per game id until its TTL expires.
type FeeCache struct {
	fetcher FeeFetcher
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger

	mu      sync.Mutex
	entries map[string]cachedFee
}

// NewFeeCache creates a cache in front of fetcher.
func NewFeeCache(fetcher FeeFetcher, ttl time.Duration) *FeeCache {
	if ttl <= 0 {
		ttl = DefaultFeeTTL
	}
	return &FeeCache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		logger:  log.With().Str("component", "fee_cache").Logger(),
		entries: make(map[string]cachedFee),
	}
}

// WithClock replaces the time source, for tests.
func (c *FeeCache) WithClock(now func() time.Time) *FeeCache {
	c.now = now
	return c
}

// Get returns the schedule for gameID, fetching it when missing or stale.
// Every failure is reported as ErrFeeScheduleUnavailable.
func (c *FeeCache) Get(ctx context.Context, gameID string) (models.FeeSchedule, error) {
	c.mu.Lock()
	entry, ok := c.entries[gameID]
	c.mu.Unlock()
	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.schedule, nil
	}

	if c.fetcher == nil {
		return models.FeeSchedule{}, fmt.Errorf("%w: no fetcher configured", ErrFeeScheduleUnavailable)
	}

	schedule, err := c.fetcher.GetFeeSchedule(ctx, gameID)
	if err != nil {
		c.logger.Warn().Err(err).Str("game_id", gameID).Msg("Fee schedule fetch failed")
		return models.FeeSchedule{}, fmt.Errorf("%w: %v", ErrFeeScheduleUnavailable, err)
	}
	if err := ValidateSchedule(schedule); err != nil {
		return models.FeeSchedule{}, fmt.Errorf("%w: %v", ErrFeeScheduleUnavailable, err)
	}

	c.mu.Lock()
	c.entries[gameID] = cachedFee{schedule: schedule, fetchedAt: c.now()}
	c.mu.Unlock()

	c.logger.Debug().
		Str("game_id", gameID).
		Float64("rate", schedule.Rate).
		Float64("min_commission", schedule.MinCommissionUSD).
		Msg("Fee schedule cached")
	return schedule, nil
}

// Invalidate drops the cached schedule for gameID.
func (c *FeeCache) Invalidate(gameID string) {
	c.mu.Lock()
	delete(c.entries, gameID)
	c.mu.Unlock()
}

// ValidateSchedule rejects rates outside [0,1) and negative minimums.
func ValidateSchedule(s models.FeeSchedule) error {
	if s.Rate < 0 || s.Rate >= 1 {
		return fmt.Errorf("fee rate %v out of range", s.Rate)
	}
	if s.MinCommissionUSD < 0 {
		return fmt.Errorf("negative minimum commission %v", s.MinCommissionUSD)
	}
	return nil
}
