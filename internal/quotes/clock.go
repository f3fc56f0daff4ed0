package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crowdstream/crowdstream/pkg/types"
	"go.uber.org/zap"
)

// ErrNoBusinessDay is returned when no open market day is found within the
// scan window.
var ErrNoBusinessDay = errors.New("no open market day within scan window")

// DefaultMaxScanDays bounds the next-business-day search. A leap year plus
// one day covers any real calendar gap.
const DefaultMaxScanDays = 366

// StateProvider answers market-state questions for a full calendar date.
// Implementations must key by the complete date, not just month and day.
type StateProvider interface {
	MarketState(ctx context.Context, date time.Time) (types.MarketState, error)
}

// MarketClock answers "is the market open" style questions for now and scans
// forward for business days.
type MarketClock struct {
	provider    StateProvider
	maxScanDays int
	now         func() time.Time
	logger      *zap.Logger
}

// ClockConfig holds MarketClock configuration.
type ClockConfig struct {
	Provider    StateProvider
	MaxScanDays int
	Now         func() time.Time
	Logger      *zap.Logger
}

// NewMarketClock creates a MarketClock.
func NewMarketClock(cfg *ClockConfig) (*MarketClock, error) {
	if cfg == nil || cfg.Provider == nil {
		return nil, errors.New("state provider cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	maxScanDays := cfg.MaxScanDays
	if maxScanDays <= 0 {
		maxScanDays = DefaultMaxScanDays
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &MarketClock{
		provider:    cfg.Provider,
		maxScanDays: maxScanDays,
		now:         now,
		logger:      cfg.Logger,
	}, nil
}

// IsMarketOpenNow reports whether the regular session is open right now.
func (c *MarketClock) IsMarketOpenNow(ctx context.Context) (bool, error) {
	state, err := c.provider.MarketState(ctx, c.now())
	if err != nil {
		return false, fmt.Errorf("market state: %w", err)
	}
	return state.IsOpenNow, nil
}

// IsAfterHours reports whether the market is in its after-hours session.
func (c *MarketClock) IsAfterHours(ctx context.Context) (bool, error) {
	state, err := c.provider.MarketState(ctx, c.now())
	if err != nil {
		return false, fmt.Errorf("market state: %w", err)
	}
	return state.IsAfterHoursNow, nil
}

// IsMarketOpenToday reports whether the market opens at all today.
func (c *MarketClock) IsMarketOpenToday(ctx context.Context) (bool, error) {
	state, err := c.provider.MarketState(ctx, c.now())
	if err != nil {
		return false, fmt.Errorf("market state: %w", err)
	}
	return state.IsOpenThisDay, nil
}

// NextBusinessDay scans forward one day at a time from the given date for
// the next day the market opens. The scan is bounded; if the provider never
// reports an open day within the window, ErrNoBusinessDay is returned
// instead of looping forever.
func (c *MarketClock) NextBusinessDay(ctx context.Context, from time.Time) (types.MarketState, error) {
	day := from
	for i := 0; i < c.maxScanDays; i++ {
		day = day.AddDate(0, 0, 1)

		state, err := c.provider.MarketState(ctx, day)
		if err != nil {
			return types.MarketState{}, fmt.Errorf("market state for %s: %w", day.Format("2006-01-02"), err)
		}

		if state.IsOpenThisDay {
			return state, nil
		}
	}

	c.logger.Warn("next-business-day-scan-exhausted",
		zap.String("from", from.Format("2006-01-02")),
		zap.Int("max-scan-days", c.maxScanDays))

	return types.MarketState{}, ErrNoBusinessDay
}
