package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crowdstream/crowdstream/pkg/types"
)

// calendarStub serves market states keyed by ISO date, with a default for
// unlisted days.
type calendarStub struct {
	states     map[string]types.MarketState
	defaultDay types.MarketState
	err        error
	calls      int
}

func (c *calendarStub) MarketState(ctx context.Context, date time.Time) (types.MarketState, error) {
	c.calls++
	if c.err != nil {
		return types.MarketState{}, c.err
	}
	state, ok := c.states[date.Format("2006-01-02")]
	if !ok {
		state = c.defaultDay
	}
	state.Date = date
	return state, nil
}

func newTestClock(t *testing.T, provider StateProvider, maxScanDays int, now func() time.Time) *MarketClock {
	t.Helper()
	clock, err := NewMarketClock(&ClockConfig{
		Provider:    provider,
		MaxScanDays: maxScanDays,
		Now:         now,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	return clock
}

func TestNewMarketClockRequiresProvider(t *testing.T) {
	_, err := NewMarketClock(&ClockConfig{Logger: zap.NewNop()})
	assert.Error(t, err)
}

func TestSessionQueries(t *testing.T) {
	provider := &calendarStub{
		defaultDay: types.MarketState{IsOpenNow: true, IsAfterHoursNow: false, IsOpenThisDay: true},
	}
	clock := newTestClock(t, provider, 0, nil)

	open, err := clock.IsMarketOpenNow(context.Background())
	require.NoError(t, err)
	assert.True(t, open)

	afterHours, err := clock.IsAfterHours(context.Background())
	require.NoError(t, err)
	assert.False(t, afterHours)

	openToday, err := clock.IsMarketOpenToday(context.Background())
	require.NoError(t, err)
	assert.True(t, openToday)
}

func TestNextBusinessDaySkipsClosedDays(t *testing.T) {
	// A Friday; Saturday and Sunday are closed.
	friday := time.Date(2026, 9, 4, 12, 0, 0, 0, time.UTC)

	provider := &calendarStub{
		states: map[string]types.MarketState{
			"2026-09-05": {IsOpenThisDay: false},
			"2026-09-06": {IsOpenThisDay: false},
			"2026-09-07": {IsOpenThisDay: true},
		},
		defaultDay: types.MarketState{IsOpenThisDay: false},
	}
	clock := newTestClock(t, provider, 30, nil)

	state, err := clock.NextBusinessDay(context.Background(), friday)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-07", state.Date.Format("2006-01-02"))
}

func TestNextBusinessDayBoundedScan(t *testing.T) {
	provider := &calendarStub{
		defaultDay: types.MarketState{IsOpenThisDay: false},
	}
	clock := newTestClock(t, provider, 10, nil)

	_, err := clock.NextBusinessDay(context.Background(), time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrNoBusinessDay)
	assert.Equal(t, 10, provider.calls)
}

func TestNextBusinessDayProviderError(t *testing.T) {
	provider := &calendarStub{err: errors.New("calendar down")}
	clock := newTestClock(t, provider, 10, nil)

	_, err := clock.NextBusinessDay(context.Background(), time.Now())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoBusinessDay)
}
