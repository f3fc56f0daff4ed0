package brokerdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crowdstream/crowdstream/internal/broker"
	"github.com/crowdstream/crowdstream/pkg/cache"
	"github.com/crowdstream/crowdstream/pkg/types"
)

// countingSource wraps the simulated brokerage and counts calls so tests can
// tell cache hits from source reads.
type countingSource struct {
	*broker.Simulated
	quoteCalls       int
	instrumentCalls  int
	marketStateCalls int
	walletCalls      int
}

func (s *countingSource) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	s.quoteCalls++
	return s.Simulated.Quote(ctx, symbol)
}

func (s *countingSource) Instruments(ctx context.Context) ([]types.Instrument, error) {
	s.instrumentCalls++
	return s.Simulated.Instruments(ctx)
}

func (s *countingSource) MarketState(ctx context.Context, date time.Time) (types.MarketState, error) {
	s.marketStateCalls++
	return s.Simulated.MarketState(ctx, date)
}

func (s *countingSource) Wallet(ctx context.Context, playerID string) (types.Wallet, bool, error) {
	s.walletCalls++
	return s.Simulated.Wallet(ctx, playerID)
}

func newCached(t *testing.T, source Source) (*Cached, *cache.RistrettoCache) {
	t.Helper()

	c, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	cached, err := New(&Config{
		Source: source,
		Cache:  c,
		TTLs: TTLs{
			Quote:       time.Minute,
			Instrument:  time.Minute,
			Balance:     time.Minute,
			Position:    time.Minute,
			MarketState: time.Minute,
		},
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	return cached, c.(*cache.RistrettoCache)
}

func TestQuoteCached(t *testing.T) {
	sim := broker.NewSimulated()
	sim.SetQuote(types.Quote{Symbol: "AMZN", LastTradePrice: 100})
	source := &countingSource{Simulated: sim}

	cached, rc := newCached(t, source)

	quote, err := cached.Quote(context.Background(), "AMZN")
	require.NoError(t, err)
	assert.Equal(t, 100.0, quote.LastTradePrice)
	rc.Wait()

	_, err = cached.Quote(context.Background(), "AMZN")
	require.NoError(t, err)
	assert.Equal(t, 1, source.quoteCalls)
}

func TestInstrumentFiltersUntradeable(t *testing.T) {
	sim := broker.NewSimulated()
	sim.SetInstrument(types.Instrument{Symbol: "AMZN", Tradeable: true, MinTickSize: 0.01})
	sim.SetInstrument(types.Instrument{Symbol: "HALTED", Tradeable: false})
	source := &countingSource{Simulated: sim}

	cached, rc := newCached(t, source)

	instrument, ok, err := cached.Instrument(context.Background(), "AMZN")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.01, instrument.MinTickSize)

	_, ok, err = cached.Instrument(context.Background(), "HALTED")
	require.NoError(t, err)
	assert.False(t, ok)

	rc.Wait()
	assert.True(t, cached.IsSymbol("AMZN"))
	assert.False(t, cached.IsSymbol("HALTED"))
	assert.False(t, cached.IsSymbol("ZZZZ"))
	assert.Equal(t, 1, source.instrumentCalls)
}

func TestMarketStateKeyedByFullDate(t *testing.T) {
	sim := broker.NewSimulated()
	d2025 := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	d2026 := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)
	sim.SetMarketState(d2025, types.MarketState{IsOpenThisDay: false})
	sim.SetMarketState(d2026, types.MarketState{IsOpenThisDay: true})
	source := &countingSource{Simulated: sim}

	cached, rc := newCached(t, source)

	first, err := cached.MarketState(context.Background(), d2025)
	require.NoError(t, err)
	rc.Wait()

	// Same month and day in another year must not reuse the cached entry.
	second, err := cached.MarketState(context.Background(), d2026)
	require.NoError(t, err)

	assert.False(t, first.IsOpenThisDay)
	assert.True(t, second.IsOpenThisDay)
	assert.Equal(t, 2, source.marketStateCalls)
}

func TestWalletPassesThrough(t *testing.T) {
	sim := broker.NewSimulated()
	sim.SetWallet(types.Wallet{PlayerID: "twitch:mike", RealizedReturn: 50})
	source := &countingSource{Simulated: sim}

	cached, _ := newCached(t, source)

	for i := 0; i < 2; i++ {
		wallet, ok, err := cached.Wallet(context.Background(), "twitch:mike")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 50.0, wallet.RealizedReturn)
	}
	assert.Equal(t, 2, source.walletCalls)
}
