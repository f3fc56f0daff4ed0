// Package brokerdata is the cached read layer over the external brokerage
// data source. The validation core reads snapshots from here; only the
// slow-moving broker answers (quotes, instruments, balances, positions,
// market calendar) are cached, while order and wallet queries pass through.
package brokerdata

import (
	"context"
	"fmt"
	"time"

	"github.com/crowdstream/crowdstream/pkg/cache"
	"github.com/crowdstream/crowdstream/pkg/types"
	"go.uber.org/zap"
)

// Source is the raw external brokerage data contract.
type Source interface {
	UncommittedCash(ctx context.Context) (float64, error)
	Quote(ctx context.Context, symbol string) (types.Quote, error)
	Instruments(ctx context.Context) ([]types.Instrument, error)
	Positions(ctx context.Context) ([]types.Asset, error)
	LiablePlayers(ctx context.Context, symbol string) ([]string, error)
	PendingOrders(ctx context.Context, since time.Time) ([]types.BrokerOrder, error)
	ClaimedBuyOrders(ctx context.Context, symbol string) ([]types.PlayerOrder, error)
	PlayerClaimedBuyOrders(ctx context.Context, playerID, symbol string) ([]types.PlayerOrder, error)
	OpenBuyOrders(ctx context.Context, playerID string) ([]types.BrokerOrder, error)
	Wallet(ctx context.Context, playerID string) (types.Wallet, bool, error)
	Wallets(ctx context.Context, playerIDs []string) (map[string]types.Wallet, error)
	MarketState(ctx context.Context, date time.Time) (types.MarketState, error)
}

// TTLs holds the per-snapshot cache lifetimes.
type TTLs struct {
	Quote       time.Duration
	Instrument  time.Duration
	Balance     time.Duration
	Position    time.Duration
	MarketState time.Duration
}

// Cached wraps a Source with TTL caching.
type Cached struct {
	source Source
	cache  cache.Cache
	ttls   TTLs
	logger *zap.Logger
}

// Config holds Cached configuration.
type Config struct {
	Source Source
	Cache  cache.Cache
	TTLs   TTLs
	Logger *zap.Logger
}

// New creates the cached broker data layer.
func New(cfg *Config) (*Cached, error) {
	if cfg == nil || cfg.Source == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Cached{
		source: cfg.Source,
		cache:  cfg.Cache,
		ttls:   cfg.TTLs,
		logger: cfg.Logger,
	}, nil
}

// UncommittedCash returns the account's uncommitted cash.
func (c *Cached) UncommittedCash(ctx context.Context) (float64, error) {
	cached, ok := c.cache.Get("account:balance")
	if ok {
		return cached.(float64), nil
	}

	cash, err := c.source.UncommittedCash(ctx)
	if err != nil {
		return 0, err
	}

	c.cache.Set("account:balance", cash, c.ttls.Balance)
	return cash, nil
}

// Quote returns the quote snapshot for a symbol.
func (c *Cached) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	key := "quote:" + symbol

	cached, ok := c.cache.Get(key)
	if ok {
		return cached.(types.Quote), nil
	}

	quote, err := c.source.Quote(ctx, symbol)
	if err != nil {
		return types.Quote{}, err
	}

	c.cache.Set(key, quote, c.ttls.Quote)
	return quote, nil
}

// Instrument returns the instrument for a symbol and whether the symbol is
// in the valid-symbol set.
func (c *Cached) Instrument(ctx context.Context, symbol string) (types.Instrument, bool, error) {
	instruments, err := c.instrumentsBySymbol(ctx)
	if err != nil {
		return types.Instrument{}, false, err
	}

	instrument, ok := instruments[symbol]
	return instrument, ok, nil
}

// IsSymbol reports whether a token names a valid symbol. Used by the chat
// parsers, which have no error channel back to the voter; lookup failures
// just reject the token.
func (c *Cached) IsSymbol(symbol string) bool {
	_, ok, err := c.Instrument(context.Background(), symbol)
	if err != nil {
		c.logger.Warn("symbol-lookup-failed", zap.String("symbol", symbol), zap.Error(err))
		return false
	}
	return ok
}

func (c *Cached) instrumentsBySymbol(ctx context.Context) (map[string]types.Instrument, error) {
	cached, ok := c.cache.Get("instruments")
	if ok {
		return cached.(map[string]types.Instrument), nil
	}

	list, err := c.source.Instruments(ctx)
	if err != nil {
		return nil, err
	}

	instruments := make(map[string]types.Instrument, len(list))
	for _, instrument := range list {
		if instrument.Tradeable {
			instruments[instrument.Symbol] = instrument
		}
	}

	c.cache.Set("instruments", instruments, c.ttls.Instrument)
	return instruments, nil
}

// Positions returns the account's positions keyed by symbol.
func (c *Cached) Positions(ctx context.Context) (map[string]types.Asset, error) {
	cached, ok := c.cache.Get("positions")
	if ok {
		return cached.(map[string]types.Asset), nil
	}

	list, err := c.source.Positions(ctx)
	if err != nil {
		return nil, err
	}

	positions := make(map[string]types.Asset, len(list))
	for _, asset := range list {
		positions[asset.Symbol] = asset
	}

	c.cache.Set("positions", positions, c.ttls.Position)
	return positions, nil
}

// LiablePlayers passes through to the source.
func (c *Cached) LiablePlayers(ctx context.Context, symbol string) ([]string, error) {
	return c.source.LiablePlayers(ctx, symbol)
}

// PendingOrders passes through to the source.
func (c *Cached) PendingOrders(ctx context.Context, since time.Time) ([]types.BrokerOrder, error) {
	return c.source.PendingOrders(ctx, since)
}

// ClaimedBuyOrders passes through to the source.
func (c *Cached) ClaimedBuyOrders(ctx context.Context, symbol string) ([]types.PlayerOrder, error) {
	return c.source.ClaimedBuyOrders(ctx, symbol)
}

// PlayerClaimedBuyOrders passes through to the source.
func (c *Cached) PlayerClaimedBuyOrders(ctx context.Context, playerID, symbol string) ([]types.PlayerOrder, error) {
	return c.source.PlayerClaimedBuyOrders(ctx, playerID, symbol)
}

// OpenBuyOrders passes through to the source.
func (c *Cached) OpenBuyOrders(ctx context.Context, playerID string) ([]types.BrokerOrder, error) {
	return c.source.OpenBuyOrders(ctx, playerID)
}

// Wallet passes through to the source.
func (c *Cached) Wallet(ctx context.Context, playerID string) (types.Wallet, bool, error) {
	return c.source.Wallet(ctx, playerID)
}

// Wallets passes through to the source.
func (c *Cached) Wallets(ctx context.Context, playerIDs []string) (map[string]types.Wallet, error) {
	return c.source.Wallets(ctx, playerIDs)
}

// MarketState returns the market state for a date. The cache key carries the
// full ISO date so state for the same month and day never collides across
// years.
func (c *Cached) MarketState(ctx context.Context, date time.Time) (types.MarketState, error) {
	key := "market-state:" + date.Format("2006-01-02")

	cached, ok := c.cache.Get(key)
	if ok {
		return cached.(types.MarketState), nil
	}

	state, err := c.source.MarketState(ctx, date)
	if err != nil {
		return types.MarketState{}, err
	}

	c.cache.Set(key, state, c.ttls.MarketState)
	return state, nil
}
