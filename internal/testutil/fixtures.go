// Package testutil holds shared fixtures for validation and election tests.
package testutil

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/crowdstream/crowdstream/internal/broker"
	"github.com/crowdstream/crowdstream/internal/ledger"
	"github.com/crowdstream/crowdstream/internal/preprocessor"
	"github.com/crowdstream/crowdstream/internal/quotes"
	"github.com/crowdstream/crowdstream/pkg/types"
)

// Voter creates a test twitch voter.
func Voter(username string) types.Voter {
	return types.Voter{
		Username: username,
		Platform: "twitch",
		Channel:  "teststream",
	}
}

// Subscriber creates a test twitch voter flagged as a subscriber.
func Subscriber(username string) types.Voter {
	v := Voter(username)
	v.Subscriber = true
	return v
}

// SeededBroker creates a simulated brokerage with an open market, the given
// cash balance and penny-tick tradeable instruments quoted at the given
// prices.
func SeededBroker(cash float64, prices map[string]float64) *broker.Simulated {
	sim := broker.NewSimulated()
	sim.SetCash(cash)
	sim.SetDefaultMarketState(types.MarketState{
		IsOpenNow:     true,
		IsOpenThisDay: true,
	})

	for symbol, price := range prices {
		sim.SetInstrument(types.Instrument{
			Symbol:      symbol,
			Tradeable:   true,
			MinTickSize: 0.01,
		})
		sim.SetQuote(types.Quote{
			Symbol:         symbol,
			LastTradePrice: price,
			PreviousClose:  price,
		})
	}

	return sim
}

// Snapshot adapts the simulated brokerage to the uncached snapshot provider
// shapes so validator tests observe mutations immediately.
type Snapshot struct {
	*broker.Simulated
}

// Instrument looks up one tradeable instrument by symbol.
func (s Snapshot) Instrument(ctx context.Context, symbol string) (types.Instrument, bool, error) {
	instruments, err := s.Instruments(ctx)
	if err != nil {
		return types.Instrument{}, false, err
	}

	for _, instrument := range instruments {
		if instrument.Tradeable && instrument.Symbol == symbol {
			return instrument, true, nil
		}
	}
	return types.Instrument{}, false, nil
}

// Positions returns the account's positions keyed by symbol.
func (s Snapshot) Positions(ctx context.Context) (map[string]types.Asset, error) {
	list, err := s.Simulated.Positions(ctx)
	if err != nil {
		return nil, err
	}

	positions := make(map[string]types.Asset, len(list))
	for _, asset := range list {
		positions[asset.Symbol] = asset
	}
	return positions, nil
}

// IsSymbol reports whether a token names a seeded tradeable symbol.
func (s Snapshot) IsSymbol(symbol string) bool {
	_, ok, err := s.Instrument(context.Background(), symbol)
	return err == nil && ok
}

// NewValidator builds a validator over a simulated brokerage with a no-op
// logger. now overrides the validator clock when non-nil.
func NewValidator(sim *broker.Simulated, maxInfluencedBuy float64, now func() time.Time) (*preprocessor.Validator, error) {
	snap := Snapshot{Simulated: sim}

	clock, err := quotes.NewMarketClock(&quotes.ClockConfig{
		Provider: snap,
		Now:      now,
		Logger:   zap.NewNop(),
	})
	if err != nil {
		return nil, err
	}

	return preprocessor.New(&preprocessor.Config{
		Account:      snap,
		QuoteSource:  snap,
		Instruments:  snap,
		Positions:    snap,
		Pending:      snap,
		PlayerOrders: snap,
		Wallets:      snap,
		Clock:        clock,
		Ledger:       ledger.NewComputer(maxInfluencedBuy),
		Logger:       zap.NewNop(),
		Now:          now,
	})
}
