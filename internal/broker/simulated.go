// Package broker holds brokerage data sources. The simulated source serves
// fixture state from memory so the system runs end to end with no brokerage
// attached; tests also use it as a scriptable provider.
package broker

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/crowdstream/crowdstream/pkg/types"
)

// Simulated is an in-memory brokerage data source.
type Simulated struct {
	mu           sync.RWMutex
	cash         float64
	quotes       map[string]types.Quote
	instruments  map[string]types.Instrument
	positions    map[string]types.Asset
	liable       map[string][]string
	orders       []types.BrokerOrder
	playerOrders []types.PlayerOrder
	openOrders   map[string][]types.BrokerOrder
	wallets      map[string]types.Wallet
	states       map[string]types.MarketState
	defaultState types.MarketState
}

// NewSimulated creates an empty simulated source.
func NewSimulated() *Simulated {
	return &Simulated{
		quotes:      make(map[string]types.Quote),
		instruments: make(map[string]types.Instrument),
		positions:   make(map[string]types.Asset),
		liable:      make(map[string][]string),
		openOrders:  make(map[string][]types.BrokerOrder),
		wallets:     make(map[string]types.Wallet),
		states:      make(map[string]types.MarketState),
		defaultState: types.MarketState{
			IsOpenNow:     true,
			IsOpenThisDay: true,
		},
	}
}

// SetCash sets the account's uncommitted cash.
func (s *Simulated) SetCash(cash float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cash = cash
}

// SetQuote installs a quote snapshot.
func (s *Simulated) SetQuote(q types.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.Symbol] = q
}

// SetInstrument installs an instrument.
func (s *Simulated) SetInstrument(i types.Instrument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instruments[i.Symbol] = i
}

// SetPosition installs a whole-account position.
func (s *Simulated) SetPosition(a types.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[a.Symbol] = a
}

// SetLiablePlayers sets the players with claims on a symbol's open
// positions.
func (s *Simulated) SetLiablePlayers(symbol string, playerIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liable[symbol] = playerIDs
}

// AddOrder appends a broker order.
func (s *Simulated) AddOrder(o types.BrokerOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o)
}

// AddPlayerOrder appends a player claim order.
func (s *Simulated) AddPlayerOrder(o types.PlayerOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerOrders = append(s.playerOrders, o)
}

// SetOpenBuyOrders sets the broker orders backing a player's open buys.
func (s *Simulated) SetOpenBuyOrders(playerID string, orders []types.BrokerOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openOrders[playerID] = orders
}

// SetWallet installs a player wallet.
func (s *Simulated) SetWallet(w types.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.PlayerID] = w
}

// SetMarketState installs the market state for one calendar date.
func (s *Simulated) SetMarketState(date time.Time, state types.MarketState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[date.Format("2006-01-02")] = state
}

// SetDefaultMarketState sets the state returned for dates with no explicit
// entry.
func (s *Simulated) SetDefaultMarketState(state types.MarketState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultState = state
}

// UncommittedCash implements brokerdata.Source.
func (s *Simulated) UncommittedCash(ctx context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cash, nil
}

// Quote implements brokerdata.Source.
func (s *Simulated) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quotes[symbol], nil
}

// Instruments implements brokerdata.Source.
func (s *Simulated) Instruments(ctx context.Context) ([]types.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	instruments := make([]types.Instrument, 0, len(s.instruments))
	for _, instrument := range s.instruments {
		instruments = append(instruments, instrument)
	}
	return instruments, nil
}

// Positions implements brokerdata.Source.
func (s *Simulated) Positions(ctx context.Context) ([]types.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := make([]types.Asset, 0, len(s.positions))
	for _, asset := range s.positions {
		positions = append(positions, asset)
	}
	return positions, nil
}

// LiablePlayers implements brokerdata.Source.
func (s *Simulated) LiablePlayers(ctx context.Context, symbol string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liable[symbol], nil
}

// PendingOrders implements brokerdata.Source.
func (s *Simulated) PendingOrders(ctx context.Context, since time.Time) ([]types.BrokerOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []types.BrokerOrder
	for _, order := range s.orders {
		if order.Pending() && !order.CreatedAt.Before(since) {
			pending = append(pending, order)
		}
	}
	return pending, nil
}

// ClaimedBuyOrders implements brokerdata.Source.
func (s *Simulated) ClaimedBuyOrders(ctx context.Context, symbol string) ([]types.PlayerOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var claimed []types.PlayerOrder
	for _, order := range s.playerOrders {
		if strings.EqualFold(order.Symbol, symbol) {
			claimed = append(claimed, order)
		}
	}
	return claimed, nil
}

// PlayerClaimedBuyOrders implements brokerdata.Source.
func (s *Simulated) PlayerClaimedBuyOrders(ctx context.Context, playerID, symbol string) ([]types.PlayerOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var claimed []types.PlayerOrder
	for _, order := range s.playerOrders {
		if order.PlayerID == playerID && strings.EqualFold(order.Symbol, symbol) {
			claimed = append(claimed, order)
		}
	}
	return claimed, nil
}

// OpenBuyOrders implements brokerdata.Source.
func (s *Simulated) OpenBuyOrders(ctx context.Context, playerID string) ([]types.BrokerOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openOrders[playerID], nil
}

// Wallet implements brokerdata.Source.
func (s *Simulated) Wallet(ctx context.Context, playerID string) (types.Wallet, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallet, ok := s.wallets[playerID]
	return wallet, ok, nil
}

// Wallets implements brokerdata.Source.
func (s *Simulated) Wallets(ctx context.Context, playerIDs []string) (map[string]types.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallets := make(map[string]types.Wallet)
	for _, playerID := range playerIDs {
		wallet, ok := s.wallets[playerID]
		if ok {
			wallets[playerID] = wallet
		}
	}
	return wallets, nil
}

// MarketState implements brokerdata.Source.
func (s *Simulated) MarketState(ctx context.Context, date time.Time) (types.MarketState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[date.Format("2006-01-02")]
	if ok {
		return state, nil
	}

	state = s.defaultState
	state.Date = date
	return state, nil
}
