package types

import "time"

// Quote is a point-in-time price snapshot for one symbol.
type Quote struct {
	Symbol                   string  `json:"symbol"`
	LastTradePrice           float64 `json:"last_trade_price"`
	LastAfterHoursTradePrice float64 `json:"last_after_hours_trade_price"`
	PreviousClose            float64 `json:"previous_close"`
}

// MarketState describes the market session for a single calendar day.
type MarketState struct {
	Date            time.Time `json:"date"`
	IsOpenNow       bool      `json:"is_open_now"`
	IsAfterHoursNow bool      `json:"is_after_hours_now"`
	IsOpenThisDay   bool      `json:"is_open_this_day"`
}

// Asset is a whole-account position aggregate for one symbol, not a
// per-player holding.
type Asset struct {
	Symbol      string  `json:"symbol"`
	Shares      int     `json:"shares"`
	AvgBuyPrice float64 `json:"avg_buy_price"`
	Quote       Quote   `json:"quote"`
}

// Instrument is broker metadata for a tradeable symbol.
type Instrument struct {
	Symbol      string  `json:"symbol"`
	Tradeable   bool    `json:"tradeable"`
	MinTickSize float64 `json:"min_tick_size"`
}

// Broker order lifecycle states.
const (
	OrderStateFilled      = "filled"
	OrderStateConfirmed   = "confirmed"
	OrderStateUnconfirmed = "unconfirmed"
	OrderStateQueued      = "queued"
	OrderStateCancelled   = "cancelled"
)

// Order sides as the broker reports them.
const (
	OrderSideBuy  = "buy"
	OrderSideSell = "sell"
)

// PendingOrderStates are the states of an order that is still in flight and
// therefore holds cash or shares.
var PendingOrderStates = map[string]bool{
	OrderStateConfirmed:   true,
	OrderStateUnconfirmed: true,
	OrderStateQueued:      true,
}

// BrokerOrder is one order as reported by the brokerage account.
type BrokerOrder struct {
	ID           string    `json:"id"`
	State        string    `json:"state"`
	Side         string    `json:"side"`
	Symbol       string    `json:"symbol"`
	Quantity     float64   `json:"quantity"`
	Price        float64   `json:"price"`
	AveragePrice float64   `json:"average_price"`
	CreatedAt    time.Time `json:"created_at"`
}

// Pending reports whether the order is in an in-flight state.
func (o BrokerOrder) Pending() bool {
	return PendingOrderStates[o.State]
}

// PlayerOrder is a player's claim on part of an account position: one
// influenced buy order attributed to that player.
type PlayerOrder struct {
	OrderID  string  `json:"order_id"`
	PlayerID string  `json:"player_id"`
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}
