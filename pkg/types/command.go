package types

import (
	"fmt"
	"strconv"
)

// TradeAction is an action voted on for the shared account.
type TradeAction string

// Trade actions.
const (
	TradeBuy  TradeAction = "BUY"
	TradeSell TradeAction = "SELL"
	TradeSkip TradeAction = "SKIP"
)

// WalletAction is an action a player takes against their own wallet.
type WalletAction string

// Wallet actions.
const (
	WalletBuy  WalletAction = "BUY"
	WalletSell WalletAction = "SELL"
	WalletSend WalletAction = "SEND"
)

// TradeCommand is a proposed action for the shared brokerage account.
// Two commands with the same action and symbol are the same candidate.
type TradeCommand struct {
	Action TradeAction `json:"action"`
	Symbol string      `json:"symbol"`
}

// Valid reports whether the command is well formed. SKIP carries no symbol;
// BUY and SELL require one.
func (c TradeCommand) Valid() bool {
	switch c.Action {
	case TradeSkip:
		return c.Symbol == ""
	case TradeBuy, TradeSell:
		return c.Symbol != ""
	default:
		return false
	}
}

// Label returns the display form of the command.
func (c TradeCommand) Label() string {
	if c.Symbol == "" {
		return string(c.Action)
	}
	return fmt.Sprintf("%s %s", c.Action, c.Symbol)
}

// Key returns the candidate identity key: action and symbol only.
func (c TradeCommand) Key() string {
	return "trade|" + string(c.Action) + "|" + c.Symbol
}

// WalletCommand is a proposed action against a player's wallet. For BUY and
// SELL the Symbol is a ticker and Limit is a limit price; for SEND the Symbol
// names the recipient player and Limit is the dollar amount.
type WalletCommand struct {
	Action   WalletAction `json:"action"`
	Quantity int          `json:"quantity"`
	Symbol   string       `json:"symbol"`
	Limit    float64      `json:"limit"`
}

// Label returns the display form of the command.
func (c WalletCommand) Label() string {
	return fmt.Sprintf("%s %s %s", c.Action, c.Symbol, strconv.FormatFloat(c.Limit, 'f', -1, 64))
}

// Key returns the candidate identity key: action, symbol and limit. Two buy
// orders at different limits are distinct candidates. Quantity is not part of
// candidate identity.
func (c WalletCommand) Key() string {
	return "wallet|" + string(c.Action) + "|" + c.Symbol + "|" + strconv.FormatFloat(c.Limit, 'f', -1, 64)
}
