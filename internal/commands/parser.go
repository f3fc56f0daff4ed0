// Package commands maps chat tokens to trade and wallet candidates. Parsing
// is deliberately token-level: a token maps to zero or one candidate, nothing
// fuzzier.
package commands

import (
	"strconv"
	"strings"

	"github.com/crowdstream/crowdstream/pkg/types"
)

// SymbolChecker reports whether a token names a valid, tradeable symbol.
type SymbolChecker interface {
	IsSymbol(symbol string) bool
}

// NormalizeSymbol upper-cases a ticker token and strips a leading "$".
func NormalizeSymbol(token string) string {
	token = strings.TrimPrefix(token, "$")
	return strings.ToUpper(token)
}

// TradeParser parses shared-account vote tokens: "buy AMZN", "sell $msft",
// "skip".
type TradeParser struct {
	symbols SymbolChecker
}

// NewTradeParser creates a trade command parser.
func NewTradeParser(symbols SymbolChecker) *TradeParser {
	return &TradeParser{symbols: symbols}
}

// Parse maps one message to a trade candidate, if it is one.
func (p *TradeParser) Parse(message string) (types.TradeCommand, bool) {
	fields := strings.Fields(strings.TrimSpace(message))
	if len(fields) == 0 {
		return types.TradeCommand{}, false
	}

	action := strings.ToUpper(fields[0])

	if action == string(types.TradeSkip) && len(fields) == 1 {
		return types.TradeCommand{Action: types.TradeSkip}, true
	}

	if len(fields) != 2 {
		return types.TradeCommand{}, false
	}

	if action != string(types.TradeBuy) && action != string(types.TradeSell) {
		return types.TradeCommand{}, false
	}

	symbol := NormalizeSymbol(fields[1])
	if !p.symbols.IsSymbol(symbol) {
		return types.TradeCommand{}, false
	}

	return types.TradeCommand{Action: types.TradeAction(action), Symbol: symbol}, true
}

// WalletParser parses player wallet tokens: "!buy 2 AMZN 12.34",
// "!sell 1 msft 99.10", "!send twitch:mike 5.00".
type WalletParser struct {
	symbols SymbolChecker
}

// NewWalletParser creates a wallet command parser.
func NewWalletParser(symbols SymbolChecker) *WalletParser {
	return &WalletParser{symbols: symbols}
}

// Parse maps one message to a wallet candidate, if it is one.
func (p *WalletParser) Parse(message string) (types.WalletCommand, bool) {
	fields := strings.Fields(strings.TrimSpace(message))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "!") {
		return types.WalletCommand{}, false
	}

	action := strings.ToUpper(strings.TrimPrefix(fields[0], "!"))

	switch action {
	case string(types.WalletBuy), string(types.WalletSell):
		if len(fields) != 4 {
			return types.WalletCommand{}, false
		}

		quantity, err := strconv.Atoi(fields[1])
		if err != nil || quantity <= 0 {
			return types.WalletCommand{}, false
		}

		symbol := NormalizeSymbol(fields[2])
		if !p.symbols.IsSymbol(symbol) {
			return types.WalletCommand{}, false
		}

		limit, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return types.WalletCommand{}, false
		}

		return types.WalletCommand{
			Action:   types.WalletAction(action),
			Quantity: quantity,
			Symbol:   symbol,
			Limit:    limit,
		}, true

	case string(types.WalletSend):
		if len(fields) != 3 {
			return types.WalletCommand{}, false
		}

		amount, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return types.WalletCommand{}, false
		}

		return types.WalletCommand{
			Action: types.WalletSend,
			Symbol: fields[1],
			Limit:  amount,
		}, true
	}

	return types.WalletCommand{}, false
}
