package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crowdstream/crowdstream/pkg/types"
)

type symbolSet map[string]bool

func (s symbolSet) IsSymbol(symbol string) bool { return s[symbol] }

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "AMZN", NormalizeSymbol("amzn"))
	assert.Equal(t, "MSFT", NormalizeSymbol("$msft"))
	assert.Equal(t, "GOOG", NormalizeSymbol("GOOG"))
}

func TestTradeParserParse(t *testing.T) {
	symbols := symbolSet{"AMZN": true, "MSFT": true}
	parser := NewTradeParser(symbols)

	tests := []struct {
		name    string
		message string
		want    types.TradeCommand
		ok      bool
	}{
		{name: "buy", message: "buy AMZN", want: types.TradeCommand{Action: types.TradeBuy, Symbol: "AMZN"}, ok: true},
		{name: "sell-dollar-prefix-lowercase", message: "sell $msft", want: types.TradeCommand{Action: types.TradeSell, Symbol: "MSFT"}, ok: true},
		{name: "skip", message: "skip", want: types.TradeCommand{Action: types.TradeSkip}, ok: true},
		{name: "skip-uppercase", message: "SKIP", want: types.TradeCommand{Action: types.TradeSkip}, ok: true},
		{name: "leading-whitespace", message: "  buy AMZN", want: types.TradeCommand{Action: types.TradeBuy, Symbol: "AMZN"}, ok: true},
		{name: "unknown-symbol", message: "buy ZZZZ", ok: false},
		{name: "skip-with-symbol", message: "skip AMZN", ok: false},
		{name: "missing-symbol", message: "buy", ok: false},
		{name: "extra-token", message: "buy AMZN now", ok: false},
		{name: "chatter", message: "hello everyone", ok: false},
		{name: "empty", message: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parser.Parse(tt.message)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestWalletParserParse(t *testing.T) {
	symbols := symbolSet{"AMZN": true, "MSFT": true}
	parser := NewWalletParser(symbols)

	tests := []struct {
		name    string
		message string
		want    types.WalletCommand
		ok      bool
	}{
		{
			name:    "buy",
			message: "!buy 2 AMZN 12.34",
			want:    types.WalletCommand{Action: types.WalletBuy, Quantity: 2, Symbol: "AMZN", Limit: 12.34},
			ok:      true,
		},
		{
			name:    "sell-lowercase-symbol",
			message: "!sell 1 msft 99.10",
			want:    types.WalletCommand{Action: types.WalletSell, Quantity: 1, Symbol: "MSFT", Limit: 99.10},
			ok:      true,
		},
		{
			name:    "send",
			message: "!send twitch:mike 5.00",
			want:    types.WalletCommand{Action: types.WalletSend, Symbol: "twitch:mike", Limit: 5.00},
			ok:      true,
		},
		{name: "missing-bang", message: "buy 2 AMZN 12.34", ok: false},
		{name: "zero-quantity", message: "!buy 0 AMZN 12.34", ok: false},
		{name: "negative-quantity", message: "!buy -1 AMZN 12.34", ok: false},
		{name: "unknown-symbol", message: "!buy 2 ZZZZ 12.34", ok: false},
		{name: "bad-limit", message: "!buy 2 AMZN twelve", ok: false},
		{name: "send-missing-amount", message: "!send twitch:mike", ok: false},
		{name: "unknown-action", message: "!gift 2 AMZN 12.34", ok: false},
		{name: "empty", message: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parser.Parse(tt.message)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
