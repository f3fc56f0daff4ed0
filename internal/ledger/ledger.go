// Package ledger computes a player's spendable balance and buying power from
// wallet fields and in-flight orders. All functions are pure over the
// snapshots they are given.
package ledger

import (
	"github.com/crowdstream/crowdstream/pkg/types"
)

// DefaultMaxInfluencedBuy is the default per-player influence cap in
// currency units.
const DefaultMaxInfluencedBuy = 3000

// Computer performs wallet arithmetic under a configured influence cap.
type Computer struct {
	maxInfluencedBuy float64
}

// NewComputer creates a Computer. A cap <= 0 falls back to the default.
func NewComputer(maxInfluencedBuy float64) *Computer {
	if maxInfluencedBuy <= 0 {
		maxInfluencedBuy = DefaultMaxInfluencedBuy
	}
	return &Computer{maxInfluencedBuy: maxInfluencedBuy}
}

// MaxInfluencedBuy returns the configured per-player influence cap.
func (c *Computer) MaxInfluencedBuy() float64 {
	return c.maxInfluencedBuy
}

// SpendingBalance computes the player's personal remaining quota. openOrders
// are the broker orders backing the player's unsold-or-pending buy orders:
// filled orders hold their average fill price, pending orders hold their
// listed price. Spending above the influence cap is charged back once, and
// received-minus-sent transfers adjust the result.
func (c *Computer) SpendingBalance(wallet types.Wallet, openOrders []types.BrokerOrder) float64 {
	spent := 0.0
	for _, order := range openOrders {
		switch {
		case order.State == types.OrderStateFilled:
			spent += order.AveragePrice
		case order.Pending():
			spent += order.Price
		}
	}

	balance := wallet.RealizedReturn - spent

	if wallet.UnrealizedDollarsSpent > c.maxInfluencedBuy {
		overage := wallet.UnrealizedDollarsSpent - c.maxInfluencedBuy
		balance -= overage
	}

	balance += wallet.ReceivedDollars - wallet.SentDollars

	return balance
}

// BuyingPower computes the player's unused share of the influence cap.
func (c *Computer) BuyingPower(wallet types.Wallet) float64 {
	return c.maxInfluencedBuy - wallet.UnrealizedDollarsSpent - wallet.RealizedReturn
}

// VotersBuyingPower sums buying power over a voter set: wallets contribute
// only positive buying power, and every voter with no wallet on record is
// assumed to still have the full cap.
func (c *Computer) VotersBuyingPower(wallets []types.Wallet, playersWithoutWallet int) float64 {
	total := 0.0
	for _, wallet := range wallets {
		power := c.BuyingPower(wallet)
		if power > 0 {
			total += power
		}
	}

	total += float64(playersWithoutWallet) * c.maxInfluencedBuy

	return total
}
