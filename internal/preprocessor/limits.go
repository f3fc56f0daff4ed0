package preprocessor

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/crowdstream/crowdstream/internal/quotes"
	"github.com/crowdstream/crowdstream/pkg/types"
)

// Premium tiers for shared-account market orders. The broker rejects market
// orders without a collared limit, so buys are costed at a worst-case
// ceiling and sells at a worst-case floor.
const (
	buyCeilingPct           = 0.05
	buyCeilingAfterHoursPct = 0.001
	sellFloorPct            = 0.03
	sellFloorAfterHoursPct  = 0.001
	collarFreePriceCutoff   = 250.0
)

// Wallet limit bands around the current price.
const (
	walletBuyCeilingPct = 0.01
	walletBuyFloorPct   = 0.10
	walletSellFloorPct  = 0.01
)

// BuyOrderCeiling computes the worst-case cost of buying one share at the
// quoted price. Prices at or above the cutoff carry no premium regardless of
// session; otherwise after-hours carries a thin premium and regular hours a
// thick one.
func (v *Validator) BuyOrderCeiling(ctx context.Context, quote types.Quote) (float64, error) {
	price := quotes.MostRecentPrice(quote)

	premium := buyCeilingPct

	afterHours, err := v.clock.IsAfterHours(ctx)
	if err != nil {
		return 0, v.unavailable("market session", quote.Symbol, err)
	}
	if afterHours {
		premium = buyCeilingAfterHoursPct
	}

	if price >= collarFreePriceCutoff {
		premium = 0
	}

	return price + price*premium, nil
}

// SellOrderFloor computes the worst-case proceeds of selling one share at
// the quoted price, mirroring BuyOrderCeiling.
func (v *Validator) SellOrderFloor(ctx context.Context, quote types.Quote) (float64, error) {
	price := quotes.MostRecentPrice(quote)

	discount := sellFloorPct

	afterHours, err := v.clock.IsAfterHours(ctx)
	if err != nil {
		return 0, v.unavailable("market session", quote.Symbol, err)
	}
	if afterHours {
		discount = sellFloorAfterHoursPct
	}

	if price >= collarFreePriceCutoff {
		discount = 0
	}

	return price - price*discount, nil
}

// roundToCents converts a price to whole cents, rounding to nearest.
func roundToCents(price float64) int {
	return int(math.Round(price * 100))
}

// truncateToCents converts a price to whole cents, discarding the fraction.
func truncateToCents(price float64) int {
	return int(price * 100)
}

// tickAligned reports whether a cents value lands on the instrument's tick
// grid. Instruments without a positive tick size accept any cent value.
func tickAligned(cents int, minTickSize float64) bool {
	if minTickSize <= 0 {
		return true
	}
	tickCents := int(minTickSize * 100)
	if tickCents <= 0 {
		return true
	}
	return cents%tickCents == 0
}

// RoundLimitToTick converts a limit price to the exact two-decimal string
// submitted to the broker. The price is snapped down to the tick grid,
// formatted to two decimals, and then the second cents digit is overwritten
// with the second cents digit of the tick size so the final digit always
// matches the tick granularity. Instruments without a tick size pass the
// price through unmodified apart from formatting.
func RoundLimitToTick(limit float64, minTickSize float64) string {
	tickStr := fmt.Sprintf("%.2f", minTickSize)

	snapped := limit
	if minTickSize > 0 {
		snapped = math.Floor(limit/minTickSize) * minTickSize
	}

	priceStr := fmt.Sprintf("%.2f", snapped)

	parts := strings.SplitN(priceStr, ".", 2)
	dollars, cents := parts[0], []byte(parts[1])

	tickCents := tickStr[strings.IndexByte(tickStr, '.')+1:]
	cents[1] = tickCents[1]

	return dollars + "." + string(cents)
}
