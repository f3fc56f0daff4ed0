// Package quotes resolves current prices and market session state from
// externally supplied snapshots.
package quotes

import (
	"math"

	"github.com/crowdstream/crowdstream/pkg/types"
)

// fuzzyZeroTolerance treats after-hours prices this close to zero as absent.
const fuzzyZeroTolerance = 0.001

// MostRecentPrice resolves the current price of a quote: the after-hours
// trade price when one exists, otherwise the last regular trade price.
func MostRecentPrice(q types.Quote) float64 {
	if math.Abs(q.LastAfterHoursTradePrice) > fuzzyZeroTolerance {
		return q.LastAfterHoursTradePrice
	}
	return q.LastTradePrice
}

// PercentChange computes the percent move of the most recent price against
// the previous close.
func PercentChange(q types.Quote) float64 {
	price := MostRecentPrice(q)
	change := price - q.PreviousClose
	return (change / q.PreviousClose) * 100
}
