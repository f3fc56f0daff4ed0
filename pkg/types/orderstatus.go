package types

// OrderStatus is the outcome code of validating a proposed order.
//
// The full enumeration is shared with downstream layers (broker submission,
// auth). The validation core only ever produces the subset documented on each
// member; the rest must stay in the enumeration for compatibility.
type OrderStatus string

// OrderStatus values. The first block is produced by the validation core.
const (
	StatusOK                  OrderStatus = "OK"
	StatusCantAfford          OrderStatus = "CANT_AFFORD"
	StatusBalanceTooLow       OrderStatus = "BALANCE_TOO_LOW"
	StatusBadLimit            OrderStatus = "BAD_LIMIT"
	StatusBadTickSize         OrderStatus = "BAD_TICK_SIZE"
	StatusBadTicker           OrderStatus = "BAD_TICKER"
	StatusNoShares            OrderStatus = "NO_SHARES"
	StatusExcessCashAvailable OrderStatus = "EXCESS_CASH_AVAILABLE"
	StatusInvalidCommand      OrderStatus = "INVALID_COMMAND"

	// Reserved for layers outside the validation core.
	StatusBadAuth              OrderStatus = "BAD_AUTH"
	StatusNetWorthTooLow       OrderStatus = "NET_WORTH_TOO_LOW"
	StatusNotEnoughVotes       OrderStatus = "NOT_ENOUGH_VOTES"
	StatusNotEnoughBuyingPower OrderStatus = "NOT_ENOUGH_BUYING_POWER"
	StatusMarketClosed         OrderStatus = "MARKET_CLOSED"
	StatusBrokerException      OrderStatus = "BROKER_EXCEPTION"
	StatusServerException      OrderStatus = "SERVER_EXCEPTION"
	StatusUnknown              OrderStatus = "UNKNOWN"
)
