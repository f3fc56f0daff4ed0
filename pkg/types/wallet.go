package types

// Wallet is a player's running account of claims against the shared pool.
// It is mutated only by the settlement subsystem; the validation core reads it.
type Wallet struct {
	PlayerID               string  `json:"player_id"`
	RealizedReturn         float64 `json:"realized_return"`
	RealizedDecimalReturn  float64 `json:"realized_decimal_return"`
	UnrealizedDollarsSpent float64 `json:"unrealized_dollars_spent"`
	SentDollars            float64 `json:"sent_dollars"`
	ReceivedDollars        float64 `json:"received_dollars"`
}
