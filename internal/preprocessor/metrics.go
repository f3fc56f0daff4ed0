package preprocessor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// tradeValidationsTotal tracks trade validations by action and status.
	tradeValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdstream_preprocessor_trade_validations_total",
			Help: "Total trade command validations, by action and resulting status",
		},
		[]string{"action", "status"},
	)

	// walletValidationsTotal tracks wallet validations by action and status.
	walletValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdstream_preprocessor_wallet_validations_total",
			Help: "Total wallet command validations, by action and resulting status",
		},
		[]string{"action", "status"},
	)
)
