package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/crowdstream/crowdstream/internal/broker"
	"github.com/crowdstream/crowdstream/internal/brokerdata"
	"github.com/crowdstream/crowdstream/internal/commands"
	"github.com/crowdstream/crowdstream/internal/election"
	"github.com/crowdstream/crowdstream/internal/ledger"
	"github.com/crowdstream/crowdstream/internal/preprocessor"
	"github.com/crowdstream/crowdstream/internal/quotes"
	"github.com/crowdstream/crowdstream/internal/scheduler"
	"github.com/crowdstream/crowdstream/internal/votestore"
	"github.com/crowdstream/crowdstream/pkg/cache"
	"github.com/crowdstream/crowdstream/pkg/config"
	"github.com/crowdstream/crowdstream/pkg/healthprobe"
	"github.com/crowdstream/crowdstream/pkg/httpserver"
	"github.com/crowdstream/crowdstream/pkg/types"
)

const (
	topicTrade  = "trade"
	topicWallet = "wallet"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := setupHealthChecker()

	snapshotCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	brokerSource := setupBroker(cfg, logger)

	data, err := setupBrokerData(cfg, logger, brokerSource, snapshotCache)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup broker data: %w", err)
	}

	validator, err := setupValidator(cfg, logger, data)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup validator: %w", err)
	}

	voteStore, err := setupVoteStore(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup vote store: %w", err)
	}

	registry, sched := setupElections(cfg, logger, voteStore, data, validator)

	httpServer := setupHTTPServer(cfg, logger, healthChecker, registry, validator)

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		snapshotCache: snapshotCache,
		voteStore:     voteStore,
		validator:     validator,
		registry:      registry,
		scheduler:     sched,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000, // 10x expected max items
		MaxCost:     1000,  // Maximum 1000 snapshots in cache
		BufferItems: 64,    // Buffer size for Get operations
		Logger:      logger,
	})
}

// setupBroker seeds the simulated brokerage with the configured symbols, a
// starting cash balance and an always-open market calendar. Replace this with
// a real brokerage client to trade against live data.
func setupBroker(cfg *config.Config, logger *zap.Logger) *broker.Simulated {
	sim := broker.NewSimulated()
	sim.SetCash(cfg.SimStartingCash)
	sim.SetDefaultMarketState(types.MarketState{
		IsOpenNow:     true,
		IsOpenThisDay: true,
	})

	symbols := strings.Split(cfg.SimSymbols, ",")
	seeded := make([]string, 0, len(symbols))
	for _, raw := range symbols {
		symbol := commands.NormalizeSymbol(raw)
		if symbol == "" {
			continue
		}

		sim.SetInstrument(types.Instrument{
			Symbol:      symbol,
			Tradeable:   true,
			MinTickSize: 0.01,
		})
		sim.SetQuote(types.Quote{
			Symbol:         symbol,
			LastTradePrice: 100.0,
			PreviousClose:  100.0,
		})
		seeded = append(seeded, symbol)
	}

	logger.Info("simulated-broker-seeded",
		zap.Strings("symbols", seeded),
		zap.Float64("starting-cash", cfg.SimStartingCash))

	return sim
}

func setupBrokerData(
	cfg *config.Config,
	logger *zap.Logger,
	source brokerdata.Source,
	snapshotCache cache.Cache,
) (*brokerdata.Cached, error) {
	return brokerdata.New(&brokerdata.Config{
		Source: source,
		Cache:  snapshotCache,
		TTLs: brokerdata.TTLs{
			Quote:       cfg.QuoteTTL,
			Instrument:  cfg.InstrumentTTL,
			Balance:     cfg.BalanceTTL,
			Position:    cfg.PositionTTL,
			MarketState: cfg.MarketStateTTL,
		},
		Logger: logger,
	})
}

func setupValidator(cfg *config.Config, logger *zap.Logger, data *brokerdata.Cached) (*preprocessor.Validator, error) {
	clock, err := quotes.NewMarketClock(&quotes.ClockConfig{
		Provider:    data,
		MaxScanDays: cfg.MarketScanMaxDays,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create market clock: %w", err)
	}

	return preprocessor.New(&preprocessor.Config{
		Account:      data,
		QuoteSource:  data,
		Instruments:  data,
		Positions:    data,
		Pending:      data,
		PlayerOrders: data,
		Wallets:      data,
		Clock:        clock,
		Ledger:       ledger.NewComputer(cfg.MaxInfluencedBuy),
		Logger:       logger,
	})
}

func setupVoteStore(cfg *config.Config, logger *zap.Logger) (votestore.Store, error) {
	if cfg.StorageMode == "postgres" {
		pgStore, err := votestore.NewPostgresStore(&votestore.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres vote store: %w", err)
		}
		return pgStore, nil
	}

	return votestore.NewMemoryStore(logger), nil
}

func setupElections(
	cfg *config.Config,
	logger *zap.Logger,
	voteStore votestore.Store,
	data *brokerdata.Cached,
	validator *preprocessor.Validator,
) (*election.Registry, *scheduler.Scheduler) {
	tradeElection := election.New[types.TradeCommand](topicTrade, 0, voteStore, logger).
		WithSubscribersOnly(cfg.SubscribersOnly).
		WithMaxCandidates(cfg.TradeMaxCandidates).
		WithMessageParser(commands.NewTradeParser(data).Parse).
		WithPreprocessor(tradePreprocessor(validator)).
		WithWinnerCallback(tradeWinnerHandler(validator, logger))

	walletElection := election.New[types.WalletCommand](topicWallet, 1, voteStore, logger).
		WithMessageParser(commands.NewWalletParser(data).Parse).
		WithInstantExecutor(walletExecutor(validator, logger))

	registry := election.NewRegistry()
	registry.Register(tradeElection)
	registry.Register(walletElection)

	sched := scheduler.New(&scheduler.Config{
		CheckInterval: cfg.TallyCheckInterval,
		Logger:        logger,
	})
	sched.AddElection(tradeElection, cfg.TradeRoundLength)

	return registry, sched
}

// tradePreprocessor rejects a trade candidate's first vote when the command
// does not currently validate. The veto message is relayed to the voter.
func tradePreprocessor(validator *preprocessor.Validator) election.Preprocessor[types.TradeCommand] {
	return func(ctx context.Context, cmd types.TradeCommand, voter types.Voter) string {
		status, err := validator.ValidateTradeCommand(ctx, cmd, []types.Voter{voter})
		if err != nil {
			return fmt.Sprintf("%s: validation unavailable, try again", cmd.Label())
		}
		if status != types.StatusOK {
			return fmt.Sprintf("%s: %s", cmd.Label(), status)
		}
		return ""
	}
}

// tradeWinnerHandler re-validates the winning trade against fresh snapshots
// and paper-submits it. Conditions can change between the vote and the close
// of the round, so a stale win is rejected here rather than sent on.
func tradeWinnerHandler(validator *preprocessor.Validator, logger *zap.Logger) func(types.TradeCommand) {
	return func(cmd types.TradeCommand) {
		if cmd.Action == types.TradeSkip {
			logger.Info("trade-round-skipped")
			return
		}

		status, err := validator.ValidateTradeCommand(context.Background(), cmd, nil)
		if err != nil {
			logger.Error("trade-winner-validation-unavailable",
				zap.String("command", cmd.Label()),
				zap.Error(err))
			return
		}
		if status != types.StatusOK {
			logger.Warn("trade-winner-rejected",
				zap.String("command", cmd.Label()),
				zap.String("status", string(status)))
			return
		}

		logger.Info("trade-submitted",
			zap.String("command", cmd.Label()),
			zap.String("mode", "paper"))
	}
}

// walletExecutor validates a personal wallet order the moment it arrives.
func walletExecutor(validator *preprocessor.Validator, logger *zap.Logger) election.InstantExecutor[types.WalletCommand] {
	return func(ctx context.Context, cmd types.WalletCommand, voter types.Voter) {
		status, err := validator.ValidateWalletCommand(ctx, voter.PlayerID(), cmd)
		if err != nil {
			logger.Error("wallet-order-validation-unavailable",
				zap.String("player-id", voter.PlayerID()),
				zap.String("command", cmd.Label()),
				zap.Error(err))
			return
		}
		if status != types.StatusOK {
			logger.Warn("wallet-order-rejected",
				zap.String("player-id", voter.PlayerID()),
				zap.String("command", cmd.Label()),
				zap.String("status", string(status)))
			return
		}

		logger.Info("wallet-order-submitted",
			zap.String("player-id", voter.PlayerID()),
			zap.String("command", cmd.Label()),
			zap.String("mode", "paper"))
	}
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	registry *election.Registry,
	validator *preprocessor.Validator,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Registry:      registry,
		Validator:     validator,
		VoteRate:      rate.Limit(cfg.VoteRatePerSecond),
		VoteBurst:     cfg.VoteBurst,
	})
}
