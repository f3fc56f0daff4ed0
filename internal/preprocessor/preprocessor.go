// Package preprocessor is the validation gate in front of the broker: it
// decides, from current market and ledger snapshots, whether a proposed
// trade or wallet action is currently legal. It never mutates state and
// never reserves shares or cash; validation and execution can race, which is
// a documented gap owned by the execution layer.
package preprocessor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crowdstream/crowdstream/internal/ledger"
	"github.com/crowdstream/crowdstream/internal/quotes"
	"github.com/crowdstream/crowdstream/pkg/types"
	"go.uber.org/zap"
)

// ErrDataUnavailable marks a validation attempt that failed because a
// snapshot provider could not answer. It is a distinct failure kind: absent
// data is never treated as a passing validation.
var ErrDataUnavailable = errors.New("snapshot data unavailable")

// AccountProvider reports the shared account's uncommitted cash.
type AccountProvider interface {
	UncommittedCash(ctx context.Context) (float64, error)
}

// QuoteProvider returns the current quote snapshot for a symbol.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (types.Quote, error)
}

// InstrumentProvider answers symbol validity and instrument metadata.
type InstrumentProvider interface {
	Instrument(ctx context.Context, symbol string) (types.Instrument, bool, error)
}

// PositionProvider reports whole-account positions and the players liable
// for open positions in a symbol.
type PositionProvider interface {
	Positions(ctx context.Context) (map[string]types.Asset, error)
	LiablePlayers(ctx context.Context, symbol string) ([]string, error)
}

// PendingOrderProvider lists in-flight broker orders created since a date.
type PendingOrderProvider interface {
	PendingOrders(ctx context.Context, since time.Time) ([]types.BrokerOrder, error)
}

// PlayerOrderProvider reports player claims on account positions.
type PlayerOrderProvider interface {
	// ClaimedBuyOrders returns every player's unmatched filled buy orders
	// for a symbol.
	ClaimedBuyOrders(ctx context.Context, symbol string) ([]types.PlayerOrder, error)

	// PlayerClaimedBuyOrders returns one player's unmatched filled buy
	// orders for a symbol.
	PlayerClaimedBuyOrders(ctx context.Context, playerID, symbol string) ([]types.PlayerOrder, error)

	// OpenBuyOrders returns the broker orders backing a player's
	// unsold-or-pending buy orders.
	OpenBuyOrders(ctx context.Context, playerID string) ([]types.BrokerOrder, error)
}

// WalletProvider reads player wallets.
type WalletProvider interface {
	Wallet(ctx context.Context, playerID string) (types.Wallet, bool, error)
	Wallets(ctx context.Context, playerIDs []string) (map[string]types.Wallet, error)
}

// Validator validates proposed trade and wallet commands against current
// snapshots.
type Validator struct {
	account      AccountProvider
	quoteSource  QuoteProvider
	instruments  InstrumentProvider
	positions    PositionProvider
	pending      PendingOrderProvider
	playerOrders PlayerOrderProvider
	wallets      WalletProvider
	clock        *quotes.MarketClock
	ledger       *ledger.Computer
	logger       *zap.Logger
	now          func() time.Time
}

// Config holds Validator dependencies.
type Config struct {
	Account      AccountProvider
	QuoteSource  QuoteProvider
	Instruments  InstrumentProvider
	Positions    PositionProvider
	Pending      PendingOrderProvider
	PlayerOrders PlayerOrderProvider
	Wallets      WalletProvider
	Clock        *quotes.MarketClock
	Ledger       *ledger.Computer
	Logger       *zap.Logger
	Now          func() time.Time
}

// New creates a Validator.
func New(cfg *Config) (*Validator, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Account == nil || cfg.QuoteSource == nil || cfg.Instruments == nil ||
		cfg.Positions == nil || cfg.Pending == nil || cfg.PlayerOrders == nil ||
		cfg.Wallets == nil {
		return nil, errors.New("all snapshot providers are required")
	}
	if cfg.Clock == nil {
		return nil, errors.New("market clock cannot be nil")
	}
	if cfg.Ledger == nil {
		return nil, errors.New("ledger computer cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Validator{
		account:      cfg.Account,
		quoteSource:  cfg.QuoteSource,
		instruments:  cfg.Instruments,
		positions:    cfg.Positions,
		pending:      cfg.Pending,
		playerOrders: cfg.PlayerOrders,
		wallets:      cfg.Wallets,
		clock:        cfg.Clock,
		ledger:       cfg.Ledger,
		logger:       cfg.Logger,
		now:          now,
	}, nil
}

// ValidateTradeCommand decides whether a proposed shared-account trade is
// currently legal. Normal rejections come back as statuses; provider
// failures come back as an error wrapping ErrDataUnavailable with
// StatusUnknown.
func (v *Validator) ValidateTradeCommand(ctx context.Context, cmd types.TradeCommand, voters []types.Voter) (types.OrderStatus, error) {
	status, err := v.validateTradeCommand(ctx, cmd, voters)
	tradeValidationsTotal.WithLabelValues(string(cmd.Action), string(status)).Inc()
	return status, err
}

func (v *Validator) validateTradeCommand(ctx context.Context, cmd types.TradeCommand, voters []types.Voter) (types.OrderStatus, error) {
	if cmd.Action != types.TradeSkip {
		_, valid, err := v.instruments.Instrument(ctx, cmd.Symbol)
		if err != nil {
			return types.StatusUnknown, v.unavailable("instrument", cmd.Symbol, err)
		}
		if !valid {
			return types.StatusBadTicker, nil
		}
	}

	switch cmd.Action {
	case types.TradeBuy:
		return v.validateTradeBuy(ctx, cmd)
	case types.TradeSell:
		return v.validateTradeSell(ctx, cmd, voters)
	case types.TradeSkip:
		return types.StatusOK, nil
	default:
		v.logger.Warn("unhandled-trade-action", zap.String("command", cmd.Label()))
		return types.StatusOK, nil
	}
}

func (v *Validator) validateTradeBuy(ctx context.Context, cmd types.TradeCommand) (types.OrderStatus, error) {
	quote, err := v.quoteSource.Quote(ctx, cmd.Symbol)
	if err != nil {
		return types.StatusUnknown, v.unavailable("quote", cmd.Symbol, err)
	}

	ceiling, err := v.BuyOrderCeiling(ctx, quote)
	if err != nil {
		return types.StatusUnknown, err
	}

	cash, err := v.account.UncommittedCash(ctx)
	if err != nil {
		return types.StatusUnknown, v.unavailable("account balance", cmd.Symbol, err)
	}

	if ceiling > cash {
		return types.StatusCantAfford, nil
	}

	return types.StatusOK, nil
}

func (v *Validator) validateTradeSell(ctx context.Context, cmd types.TradeCommand, voters []types.Voter) (types.OrderStatus, error) {
	positions, err := v.positions.Positions(ctx)
	if err != nil {
		return types.StatusUnknown, v.unavailable("positions", cmd.Symbol, err)
	}

	asset, held := positions[cmd.Symbol]
	if !held {
		return types.StatusNoShares, nil
	}

	cash, err := v.account.UncommittedCash(ctx)
	if err != nil {
		return types.StatusUnknown, v.unavailable("account balance", cmd.Symbol, err)
	}

	liable, err := v.votersAreLiable(ctx, cmd.Symbol, voters)
	if err != nil {
		return types.StatusUnknown, err
	}

	votersPower, err := v.votersBuyingPower(ctx, voters)
	if err != nil {
		return types.StatusUnknown, err
	}

	// Selling is blocked while the requesting voters could instead have
	// bought with unused influence capacity.
	if !liable && votersPower < cash {
		return types.StatusExcessCashAvailable, nil
	}

	pendingOrders, err := v.pending.PendingOrders(ctx, v.startOfToday())
	if err != nil {
		return types.StatusUnknown, v.unavailable("pending orders", cmd.Symbol, err)
	}

	pendingSaleShares := 0
	for _, order := range pendingOrders {
		if strings.EqualFold(order.Symbol, cmd.Symbol) && strings.EqualFold(order.Side, types.OrderSideSell) {
			pendingSaleShares += int(order.Quantity)
		}
	}

	claimed, err := v.playerOrders.ClaimedBuyOrders(ctx, cmd.Symbol)
	if err != nil {
		return types.StatusUnknown, v.unavailable("player orders", cmd.Symbol, err)
	}

	playerClaimedShares := 0
	for _, order := range claimed {
		playerClaimedShares += int(order.Quantity)
	}

	v.logger.Debug("sell-share-accounting",
		zap.String("symbol", cmd.Symbol),
		zap.Int("total-shares", asset.Shares),
		zap.Int("player-claimed", playerClaimedShares),
		zap.Int("pending-sales", pendingSaleShares))

	if asset.Shares-playerClaimedShares-pendingSaleShares <= 0 {
		return types.StatusNoShares, nil
	}

	return types.StatusOK, nil
}

// ValidateWalletCommand decides whether a player's proposed wallet action is
// currently legal.
func (v *Validator) ValidateWalletCommand(ctx context.Context, playerID string, cmd types.WalletCommand) (types.OrderStatus, error) {
	status, err := v.validateWalletCommand(ctx, playerID, cmd)
	walletValidationsTotal.WithLabelValues(string(cmd.Action), string(status)).Inc()
	return status, err
}

func (v *Validator) validateWalletCommand(ctx context.Context, playerID string, cmd types.WalletCommand) (types.OrderStatus, error) {
	switch cmd.Action {
	case types.WalletBuy:
		return v.validateWalletBuy(ctx, playerID, cmd)
	case types.WalletSell:
		return v.validateWalletSell(ctx, playerID, cmd)
	case types.WalletSend:
		return v.validateWalletSend(ctx, playerID, cmd)
	default:
		v.logger.Warn("unhandled-wallet-action", zap.String("command", cmd.Label()))
		return types.StatusOK, nil
	}
}

func (v *Validator) validateWalletBuy(ctx context.Context, playerID string, cmd types.WalletCommand) (types.OrderStatus, error) {
	quote, err := v.quoteSource.Quote(ctx, cmd.Symbol)
	if err != nil {
		return types.StatusUnknown, v.unavailable("quote", cmd.Symbol, err)
	}

	instrument, _, err := v.instruments.Instrument(ctx, cmd.Symbol)
	if err != nil {
		return types.StatusUnknown, v.unavailable("instrument", cmd.Symbol, err)
	}

	purchaseTotal := cmd.Limit * float64(cmd.Quantity)

	balance, err := v.spendingBalance(ctx, playerID)
	if err != nil {
		return types.StatusUnknown, err
	}

	if purchaseTotal > balance {
		return types.StatusBalanceTooLow, nil
	}

	cash, err := v.account.UncommittedCash(ctx)
	if err != nil {
		return types.StatusUnknown, v.unavailable("account balance", cmd.Symbol, err)
	}

	if purchaseTotal > cash {
		return types.StatusCantAfford, nil
	}

	price := quotes.MostRecentPrice(quote)
	ceiling := price + price*walletBuyCeilingPct
	floor := price - price*walletBuyFloorPct

	if cmd.Limit > ceiling || cmd.Limit < floor {
		return types.StatusBadLimit, nil
	}

	// Buy limits are converted to cents by rounding to the nearest cent.
	if !tickAligned(roundToCents(cmd.Limit), instrument.MinTickSize) {
		return types.StatusBadTickSize, nil
	}

	return types.StatusOK, nil
}

func (v *Validator) validateWalletSell(ctx context.Context, playerID string, cmd types.WalletCommand) (types.OrderStatus, error) {
	quote, err := v.quoteSource.Quote(ctx, cmd.Symbol)
	if err != nil {
		return types.StatusUnknown, v.unavailable("quote", cmd.Symbol, err)
	}

	instrument, _, err := v.instruments.Instrument(ctx, cmd.Symbol)
	if err != nil {
		return types.StatusUnknown, v.unavailable("instrument", cmd.Symbol, err)
	}

	price := quotes.MostRecentPrice(quote)
	floor := price - price*walletSellFloorPct

	if cmd.Limit < floor {
		return types.StatusBadLimit, nil
	}

	// Sell limits are converted to cents by truncation, unlike buys. The
	// asymmetry matches the system owner's historical behavior.
	if !tickAligned(truncateToCents(cmd.Limit), instrument.MinTickSize) {
		return types.StatusBadTickSize, nil
	}

	positions, err := v.positions.Positions(ctx)
	if err != nil {
		return types.StatusUnknown, v.unavailable("positions", cmd.Symbol, err)
	}

	_, held := positions[cmd.Symbol]
	if !held {
		return types.StatusNoShares, nil
	}

	claimed, err := v.playerOrders.PlayerClaimedBuyOrders(ctx, playerID, cmd.Symbol)
	if err != nil {
		return types.StatusUnknown, v.unavailable("player orders", cmd.Symbol, err)
	}

	if len(claimed) < cmd.Quantity {
		return types.StatusNoShares, nil
	}

	return types.StatusOK, nil
}

func (v *Validator) validateWalletSend(ctx context.Context, playerID string, cmd types.WalletCommand) (types.OrderStatus, error) {
	amount := cmd.Limit

	if amount < 0 {
		return types.StatusInvalidCommand, nil
	}

	if strings.EqualFold(playerID, cmd.Symbol) {
		return types.StatusInvalidCommand, nil
	}

	balance, err := v.spendingBalance(ctx, playerID)
	if err != nil {
		return types.StatusUnknown, err
	}

	if amount > balance {
		return types.StatusBalanceTooLow, nil
	}

	return types.StatusOK, nil
}

func (v *Validator) spendingBalance(ctx context.Context, playerID string) (float64, error) {
	wallet, ok, err := v.wallets.Wallet(ctx, playerID)
	if err != nil {
		return 0, v.unavailable("wallet", playerID, err)
	}
	if !ok {
		wallet = types.Wallet{PlayerID: playerID}
	}

	openOrders, err := v.playerOrders.OpenBuyOrders(ctx, playerID)
	if err != nil {
		return 0, v.unavailable("open orders", playerID, err)
	}

	return v.ledger.SpendingBalance(wallet, openOrders), nil
}

func (v *Validator) votersAreLiable(ctx context.Context, symbol string, voters []types.Voter) (bool, error) {
	liable, err := v.positions.LiablePlayers(ctx, symbol)
	if err != nil {
		return false, v.unavailable("liable players", symbol, err)
	}

	liableSet := make(map[string]bool, len(liable))
	for _, playerID := range liable {
		liableSet[playerID] = true
	}

	for _, voter := range voters {
		if liableSet[voter.PlayerID()] {
			return true, nil
		}
	}
	return false, nil
}

func (v *Validator) votersBuyingPower(ctx context.Context, voters []types.Voter) (float64, error) {
	playerIDs := make([]string, 0, len(voters))
	seen := make(map[string]bool, len(voters))
	for _, voter := range voters {
		id := voter.PlayerID()
		if !seen[id] {
			seen[id] = true
			playerIDs = append(playerIDs, id)
		}
	}

	wallets, err := v.wallets.Wallets(ctx, playerIDs)
	if err != nil {
		return 0, v.unavailable("wallets", "", err)
	}

	known := make([]types.Wallet, 0, len(wallets))
	for _, wallet := range wallets {
		known = append(known, wallet)
	}

	return v.ledger.VotersBuyingPower(known, len(playerIDs)-len(known)), nil
}

func (v *Validator) startOfToday() time.Time {
	now := v.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (v *Validator) unavailable(what, subject string, err error) error {
	v.logger.Warn("snapshot-unavailable",
		zap.String("what", what),
		zap.String("subject", subject),
		zap.Error(err))
	return fmt.Errorf("%s for %q: %w: %w", what, subject, ErrDataUnavailable, err)
}
