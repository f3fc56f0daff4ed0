package httpserver

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/crowdstream/crowdstream/internal/preprocessor"
	"github.com/crowdstream/crowdstream/pkg/types"
)

// OrderHandler handles order validation requests.
type OrderHandler struct {
	validator *preprocessor.Validator
	logger    *zap.Logger
}

// NewOrderHandler creates a new order validation handler.
func NewOrderHandler(validator *preprocessor.Validator, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		validator: validator,
		logger:    logger,
	}
}

// TradeValidationRequest represents a crowd trade to validate.
type TradeValidationRequest struct {
	Action string       `json:"action"`
	Symbol string       `json:"symbol"`
	Voters []VoterEntry `json:"voters,omitempty"`
}

// VoterEntry identifies one voter backing a trade.
type VoterEntry struct {
	Username string `json:"username"`
	Platform string `json:"platform"`
}

// WalletValidationRequest represents a personal wallet order to validate.
type WalletValidationRequest struct {
	PlayerID string  `json:"player_id"`
	Action   string  `json:"action"`
	Quantity int     `json:"quantity,omitempty"`
	Symbol   string  `json:"symbol"`
	Limit    float64 `json:"limit,omitempty"`
}

// ValidationResponse carries the resulting order status.
type ValidationResponse struct {
	Status types.OrderStatus `json:"status"`
}

// HandleValidateTrade handles POST /api/validate/trade requests.
func (h *OrderHandler) HandleValidateTrade(w http.ResponseWriter, r *http.Request) {
	var req TradeValidationRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}

	cmd := types.TradeCommand{
		Action: types.TradeAction(req.Action),
		Symbol: req.Symbol,
	}
	if !cmd.Valid() {
		writeError(w, h.logger, "invalid trade command", http.StatusBadRequest)
		return
	}

	voters := make([]types.Voter, 0, len(req.Voters))
	for _, v := range req.Voters {
		voters = append(voters, types.Voter{Username: v.Username, Platform: v.Platform})
	}

	status, err := h.validator.ValidateTradeCommand(r.Context(), cmd, voters)
	h.writeValidation(w, status, err)
}

// HandleValidateWallet handles POST /api/validate/wallet requests.
func (h *OrderHandler) HandleValidateWallet(w http.ResponseWriter, r *http.Request) {
	var req WalletValidationRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.PlayerID == "" {
		writeError(w, h.logger, "player_id is required", http.StatusBadRequest)
		return
	}

	cmd := types.WalletCommand{
		Action:   types.WalletAction(req.Action),
		Quantity: req.Quantity,
		Symbol:   req.Symbol,
		Limit:    req.Limit,
	}

	status, err := h.validator.ValidateWalletCommand(r.Context(), req.PlayerID, cmd)
	h.writeValidation(w, status, err)
}

// writeValidation maps a validation result to an HTTP response. A broker data
// failure is a 503 so callers can retry rather than treat the order as rejected.
func (h *OrderHandler) writeValidation(w http.ResponseWriter, status types.OrderStatus, err error) {
	if err != nil {
		if errors.Is(err, preprocessor.ErrDataUnavailable) {
			writeError(w, h.logger, "broker data unavailable", http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("validation-failed", zap.Error(err))
		writeError(w, h.logger, "validation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	encErr := json.NewEncoder(w).Encode(ValidationResponse{Status: status})
	if encErr != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(encErr))
	}
}
