package httpserver

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/crowdstream/crowdstream/internal/election"
	"github.com/crowdstream/crowdstream/pkg/types"
)

// VoteHandler handles vote ingestion and election tally requests.
type VoteHandler struct {
	registry *election.Registry
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewVoteHandler creates a new vote handler.
func NewVoteHandler(registry *election.Registry, limiter *rate.Limiter, logger *zap.Logger) *VoteHandler {
	return &VoteHandler{
		registry: registry,
		limiter:  limiter,
		logger:   logger,
	}
}

// VoteRequest represents a single chat message cast as a vote.
type VoteRequest struct {
	Topic      string `json:"topic"`
	Message    string `json:"message"`
	Username   string `json:"username"`
	Platform   string `json:"platform"`
	Channel    string `json:"channel,omitempty"`
	Subscriber bool   `json:"subscriber,omitempty"`
}

// VoteResponse represents the outcome of casting a vote. Reply carries the
// veto message when the vote was rejected by a preprocessor.
type VoteResponse struct {
	Accepted bool   `json:"accepted"`
	Reply    string `json:"reply,omitempty"`
}

// ElectionSummary represents one open election and its current tally.
type ElectionSummary struct {
	Topic      string               `json:"topic"`
	ElectionID string               `json:"election_id"`
	Expiration time.Time            `json:"expiration"`
	Tally      []election.LabelCount `json:"tally"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleVote handles POST /api/vote requests.
func (h *VoteHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow() {
		votesThrottledTotal.Inc()
		writeError(w, h.logger, "vote rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	var req VoteRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Topic == "" || req.Username == "" || req.Platform == "" {
		writeError(w, h.logger, "topic, username and platform are required", http.StatusBadRequest)
		return
	}

	handle, ok := h.registry.Lookup(req.Topic)
	if !ok {
		writeError(w, h.logger, "no open election for topic", http.StatusNotFound)
		return
	}

	voter := types.Voter{
		Username:   req.Username,
		Platform:   req.Platform,
		Channel:    req.Channel,
		Subscriber: req.Subscriber,
	}

	reply, err := handle.ReceiveVote(r.Context(), req.Message, voter)
	if err != nil {
		h.logger.Error("vote-ingest-failed",
			zap.String("topic", req.Topic),
			zap.String("player-id", voter.PlayerID()),
			zap.Error(err))
		writeError(w, h.logger, "failed to record vote", http.StatusInternalServerError)
		return
	}

	resp := VoteResponse{
		Accepted: reply == "",
		Reply:    reply,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(resp)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// HandleElections handles GET /api/elections requests.
func (h *VoteHandler) HandleElections(w http.ResponseWriter, r *http.Request) {
	handles := h.registry.All()
	summaries := make([]ElectionSummary, 0, len(handles))

	for _, handle := range handles {
		tally, err := handle.Tally(r.Context())
		if err != nil {
			h.logger.Error("tally-read-failed",
				zap.String("topic", handle.Topic()),
				zap.Error(err))
			writeError(w, h.logger, "failed to read tally", http.StatusInternalServerError)
			return
		}

		summaries = append(summaries, ElectionSummary{
			Topic:      handle.Topic(),
			ElectionID: handle.ElectionID(),
			Expiration: handle.Expiration(),
			Tally:      tally,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(summaries)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, logger *zap.Logger, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(ErrorResponse{Error: message})
	if err != nil {
		logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
