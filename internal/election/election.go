package election

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/crowdstream/crowdstream/internal/votestore"
	"github.com/crowdstream/crowdstream/pkg/types"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Store is the durable vote store the election tallies from. The store is
// authoritative: the in-memory per-round state is only an advisory rate
// limiter.
type Store interface {
	SaveVote(ctx context.Context, rec votestore.VoteRecord) error
	ElectionVotes(ctx context.Context, electionID string) ([]votestore.VoteRecord, error)
	SaveOutcome(ctx context.Context, rec votestore.OutcomeRecord) error
}

// Parser turns a raw chat token into zero or one candidate.
type Parser[T Candidate] func(message string) (T, bool)

// Preprocessor inspects a candidate before its first vote is accepted in a
// round. A non-empty return value vetoes the vote and is relayed to the voter.
type Preprocessor[T Candidate] func(ctx context.Context, candidate T, voter types.Voter) string

// InstantExecutor runs a candidate the moment it is voted for, bypassing
// persistence and tally entirely.
type InstantExecutor[T Candidate] func(ctx context.Context, candidate T, voter types.Voter)

// OutcomeFunc runs when a specific candidate wins the election.
type OutcomeFunc func(ctx context.Context) error

// Election collects votes for one topic and round, gates them by
// eligibility rules, and dispatches the winning candidate's action when told
// to close. Votes are persisted per (election id, player id) with
// last-write-wins semantics; the tally always reads back from the store.
//
// ExecuteOutcome provides no mutual exclusion against itself: the caller must
// guarantee at most one concurrent tally per election id.
type Election[T Candidate] struct {
	topic string
	rank  int

	store  Store
	logger *zap.Logger

	// rngMu guards rng: a rand.Rand is not safe for concurrent use, and the
	// tie shuffle runs from both HTTP tally reads and the scheduler's close.
	rngMu sync.Mutex
	rng   *rand.Rand

	parser          Parser[T]
	preprocessor    Preprocessor[T]
	instantExecutor InstantExecutor[T]
	winnerCallback  func(candidate T)

	subscribersOnly bool
	maxCandidates   int
	eligible        map[string]bool

	mu         sync.Mutex
	expiration time.Time
	outcomes   map[string]outcome[T]

	// accepted tracks candidates already preprocessed this round. It exists
	// to avoid re-preprocessing and to enforce maxCandidates; it is cleared
	// when an outcome executes and is lost on process restart, so the cap is
	// re-counted from zero after a restart.
	accepted map[string]bool
}

type outcome[T Candidate] struct {
	candidate T
	run       OutcomeFunc
}

// New creates an election for a topic. Configure it with the With* methods
// before opening it to votes.
func New[T Candidate](topic string, rank int, store Store, logger *zap.Logger) *Election[T] {
	return &Election[T]{
		topic:    topic,
		rank:     rank,
		store:    store,
		logger:   logger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		outcomes: make(map[string]outcome[T]),
		accepted: make(map[string]bool),
	}
}

// Topic returns the election topic.
func (e *Election[T]) Topic() string { return e.topic }

// Rank returns the election's display rank.
func (e *Election[T]) Rank() int { return e.rank }

// ElectionID identifies one round: topic plus expiration timestamp.
func (e *Election[T]) ElectionID() string {
	return fmt.Sprintf("%s:%d", e.topic, e.Expiration().UnixMilli())
}

// Expiration returns the end of the current round.
func (e *Election[T]) Expiration() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expiration
}

// SetExpiration moves the election to a new round ending at t. Changing the
// expiration changes the election id, so votes for the previous round no
// longer count.
func (e *Election[T]) SetExpiration(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expiration = t
}

// WithExpiration sets the end of the current round.
func (e *Election[T]) WithExpiration(t time.Time) *Election[T] {
	e.SetExpiration(t)
	return e
}

// WithEligibleVoters restricts voting to the given voters. An empty set means
// everyone is eligible.
func (e *Election[T]) WithEligibleVoters(voters []types.Voter) *Election[T] {
	eligible := make(map[string]bool, len(voters))
	for _, v := range voters {
		eligible[v.PlayerID()] = true
	}
	e.eligible = eligible
	return e
}

// WithSubscribersOnly restricts voting to subscribers.
func (e *Election[T]) WithSubscribersOnly(subscribersOnly bool) *Election[T] {
	e.subscribersOnly = subscribersOnly
	return e
}

// WithMaxCandidates caps the number of distinct candidates accepted per
// round. Values <= 0 mean unbounded.
func (e *Election[T]) WithMaxCandidates(max int) *Election[T] {
	e.maxCandidates = max
	return e
}

// WithMessageParser sets the parser that maps chat tokens to candidates.
func (e *Election[T]) WithMessageParser(parser Parser[T]) *Election[T] {
	e.parser = parser
	return e
}

// WithPreprocessor sets the candidate preprocessor.
func (e *Election[T]) WithPreprocessor(pre Preprocessor[T]) *Election[T] {
	e.preprocessor = pre
	return e
}

// WithInstantExecutor makes every accepted vote execute immediately. No vote
// is persisted and no tally ever happens while an instant executor is set.
func (e *Election[T]) WithInstantExecutor(exec InstantExecutor[T]) *Election[T] {
	e.instantExecutor = exec
	return e
}

// WithOutcome registers the action to run if candidate wins.
func (e *Election[T]) WithOutcome(candidate T, run OutcomeFunc) *Election[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outcomes[candidate.Key()] = outcome[T]{candidate: candidate, run: run}
	return e
}

// WithWinnerCallback registers a callback invoked with the winner after every
// decided round.
func (e *Election[T]) WithWinnerCallback(cb func(candidate T)) *Election[T] {
	e.winnerCallback = cb
	return e
}

// WithRand overrides the tie-break randomness source.
func (e *Election[T]) WithRand(rng *rand.Rand) *Election[T] {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	e.rng = rng
	return e
}

// rankTally orders a tally under the rng lock.
func (e *Election[T]) rankTally(tally []Ranked[T]) []Ranked[T] {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return Rank(tally, e.rng)
}

// ReceiveVote processes one raw vote. The returned message, when non-empty,
// is a preprocessor veto to relay back to the voter. Ineligible, unparseable
// and over-cap votes are dropped silently.
func (e *Election[T]) ReceiveVote(ctx context.Context, message string, voter types.Voter) (string, error) {
	if len(e.eligible) > 0 && !e.eligible[voter.PlayerID()] {
		votesReceivedTotal.WithLabelValues(e.topic, voteDropped).Inc()
		return "", nil
	}

	if e.subscribersOnly && !voter.Subscriber {
		votesReceivedTotal.WithLabelValues(e.topic, voteDropped).Inc()
		return "", nil
	}

	if e.maxCandidates > 0 && e.acceptedCount() >= e.maxCandidates {
		votesReceivedTotal.WithLabelValues(e.topic, voteDropped).Inc()
		return "", nil
	}

	if e.parser == nil {
		votesReceivedTotal.WithLabelValues(e.topic, voteDropped).Inc()
		return "", nil
	}

	candidate, ok := e.parser(message)
	if !ok {
		votesReceivedTotal.WithLabelValues(e.topic, voteDropped).Inc()
		return "", nil
	}

	if e.preprocessor != nil && !e.isAccepted(candidate.Key()) {
		veto := e.preprocessor(ctx, candidate, voter)
		if veto != "" {
			votesReceivedTotal.WithLabelValues(e.topic, voteVetoed).Inc()
			return veto, nil
		}
	}

	if e.instantExecutor != nil {
		e.instantExecutor(ctx, candidate, voter)
		votesReceivedTotal.WithLabelValues(e.topic, voteInstant).Inc()
		return "", nil
	}

	rec, err := votestore.NewVoteRecord(e.ElectionID(), voter, candidate)
	if err != nil {
		return "", fmt.Errorf("encode vote: %w", err)
	}

	err = e.store.SaveVote(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("persist vote: %w", err)
	}

	e.markAccepted(candidate.Key())
	votesReceivedTotal.WithLabelValues(e.topic, voteAccepted).Inc()

	return "", nil
}

// ExecuteOutcome tallies the current round and fires the winning candidate's
// registered action. A round with no votes is a no-op. A failing or panicking
// action is logged and never prevents the per-round state from clearing.
func (e *Election[T]) ExecuteOutcome(ctx context.Context) error {
	tally, err := e.candidateTally(ctx)
	if err != nil {
		return err
	}

	if len(tally) == 0 {
		return nil
	}

	ranked := e.rankTally(tally)
	winner := ranked[0]

	e.logger.Info("election-outcome-decided",
		zap.String("topic", e.topic),
		zap.String("election-id", e.ElectionID()),
		zap.String("winner", winner.Candidate.Label()),
		zap.Int("votes", winner.Votes),
		zap.Int("candidates", len(ranked)))

	e.runOutcome(ctx, winner.Candidate)
	e.clearRound()

	electionsDecidedTotal.WithLabelValues(e.topic).Inc()

	rec := votestore.NewOutcomeRecord(e.topic, e.ElectionID(), winner.Candidate.Label(), winner.Votes)
	err = e.store.SaveOutcome(ctx, rec)
	if err != nil {
		e.logger.Warn("election-outcome-archive-failed",
			zap.String("election-id", e.ElectionID()),
			zap.Error(err))
	}

	if e.winnerCallback != nil {
		e.winnerCallback(winner.Candidate)
	}

	return nil
}

// Tally returns the current ranked vote counts for display.
func (e *Election[T]) Tally(ctx context.Context) ([]LabelCount, error) {
	tally, err := e.candidateTally(ctx)
	if err != nil {
		return nil, err
	}

	ranked := e.rankTally(tally)
	counts := make([]LabelCount, len(ranked))
	for i, r := range ranked {
		counts[i] = LabelCount{Label: r.Candidate.Label(), Votes: r.Votes}
	}
	return counts, nil
}

func (e *Election[T]) candidateTally(ctx context.Context) ([]Ranked[T], error) {
	records, err := e.store.ElectionVotes(ctx, e.ElectionID())
	if err != nil {
		return nil, fmt.Errorf("load votes: %w", err)
	}

	candidates := make(map[string]T)
	voters := make(map[string]map[string]bool)

	for _, rec := range records {
		var candidate T
		err := json.Unmarshal(rec.Candidate, &candidate)
		if err != nil {
			e.logger.Warn("vote-candidate-unreadable",
				zap.String("vote-id", rec.VoteID),
				zap.Error(err))
			continue
		}

		key := candidate.Key()
		candidates[key] = candidate
		if voters[key] == nil {
			voters[key] = make(map[string]bool)
		}
		voters[key][rec.PlayerID] = true
	}

	tally := make([]Ranked[T], 0, len(candidates))
	for key, candidate := range candidates {
		tally = append(tally, Ranked[T]{Candidate: candidate, Votes: len(voters[key])})
	}
	return tally, nil
}

func (e *Election[T]) runOutcome(ctx context.Context, winner T) {
	e.mu.Lock()
	out, ok := e.outcomes[winner.Key()]
	e.mu.Unlock()

	if !ok || out.run == nil {
		return
	}

	defer func() {
		r := recover()
		if r != nil {
			outcomeFailuresTotal.WithLabelValues(e.topic).Inc()
			e.logger.Error("election-outcome-panic",
				zap.String("topic", e.topic),
				zap.String("winner", winner.Label()),
				zap.Any("panic", r))
		}
	}()

	err := out.run(ctx)
	if err != nil {
		outcomeFailuresTotal.WithLabelValues(e.topic).Inc()
		e.logger.Warn("election-outcome-failed",
			zap.String("topic", e.topic),
			zap.String("winner", winner.Label()),
			zap.Error(err))
	}
}

func (e *Election[T]) acceptedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.accepted)
}

func (e *Election[T]) isAccepted(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.accepted[key]
}

func (e *Election[T]) markAccepted(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.accepted[key] = true
}

func (e *Election[T]) clearRound() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.accepted = make(map[string]bool)
}
