package votestore

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MemoryStore implements Store in memory. Used for tests and for running
// without a database; votes do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	votes    map[string]map[string]VoteRecord // election id -> vote id -> record
	outcomes []OutcomeRecord
	logger   *zap.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		votes:  make(map[string]map[string]VoteRecord),
		logger: logger,
	}
}

// SaveVote upserts a vote record.
func (m *MemoryStore) SaveVote(ctx context.Context, rec VoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.votes[rec.ElectionID] == nil {
		m.votes[rec.ElectionID] = make(map[string]VoteRecord)
	}
	m.votes[rec.ElectionID][rec.VoteID] = rec

	votesPersistedTotal.Inc()
	return nil
}

// ElectionVotes returns all live votes for one election.
func (m *MemoryStore) ElectionVotes(ctx context.Context, electionID string) ([]VoteRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]VoteRecord, 0, len(m.votes[electionID]))
	for _, rec := range m.votes[electionID] {
		records = append(records, rec)
	}
	return records, nil
}

// SaveOutcome archives a decided round.
func (m *MemoryStore) SaveOutcome(ctx context.Context, rec OutcomeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.outcomes = append(m.outcomes, rec)
	outcomesPersistedTotal.Inc()
	return nil
}

// Outcomes returns the archived outcomes, oldest first.
func (m *MemoryStore) Outcomes() []OutcomeRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	outcomes := make([]OutcomeRecord, len(m.outcomes))
	copy(outcomes, m.outcomes)
	return outcomes
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
