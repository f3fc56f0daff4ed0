// Package votestore persists election votes and decided outcomes.
//
// Votes are keyed by (election id, player id): saving a vote for a pair that
// already has one overwrites it, so each voter has at most one live vote per
// election and the latest write wins.
package votestore

import (
	"context"
	"fmt"
	"time"

	"github.com/crowdstream/crowdstream/pkg/types"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// VoteRecord is one persisted vote. Candidate and Voter are JSON payloads so
// the store stays agnostic of candidate types.
type VoteRecord struct {
	VoteID     string
	ElectionID string
	PlayerID   string
	Candidate  []byte
	Voter      []byte
	CastAt     time.Time
}

// NewVoteRecord builds the record for a voter's vote in one election.
func NewVoteRecord(electionID string, voter types.Voter, candidate any) (VoteRecord, error) {
	candidatePayload, err := json.Marshal(candidate)
	if err != nil {
		return VoteRecord{}, fmt.Errorf("marshal candidate: %w", err)
	}

	voterPayload, err := json.Marshal(voter)
	if err != nil {
		return VoteRecord{}, fmt.Errorf("marshal voter: %w", err)
	}

	playerID := voter.PlayerID()
	return VoteRecord{
		VoteID:     electionID + ":" + playerID,
		ElectionID: electionID,
		PlayerID:   playerID,
		Candidate:  candidatePayload,
		Voter:      voterPayload,
		CastAt:     time.Now(),
	}, nil
}

// OutcomeRecord is the archived result of one decided election round.
type OutcomeRecord struct {
	ID          string
	Topic       string
	ElectionID  string
	WinnerLabel string
	Votes       int
	DecidedAt   time.Time
}

// NewOutcomeRecord builds the archive record for a decided round.
func NewOutcomeRecord(topic, electionID, winnerLabel string, votes int) OutcomeRecord {
	return OutcomeRecord{
		ID:          uuid.New().String(),
		Topic:       topic,
		ElectionID:  electionID,
		WinnerLabel: winnerLabel,
		Votes:       votes,
		DecidedAt:   time.Now(),
	}
}

// Store persists votes and outcomes.
type Store interface {
	// SaveVote upserts a vote: one live vote per (election, player).
	SaveVote(ctx context.Context, rec VoteRecord) error

	// ElectionVotes returns all live votes for one election id.
	ElectionVotes(ctx context.Context, electionID string) ([]VoteRecord, error)

	// SaveOutcome archives a decided round.
	SaveOutcome(ctx context.Context, rec OutcomeRecord) error

	// Close releases the underlying resources.
	Close() error
}
