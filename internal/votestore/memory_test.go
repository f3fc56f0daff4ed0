package votestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crowdstream/crowdstream/pkg/types"
)

func TestMemoryStoreUpsert(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	voter := types.Voter{Username: "mike", Platform: "twitch"}

	first, err := NewVoteRecord("trade:1000", voter, types.TradeCommand{Action: types.TradeBuy, Symbol: "AMZN"})
	require.NoError(t, err)
	require.NoError(t, store.SaveVote(ctx, first))

	second, err := NewVoteRecord("trade:1000", voter, types.TradeCommand{Action: types.TradeSell, Symbol: "AMZN"})
	require.NoError(t, err)
	require.NoError(t, store.SaveVote(ctx, second))

	records, err := store.ElectionVotes(ctx, "trade:1000")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, second.Candidate, records[0].Candidate)
}

func TestMemoryStoreScopesVotesByElection(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	voter := types.Voter{Username: "mike", Platform: "twitch"}

	rec, err := NewVoteRecord("trade:1000", voter, types.TradeCommand{Action: types.TradeBuy, Symbol: "AMZN"})
	require.NoError(t, err)
	require.NoError(t, store.SaveVote(ctx, rec))

	records, err := store.ElectionVotes(ctx, "trade:2000")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemoryStoreOutcomes(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	rec := NewOutcomeRecord("trade", "trade:1000", "BUY AMZN", 3)
	require.NoError(t, store.SaveOutcome(ctx, rec))

	outcomes := store.Outcomes()
	require.Len(t, outcomes, 1)
	assert.Equal(t, "BUY AMZN", outcomes[0].WinnerLabel)
	assert.Equal(t, 3, outcomes[0].Votes)
	assert.NotEmpty(t, outcomes[0].ID)
}

func TestNewVoteRecordKeyedByPlayer(t *testing.T) {
	voter := types.Voter{Username: "mike", Platform: "twitch", Channel: "streamA"}

	rec, err := NewVoteRecord("trade:1000", voter, types.TradeCommand{Action: types.TradeBuy, Symbol: "AMZN"})
	require.NoError(t, err)

	assert.Equal(t, "trade:1000:twitch:mike", rec.VoteID)
	assert.Equal(t, "twitch:mike", rec.PlayerID)

	// The channel is an attribute, not identity: the same player in another
	// channel produces the same vote id.
	voter.Channel = "streamB"
	other, err := NewVoteRecord("trade:1000", voter, types.TradeCommand{Action: types.TradeBuy, Symbol: "AMZN"})
	require.NoError(t, err)
	assert.Equal(t, rec.VoteID, other.VoteID)
}
