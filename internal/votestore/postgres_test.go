package votestore

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crowdstream/crowdstream/pkg/types"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &PostgresStore{db: db, logger: zap.NewNop()}, mock
}

func TestPostgresSaveVoteUpserts(t *testing.T) {
	store, mock := newMockStore(t)

	voter := types.Voter{Username: "mike", Platform: "twitch"}
	rec, err := NewVoteRecord("trade:1000", voter, types.TradeCommand{Action: types.TradeBuy, Symbol: "AMZN"})
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO election_votes").
		WithArgs(rec.VoteID, rec.ElectionID, rec.PlayerID, rec.Candidate, rec.Voter, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.SaveVote(context.Background(), rec)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresElectionVotes(t *testing.T) {
	store, mock := newMockStore(t)

	castAt := time.Now()
	rows := sqlmock.NewRows([]string{"vote_id", "election_id", "player_id", "candidate", "voter", "cast_at"}).
		AddRow("trade:1000:twitch:mike", "trade:1000", "twitch:mike",
			[]byte(`{"action":"BUY","symbol":"AMZN"}`), []byte(`{"username":"mike"}`), castAt)

	mock.ExpectQuery("SELECT vote_id, election_id, player_id, candidate, voter, cast_at").
		WithArgs("trade:1000").
		WillReturnRows(rows)

	records, err := store.ElectionVotes(context.Background(), "trade:1000")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "twitch:mike", records[0].PlayerID)
	assert.JSONEq(t, `{"action":"BUY","symbol":"AMZN"}`, string(records[0].Candidate))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveOutcome(t *testing.T) {
	store, mock := newMockStore(t)

	rec := NewOutcomeRecord("trade", "trade:1000", "BUY AMZN", 3)

	mock.ExpectExec("INSERT INTO election_outcomes").
		WithArgs(rec.ID, rec.Topic, rec.ElectionID, rec.WinnerLabel, rec.Votes, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.SaveOutcome(context.Background(), rec)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveVoteError(t *testing.T) {
	store, mock := newMockStore(t)

	voter := types.Voter{Username: "mike", Platform: "twitch"}
	rec, err := NewVoteRecord("trade:1000", voter, types.TradeCommand{Action: types.TradeBuy, Symbol: "AMZN"})
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO election_votes").
		WillReturnError(assert.AnError)

	err = store.SaveVote(context.Background(), rec)
	assert.Error(t, err)
}
