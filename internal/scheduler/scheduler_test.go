package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crowdstream/crowdstream/internal/election"
	"github.com/crowdstream/crowdstream/pkg/types"
)

type fakeHandle struct {
	mu         sync.Mutex
	topic      string
	expiration time.Time
	tallies    int
	tallyErr   error
}

func (f *fakeHandle) Topic() string      { return f.topic }
func (f *fakeHandle) Rank() int          { return 0 }
func (f *fakeHandle) ElectionID() string { return f.topic + ":test" }

func (f *fakeHandle) Expiration() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expiration
}

func (f *fakeHandle) SetExpiration(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expiration = t
}

func (f *fakeHandle) ReceiveVote(ctx context.Context, message string, voter types.Voter) (string, error) {
	return "", nil
}

func (f *fakeHandle) ExecuteOutcome(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tallies++
	return f.tallyErr
}

func (f *fakeHandle) Tally(ctx context.Context) ([]election.LabelCount, error) {
	return nil, nil
}

func (f *fakeHandle) tallyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tallies
}

func newTestScheduler(now func() time.Time) *Scheduler {
	return New(&Config{
		CheckInterval: time.Hour,
		Logger:        zap.NewNop(),
		Now:           now,
	})
}

func TestAddElectionOpensFirstRound(t *testing.T) {
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(func() time.Time { return base })

	h := &fakeHandle{topic: "trade"}
	s.AddElection(h, 2*time.Minute)

	assert.Equal(t, base.Add(2*time.Minute), h.Expiration())
}

func TestCheckExpirationsSkipsOpenRounds(t *testing.T) {
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(func() time.Time { return base })

	h := &fakeHandle{topic: "trade"}
	s.AddElection(h, 2*time.Minute)

	s.checkExpirations(context.Background())
	assert.Equal(t, 0, h.tallyCount())
}

func TestCheckExpirationsClosesAndReopens(t *testing.T) {
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	now := base
	s := newTestScheduler(func() time.Time { return now })

	h := &fakeHandle{topic: "trade"}
	s.AddElection(h, 2*time.Minute)

	now = base.Add(3 * time.Minute)
	s.checkExpirations(context.Background())

	require.Equal(t, 1, h.tallyCount())
	assert.Equal(t, now.Add(2*time.Minute), h.Expiration())

	// The freshly opened round must not be tallied again.
	s.checkExpirations(context.Background())
	assert.Equal(t, 1, h.tallyCount())
}

func TestCheckExpirationsReopensAfterFailedTally(t *testing.T) {
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	now := base
	s := newTestScheduler(func() time.Time { return now })

	h := &fakeHandle{topic: "trade", tallyErr: errors.New("store down")}
	s.AddElection(h, 2*time.Minute)

	now = base.Add(3 * time.Minute)
	s.checkExpirations(context.Background())

	require.Equal(t, 1, h.tallyCount())
	assert.Equal(t, now.Add(2*time.Minute), h.Expiration())
}

func TestCheckExpirationsHandlesEveryElection(t *testing.T) {
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	now := base
	s := newTestScheduler(func() time.Time { return now })

	trade := &fakeHandle{topic: "trade"}
	wallet := &fakeHandle{topic: "wallet"}
	s.AddElection(trade, 2*time.Minute)
	s.AddElection(wallet, 5*time.Minute)

	now = base.Add(3 * time.Minute)
	s.checkExpirations(context.Background())

	assert.Equal(t, 1, trade.tallyCount())
	assert.Equal(t, 0, wallet.tallyCount())
}
