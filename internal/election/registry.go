package election

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/crowdstream/crowdstream/pkg/types"
)

// Handle is the non-generic view of an election used by transports and the
// scheduler.
type Handle interface {
	Topic() string
	Rank() int
	ElectionID() string
	Expiration() time.Time
	SetExpiration(t time.Time)
	ReceiveVote(ctx context.Context, message string, voter types.Voter) (string, error)
	ExecuteOutcome(ctx context.Context) error
	Tally(ctx context.Context) ([]LabelCount, error)
}

// Registry indexes the open elections by topic.
type Registry struct {
	mu      sync.RWMutex
	byTopic map[string]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byTopic: make(map[string]Handle)}
}

// Register adds an election. A later registration for the same topic
// replaces the earlier one.
func (r *Registry) Register(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTopic[h.Topic()] = h
}

// Lookup returns the election for a topic.
func (r *Registry) Lookup(topic string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byTopic[topic]
	return h, ok
}

// All returns the registered elections ordered by rank.
func (r *Registry) All() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := make([]Handle, 0, len(r.byTopic))
	for _, h := range r.byTopic {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i].Rank() < handles[j].Rank() })
	return handles
}
