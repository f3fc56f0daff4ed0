// Package scheduler closes election rounds on a cadence. It owns the
// at-most-one-concurrent-tally guarantee the election engine itself does not
// provide: each election is tallied under its own mutex, once per expired
// round, and then re-opened with a fresh expiration.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/crowdstream/crowdstream/internal/election"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler drives election rounds with a cron ticker.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	now    func() time.Time

	mu   sync.Mutex
	jobs []*job
}

type job struct {
	mu          sync.Mutex
	handle      election.Handle
	roundLength time.Duration
}

// Config holds scheduler configuration.
type Config struct {
	// CheckInterval is how often expirations are checked.
	CheckInterval time.Duration
	Logger        *zap.Logger
	Now           func() time.Time
}

// New creates a scheduler ticking at the configured interval.
func New(cfg *Config) *Scheduler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: cfg.Logger,
		now:    now,
	}

	interval := cfg.CheckInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		s.checkExpirations(context.Background())
	}))

	return s
}

// AddElection registers an election. Its first round ends one roundLength
// from now; each decided round re-opens the next.
func (s *Scheduler) AddElection(h election.Handle, roundLength time.Duration) {
	h.SetExpiration(s.now().Add(roundLength))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &job{handle: h, roundLength: roundLength})

	s.logger.Info("election-scheduled",
		zap.String("topic", h.Topic()),
		zap.Duration("round-length", roundLength))
}

// Start begins driving rounds.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler-started")
}

// Stop halts the ticker and waits for any running tally.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler-stopped")
}

// checkExpirations closes every election whose round has expired.
func (s *Scheduler) checkExpirations(ctx context.Context) {
	s.mu.Lock()
	jobs := make([]*job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, j := range jobs {
		s.closeIfExpired(ctx, j)
	}
}

func (s *Scheduler) closeIfExpired(ctx context.Context, j *job) {
	// One tally at a time per election id.
	j.mu.Lock()
	defer j.mu.Unlock()

	now := s.now()
	if now.Before(j.handle.Expiration()) {
		return
	}

	start := time.Now()
	err := j.handle.ExecuteOutcome(ctx)
	tallyDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		s.logger.Error("election-tally-failed",
			zap.String("topic", j.handle.Topic()),
			zap.String("election-id", j.handle.ElectionID()),
			zap.Error(err))
	}

	// Open the next round regardless: a failed tally must not wedge the
	// election.
	j.handle.SetExpiration(now.Add(j.roundLength))
	roundsOpenedTotal.WithLabelValues(j.handle.Topic()).Inc()
}
