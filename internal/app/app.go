package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/crowdstream/crowdstream/internal/election"
	"github.com/crowdstream/crowdstream/internal/preprocessor"
	"github.com/crowdstream/crowdstream/internal/scheduler"
	"github.com/crowdstream/crowdstream/internal/votestore"
	"github.com/crowdstream/crowdstream/pkg/cache"
	"github.com/crowdstream/crowdstream/pkg/config"
	"github.com/crowdstream/crowdstream/pkg/healthprobe"
	"github.com/crowdstream/crowdstream/pkg/httpserver"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	snapshotCache cache.Cache
	voteStore     votestore.Store
	validator     *preprocessor.Validator
	registry      *election.Registry
	scheduler     *scheduler.Scheduler
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}
