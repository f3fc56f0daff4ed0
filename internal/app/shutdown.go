package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop taking votes before the last tally can run.
	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	a.scheduler.Stop()

	err = a.voteStore.Close()
	if err != nil {
		a.logger.Error("vote-store-close-error", zap.Error(err))
	}

	a.snapshotCache.Close()

	a.wg.Wait()

	a.logger.Info("application-shutdown-complete")

	return nil
}
