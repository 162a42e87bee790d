package jobs

import (
	"fmt"
	"log/slog"

	"packorder/internal/core/application/usecases/commands"
	"packorder/internal/core/application/usecases/queries"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	edgeCaseSweepJob *EdgeCaseSweepJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes handlers as dependencies to wire up the job execution.
func NewJobManager(
	activeOrdersHandler queries.GetActiveOrdersQueryHandler,
	recoveryHandler *commands.RunRecoveryCommandHandler,
	sweepSchedule string,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		edgeCaseSweepJob: NewEdgeCaseSweepJob(activeOrdersHandler, recoveryHandler, sweepSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.edgeCaseSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start edge case sweep job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.edgeCaseSweepJob.Stop()
}
