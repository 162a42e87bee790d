package jobs

import (
	"context"
	"log/slog"

	"packorder/internal/core/application/usecases/commands"
	"packorder/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
)

// sweepActor identifies the scheduler in audit entries it produces.
const sweepActor = "system:sweep"

// EdgeCaseSweepJob periodically scans all non-terminal orders for lifecycle
// anomalies and repairs what can be repaired automatically. Unresolvable
// anomalies are logged at warn severity for operator follow-up.
type EdgeCaseSweepJob struct {
	activeOrdersHandler queries.GetActiveOrdersQueryHandler
	recoveryHandler     *commands.RunRecoveryCommandHandler
	schedule            string
	cron                *cron.Cron
	logger              *slog.Logger
}

// NewEdgeCaseSweepJob creates the sweep job. The schedule is a six-field cron
// expression with a seconds column.
func NewEdgeCaseSweepJob(
	activeOrdersHandler queries.GetActiveOrdersQueryHandler,
	recoveryHandler *commands.RunRecoveryCommandHandler,
	schedule string,
	logger *slog.Logger,
) *EdgeCaseSweepJob {
	return &EdgeCaseSweepJob{
		activeOrdersHandler: activeOrdersHandler,
		recoveryHandler:     recoveryHandler,
		schedule:            schedule,
		cron:                cron.New(cron.WithSeconds()),
		logger:              logger.With("component", "edge_case_sweep_job"),
	}
}

// Start begins the sweep job on its configured schedule.
func (j *EdgeCaseSweepJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, j.sweep)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Edge case sweep job started", "schedule", j.schedule)
	return nil
}

// Stop stops the sweep job.
func (j *EdgeCaseSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Edge case sweep job stopped")
}

func (j *EdgeCaseSweepJob) sweep() {
	ctx := context.Background()

	orders, err := j.activeOrdersHandler.Handle(ctx, queries.NewGetActiveOrdersQuery())
	if err != nil {
		j.logger.ErrorContext(ctx, "Edge case sweep failed to list active orders", "error", err)
		return
	}

	for _, activeOrder := range orders {
		cmd, err := commands.NewRunRecoveryCommand(activeOrder.ID, sweepActor)
		if err != nil {
			j.logger.ErrorContext(ctx, "Edge case sweep failed to build recovery command",
				"order_id", activeOrder.ID.String(), "error", err)
			continue
		}

		result, err := j.recoveryHandler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Edge case sweep failed for order",
				"order_id", activeOrder.ID.String(), "error", err)
			continue
		}

		if len(result.Applied) > 0 {
			j.logger.InfoContext(ctx, "Edge case sweep repaired order",
				"order_id", activeOrder.ID.String(), "repaired", len(result.Applied))
		}
		for _, edgeCase := range result.Unresolvable {
			j.logger.WarnContext(ctx, "Edge case needs operator attention",
				"order_id", activeOrder.ID.String(),
				"kind", string(edgeCase.Kind),
				"description", edgeCase.Description)
		}
	}
}
