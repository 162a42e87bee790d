package commands

import (
	"context"
	"time"

	"packorder/internal/core/domain/model/history"
	"packorder/internal/core/domain/services"
)

// RunRecoveryCommandHandler runs one edge-case recovery pass over an order:
// load the order, its open approvals, and its audit trail, let the detector
// repair what is safe to repair, and commit the repairs atomically with their
// audit entries. Unresolvable anomalies are reported back for the operator.
type RunRecoveryCommandHandler struct {
	uowFactory UoWFactory
	detector   *services.EdgeCaseDetector

	now func() time.Time
}

// NewRunRecoveryCommandHandler creates a handler for recovery operations.
func NewRunRecoveryCommandHandler(
	uowFactory UoWFactory, detector *services.EdgeCaseDetector,
) (*RunRecoveryCommandHandler, error) {
	if err := detector.Validate(); err != nil {
		return nil, err
	}

	return &RunRecoveryCommandHandler{
		uowFactory: uowFactory,
		detector:   detector,
		now:        time.Now,
	}, nil
}

// Handle processes the recovery command and returns what was repaired and what
// needs an operator. Running it again right away repairs nothing new.
func (h *RunRecoveryCommandHandler) Handle(
	ctx context.Context, cmd RunRecoveryCommand,
) (*services.RecoveryResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	octx, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	approvals, err := uow.ApprovalRepository().GetOpenByOrder(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	entries, err := uow.HistoryRepository().GetByOrder(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	log, err := history.NewLog(cmd.OrderID().String(), entries)
	if err != nil {
		return nil, err
	}

	result, err := h.detector.Recover(octx, approvals, log, cmd.Actor(), now)
	if err != nil {
		return nil, err
	}

	if len(result.Applied) == 0 {
		// Nothing changed; skip the write path entirely.
		return result, uow.Commit(ctx)
	}

	if err = uow.OrderRepository().Update(ctx, result.Context); err != nil {
		return nil, err
	}
	for _, request := range result.UpdatedApprovals {
		if err = uow.ApprovalRepository().Update(ctx, request); err != nil {
			return nil, err
		}
	}
	for _, entry := range result.Entries {
		if err = appendChained(ctx, uow.HistoryRepository(), entry); err != nil {
			return nil, err
		}
	}

	return result, uow.Commit(ctx)
}
