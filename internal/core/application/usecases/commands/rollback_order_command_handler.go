package commands

import (
	"context"
	"time"

	"packorder/internal/core/domain/model/order"
	"packorder/internal/core/domain/services"
)

// RollbackOrderCommandHandler performs an administrative rollback: the order is
// reverted to the prior state the transition table allows, the milestone of the
// departed state is cleared, and the move is audited with the operator's reason.
type RollbackOrderCommandHandler struct {
	uowFactory UoWFactory
	executor   *services.TransitionExecutor

	now func() time.Time
}

// NewRollbackOrderCommandHandler creates a handler for rollback operations.
func NewRollbackOrderCommandHandler(
	uowFactory UoWFactory, executor *services.TransitionExecutor,
) (*RollbackOrderCommandHandler, error) {
	if err := executor.Validate(); err != nil {
		return nil, err
	}

	return &RollbackOrderCommandHandler{
		uowFactory: uowFactory,
		executor:   executor,
		now:        time.Now,
	}, nil
}

// Handle processes the rollback command.
// The state change and its audit entry commit in one transaction; orders outside
// the rollback allow-list are rejected with a structured error.
func (h *RollbackOrderCommandHandler) Handle(
	ctx context.Context, cmd RollbackOrderCommand,
) (order.State, error) {
	if err := cmd.Validate(); err != nil {
		return order.Unknown, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return order.Unknown, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	octx, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return order.Unknown, err
	}

	result, err := h.executor.Rollback(octx, cmd.Actor(), cmd.Reason(), h.now())
	if err != nil {
		return order.Unknown, err
	}

	if err = uow.OrderRepository().Update(ctx, result.Context); err != nil {
		return order.Unknown, err
	}
	if err = appendChained(ctx, uow.HistoryRepository(), result.Entry); err != nil {
		return order.Unknown, err
	}
	if err = uow.Commit(ctx); err != nil {
		return order.Unknown, err
	}

	return result.Context.State(), nil
}
