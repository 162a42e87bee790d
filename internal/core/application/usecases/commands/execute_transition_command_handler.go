package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"packorder/internal/core/domain/model/approval"
	"packorder/internal/core/domain/model/history"
	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/core/domain/services"
	"packorder/internal/core/ports"
	"packorder/internal/pkg/errs"
)

// ApprovalPolicy configures how gated transitions raise approval requests:
// who may sign off and how long a request stays decidable.
type ApprovalPolicy struct {
	Approvers []string
	TTL       time.Duration
}

// ExecuteTransitionResult reports a committed transition back to the caller,
// including the side effects the caller is now responsible for dispatching.
type ExecuteTransitionResult struct {
	OrderID     kernel.UUID
	NewState    order.State
	SideEffects []order.SideEffect
}

// ExecuteTransitionCommandHandler drives one decision cycle of the order state
// machine: load the order and its open approvals, consult the transition
// executor, and commit the outcome atomically with its audit entry.
//
// A gated transition without a usable approval does not fail silently: the
// handler raises the approval request itself (superseding stale pending ones)
// and returns the APPROVAL_REQUIRED rejection carrying the new request's ID.
type ExecuteTransitionCommandHandler struct {
	uowFactory UoWFactory
	executor   *services.TransitionExecutor
	policy     ApprovalPolicy

	// now is swapped in tests for deterministic deadlines.
	now func() time.Time
}

// NewExecuteTransitionCommandHandler creates a handler for transition execution.
func NewExecuteTransitionCommandHandler(
	uowFactory UoWFactory,
	executor *services.TransitionExecutor,
	policy ApprovalPolicy,
) (*ExecuteTransitionCommandHandler, error) {
	if err := executor.Validate(); err != nil {
		return nil, err
	}
	if len(policy.Approvers) == 0 {
		return nil, errs.NewValueIsRequiredError("policy.Approvers")
	}
	if policy.TTL <= 0 {
		return nil, errs.NewValueIsInvalidError("policy.TTL")
	}

	return &ExecuteTransitionCommandHandler{
		uowFactory: uowFactory,
		executor:   executor,
		policy:     policy,
		now:        time.Now,
	}, nil
}

// Handle processes the transition command.
//
// On success the order's new state, the consumed approval's marker, and the
// audit entry commit in one transaction, and the declared side effects are
// returned for dispatch. A rejection leaves the order untouched and is returned
// as a structured TransitionRejectedError.
func (h *ExecuteTransitionCommandHandler) Handle(
	ctx context.Context, cmd ExecuteTransitionCommand,
) (ExecuteTransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return ExecuteTransitionResult{}, err
	}

	now := h.now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ExecuteTransitionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	octx, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return ExecuteTransitionResult{}, err
	}
	octx.PatchMetadata(cmd.Metadata())

	approvals, err := uow.ApprovalRepository().GetOpenByOrder(ctx, cmd.OrderID())
	if err != nil {
		return ExecuteTransitionResult{}, err
	}
	if err = h.expireOverdue(ctx, uow, approvals, now); err != nil {
		return ExecuteTransitionResult{}, err
	}

	result, err := h.executor.Execute(octx, cmd.Event(), cmd.Actor(), approvals, now)
	if err != nil {
		var rejection *errs.TransitionRejectedError
		if errors.As(err, &rejection) && rejection.NeedsApprovalRequest {
			return ExecuteTransitionResult{}, h.raiseApprovalRequest(ctx, uow, octx, cmd, rejection, now)
		}
		return ExecuteTransitionResult{}, err
	}

	if err = h.commitTransition(ctx, uow, result); err != nil {
		return ExecuteTransitionResult{}, err
	}

	return ExecuteTransitionResult{
		OrderID:     cmd.OrderID(),
		NewState:    result.Context.State(),
		SideEffects: result.SideEffects,
	}, nil
}

// expireOverdue lazily settles overdue pending requests and persists them, so
// the stored view matches what the executor will see.
func (h *ExecuteTransitionCommandHandler) expireOverdue(
	ctx context.Context, uow UoW, approvals []*approval.Request, now time.Time,
) error {
	for _, request := range approvals {
		if request.ExpireIfOverdue(now) {
			if err := uow.ApprovalRepository().Update(ctx, request); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *ExecuteTransitionCommandHandler) commitTransition(
	ctx context.Context, uow UoW, result *services.TransitionResult,
) error {
	if err := uow.OrderRepository().Update(ctx, result.Context); err != nil {
		return err
	}

	if result.ConsumedApproval != nil {
		if err := uow.ApprovalRepository().Update(ctx, result.ConsumedApproval); err != nil {
			return err
		}
	}

	if err := appendChained(ctx, uow.HistoryRepository(), result.Entry); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// raiseApprovalRequest creates the pending request a gated transition needs,
// superseding any stale pending requests for the same event, and commits it
// together with its audit entry. The original rejection is returned to the
// caller enriched with the new request's ID.
func (h *ExecuteTransitionCommandHandler) raiseApprovalRequest(
	ctx context.Context,
	uow UoW,
	octx *order.OrderContext,
	cmd ExecuteTransitionCommand,
	rejection *errs.TransitionRejectedError,
	now time.Time,
) error {
	stale, err := uow.ApprovalRepository().GetPendingByOrderAndEvent(ctx, cmd.OrderID(), cmd.Event())
	if err != nil {
		return err
	}
	for _, request := range stale {
		if request.Supersede(now) {
			if err = uow.ApprovalRepository().Update(ctx, request); err != nil {
				return err
			}
		}
	}

	request, err := approval.NewRequest(
		cmd.OrderID(),
		cmd.Event(),
		cmd.Actor(),
		h.policy.Approvers,
		now.Add(h.policy.TTL),
		now,
	)
	if err != nil {
		return err
	}

	if err = uow.ApprovalRepository().Add(ctx, request); err != nil {
		return err
	}

	entry, err := history.NewEntry(
		cmd.OrderID(),
		history.KindApproval,
		octx.State(), octx.State(),
		cmd.Event(),
		cmd.Actor(),
		fmt.Sprintf("approval requested: %s", request.ID()),
		now,
		nil,
	)
	if err != nil {
		return err
	}
	if err = appendChained(ctx, uow.HistoryRepository(), entry); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	rejection.NeedsApprovalRequest = false
	rejection.PendingApprovalID = request.ID().String()
	return rejection
}

// appendChained persists an audit entry after verifying it chains onto the last
// stored one. A broken chain is a data inconsistency and aborts the command.
func appendChained(ctx context.Context, repo ports.HistoryRepository, entry *history.Entry) error {
	last, err := repo.GetLastByOrder(ctx, entry.OrderID())
	if err != nil {
		return err
	}
	if last != nil && entry.FromState() != last.ToState() {
		return errs.NewHistoryOrderViolationError(
			entry.OrderID().String(), last.ToState().String(), entry.FromState().String(),
		)
	}
	return repo.Add(ctx, entry)
}
