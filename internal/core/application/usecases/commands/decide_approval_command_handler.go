package commands

import (
	"context"
	"fmt"
	"time"

	"packorder/internal/core/domain/model/approval"
	"packorder/internal/core/domain/model/history"
	"packorder/internal/core/domain/model/kernel"
)

// DecideApprovalCommandHandler settles pending approval requests. Approve and
// reject share the same shape: authorize the approver, apply the decision, and
// audit it against the order without changing the order's state. The gated
// transition itself still has to be re-requested after an approval; the sign-off
// only opens the gate.
type DecideApprovalCommandHandler struct {
	uowFactory UoWFactory

	now func() time.Time
}

// NewDecideApprovalCommandHandler creates a handler for approval decisions.
func NewDecideApprovalCommandHandler(uowFactory UoWFactory) *DecideApprovalCommandHandler {
	return &DecideApprovalCommandHandler{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// HandleApprove processes a positive decision.
// Overdue requests expire instead of being approved; the expiry is persisted and
// reported to the caller as an EXPIRED decision failure.
func (h *DecideApprovalCommandHandler) HandleApprove(ctx context.Context, cmd ApproveRequestCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.decide(ctx, cmd.RequestID(), func(request *approval.Request, now time.Time) error {
		return request.Approve(cmd.ApproverID(), now)
	})
}

// HandleReject processes a negative decision with the approver's reason.
func (h *DecideApprovalCommandHandler) HandleReject(ctx context.Context, cmd RejectRequestCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.decide(ctx, cmd.RequestID(), func(request *approval.Request, now time.Time) error {
		return request.Reject(cmd.ApproverID(), cmd.Reason(), now)
	})
}

func (h *DecideApprovalCommandHandler) decide(
	ctx context.Context,
	requestID kernel.UUID,
	apply func(request *approval.Request, now time.Time) error,
) error {
	now := h.now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	request, err := uow.ApprovalRepository().Get(ctx, requestID)
	if err != nil {
		return err
	}

	decisionErr := apply(request, now)
	if decisionErr != nil {
		// Lazy expiry is still worth persisting even though the decision failed.
		if request.Status() == approval.StatusExpired && request.DecidedAt() != nil {
			if err = uow.ApprovalRepository().Update(ctx, request); err != nil {
				return err
			}
			if err = uow.Commit(ctx); err != nil {
				return err
			}
		}
		return decisionErr
	}

	if err = uow.ApprovalRepository().Update(ctx, request); err != nil {
		return err
	}

	octx, err := uow.OrderRepository().Get(ctx, request.OrderID())
	if err != nil {
		return err
	}

	entry, err := history.NewEntry(
		request.OrderID(),
		history.KindApproval,
		octx.State(), octx.State(),
		request.Event(),
		request.DecidedBy(),
		fmt.Sprintf("approval %s: %s", request.Status(), request.ID()),
		now,
		nil,
	)
	if err != nil {
		return err
	}
	if err = appendChained(ctx, uow.HistoryRepository(), entry); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
