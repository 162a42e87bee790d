package services

import (
	"errors"
	"time"

	"packorder/internal/core/domain/model/approval"
	"packorder/internal/core/domain/model/history"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/pkg/errs"
)

// ErrTransitionExecutorIsNotConstructed is returned when a TransitionExecutor
// was not created through NewTransitionExecutor.
var ErrTransitionExecutorIsNotConstructed = errors.New(
	"TransitionExecutor must be created via NewTransitionExecutor",
)

// Metadata keys the guards evaluate. Callers patch these onto the order context
// before attempting the guarded transition.
const (
	MetadataPaymentAmount  = "payment_amount"
	MetadataTrackingNumber = "tracking_number"
	MetadataCancelReason   = "cancel_reason"
)

// TransitionResult is the outcome of a committed state change: the updated
// context copy, the side effects the caller must dispatch, the audit entry to
// append, and the approval that was consumed, if the transition was gated.
type TransitionResult struct {
	Context     *order.OrderContext
	Transition  order.Transition
	SideEffects []order.SideEffect
	Entry       *history.Entry

	// ConsumedApproval is the approval request this transition used up; nil for
	// ungated transitions. The caller persists its consumed marker.
	ConsumedApproval *approval.Request
}

// TransitionExecutor is the decision core of the order lifecycle. It validates a
// requested event against the transition table, the guards, and the approval
// gate, and either returns an updated copy of the context or a structured
// rejection. It never mutates its input and never performs side effects.
type TransitionExecutor struct {
	table *order.TransitionTable

	isConstructed bool
}

// NewTransitionExecutor creates an executor over the given transition table.
func NewTransitionExecutor(table *order.TransitionTable) (*TransitionExecutor, error) {
	if table == nil {
		return nil, errs.NewValueIsRequiredError("table")
	}
	return &TransitionExecutor{table: table, isConstructed: true}, nil
}

// Validate ensures the executor was properly constructed.
func (e *TransitionExecutor) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrTransitionExecutorIsNotConstructed
	}
	return nil
}

// Table exposes the transition table the executor consults.
func (e *TransitionExecutor) Table() *order.TransitionTable {
	return e.table
}

// Execute runs one decision cycle for (context, event). The approvals slice is
// the order's open approval requests; overdue pending ones are expired in place
// so the caller can persist them.
//
// On success the returned result holds a transitioned copy of the context; the
// caller's context is never touched, so a rejection lower in the pipeline leaves
// nothing to undo.
func (e *TransitionExecutor) Execute(
	octx *order.OrderContext,
	event order.Event,
	actor string,
	approvals []*approval.Request,
	now time.Time,
) (*TransitionResult, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := octx.Validate(); err != nil {
		return nil, err
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	state := octx.State()
	if state.IsTerminal() {
		return nil, errs.NewTransitionRejectedError(
			errs.ReasonTerminalState, state.StatusString(), event.String(),
		)
	}

	transition, ok := e.table.Get(state, event)
	if !ok {
		return nil, errs.NewTransitionRejectedError(
			errs.ReasonNoSuchTransition, state.StatusString(), event.String(),
		)
	}

	var consumed *approval.Request
	if transition.RequiresApproval {
		consumed = findAuthorizing(approvals, event, now)
		if consumed == nil {
			return nil, approvalRequiredRejection(state, event, approvals)
		}
	}

	for _, guard := range transition.Guards {
		if err := evaluateGuard(guard, octx); err != nil {
			return nil, errs.NewTransitionRejectedErrorWithCause(
				errs.ReasonGuardFailed, state.StatusString(), event.String(), err,
			)
		}
	}

	updated := octx.Clone()
	if err := updated.ApplyTransition(transition, now); err != nil {
		return nil, err
	}

	if consumed != nil {
		if err := consumed.Consume(now); err != nil {
			return nil, err
		}
	}

	entry, err := history.NewEntry(
		octx.ID(),
		history.KindTransition,
		transition.From, transition.To,
		event,
		actor,
		"",
		now,
		effectAuditStrings(transition.SideEffects),
	)
	if err != nil {
		return nil, err
	}

	return &TransitionResult{
		Context:          updated,
		Transition:       transition,
		SideEffects:      transition.SideEffects,
		Entry:            entry,
		ConsumedApproval: consumed,
	}, nil
}

// Rollback reverts the context to the prior state the table allows, recording
// the operator's reason. States outside the rollback allow-list are rejected.
func (e *TransitionExecutor) Rollback(
	octx *order.OrderContext,
	actor, reason string,
	now time.Time,
) (*TransitionResult, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := octx.Validate(); err != nil {
		return nil, err
	}
	if actor == "" {
		return nil, errs.NewValueIsRequiredError("actor")
	}
	if reason == "" {
		return nil, errs.NewValueIsRequiredError("reason")
	}

	state := octx.State()
	if state.IsTerminal() {
		return nil, errs.NewTransitionRejectedError(
			errs.ReasonTerminalState, state.StatusString(), rollbackEventName,
		)
	}

	target, ok := e.table.RollbackTarget(state)
	if !ok {
		return nil, errs.NewTransitionRejectedError(
			errs.ReasonNoSuchTransition, state.StatusString(), rollbackEventName,
		)
	}

	updated := octx.Clone()
	if err := updated.ApplyRollback(target); err != nil {
		return nil, err
	}

	entry, err := history.NewEntry(
		octx.ID(),
		history.KindRollback,
		state, target,
		order.EventUnknown,
		actor,
		reason,
		now,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &TransitionResult{Context: updated, Entry: entry}, nil
}

// rollbackEventName is the pseudo-event name used in rejections for rollback
// requests, which are not table events.
const rollbackEventName = "rollback"

// findAuthorizing locates an approved, unconsumed request for the event. Overdue
// pending requests encountered along the way are expired in place.
func findAuthorizing(approvals []*approval.Request, event order.Event, now time.Time) *approval.Request {
	for _, request := range approvals {
		request.ExpireIfOverdue(now)
		if request.Authorizes(event) {
			return request
		}
	}
	return nil
}

// approvalRequiredRejection builds the APPROVAL_REQUIRED rejection, pointing at
// the still-pending request when one exists and asking the caller to create one
// otherwise.
func approvalRequiredRejection(
	state order.State, event order.Event, approvals []*approval.Request,
) *errs.TransitionRejectedError {
	rejection := errs.NewTransitionRejectedError(
		errs.ReasonApprovalRequired, state.StatusString(), event.String(),
	)
	for _, request := range approvals {
		if request.Status() == approval.StatusPending && request.Event() == event {
			rejection.PendingApprovalID = request.ID().String()
			return rejection
		}
	}
	rejection.NeedsApprovalRequest = true
	return rejection
}

func evaluateGuard(guard order.GuardKind, octx *order.OrderContext) error {
	switch guard {
	case order.GuardPaymentAmountPresent:
		if _, ok := octx.MetadataValue(MetadataPaymentAmount); !ok {
			return errs.NewValueIsRequiredError(MetadataPaymentAmount)
		}
	case order.GuardPaymentConfirmed:
		if octx.Milestones().PaymentConfirmedAt == nil {
			return errs.NewValueIsRequiredError("payment confirmation")
		}
	case order.GuardShippingInfoPresent:
		if _, ok := octx.MetadataValue(MetadataTrackingNumber); !ok {
			return errs.NewValueIsRequiredError(MetadataTrackingNumber)
		}
	case order.GuardCancelReasonPresent:
		if _, ok := octx.MetadataValue(MetadataCancelReason); !ok {
			return errs.NewValueIsRequiredError(MetadataCancelReason)
		}
	default:
		return errs.NewValueIsInvalidError("guard")
	}
	return nil
}

func effectAuditStrings(effects []order.SideEffect) []string {
	if len(effects) == 0 {
		return nil
	}
	audit := make([]string, 0, len(effects))
	for _, effect := range effects {
		audit = append(audit, effect.String())
	}
	return audit
}
