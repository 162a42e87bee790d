package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for the order lifecycle failure taxonomy. Every rejection is a
// structured value returned to the caller; nothing in this taxonomy is panicked.
var (
	ErrTransitionRejected    = errors.New("transition rejected")
	ErrApprovalDecision      = errors.New("approval decision failed")
	ErrHistoryOrderViolation = errors.New("history order violation")
)

// RejectionReason classifies why a requested transition was refused.
type RejectionReason string

const (
	// ReasonTerminalState means the order is in a terminal state and accepts no further events.
	ReasonTerminalState RejectionReason = "TERMINAL_STATE"
	// ReasonNoSuchTransition means the (state, event) pair has no entry in the transition table.
	ReasonNoSuchTransition RejectionReason = "NO_SUCH_TRANSITION"
	// ReasonGuardFailed means a domain precondition attached to the transition was not met.
	ReasonGuardFailed RejectionReason = "GUARD_FAILED"
	// ReasonApprovalRequired means the transition is gated and no approved sign-off exists yet.
	ReasonApprovalRequired RejectionReason = "APPROVAL_REQUIRED"
)

// TransitionRejectedError is the structured outcome of a refused transition request.
// It is a normal, recoverable result: callers surface it (HTTP 409/422/202-equivalent)
// rather than retrying or treating it as a system fault.
type TransitionRejectedError struct {
	Reason RejectionReason
	State  string
	Event  string

	// PendingApprovalID carries the identifier of an existing PENDING approval
	// request when Reason is ReasonApprovalRequired and such a request exists.
	PendingApprovalID string

	// NeedsApprovalRequest is set when Reason is ReasonApprovalRequired and no
	// PENDING request exists yet, signalling the caller to create one.
	NeedsApprovalRequest bool

	Cause error
}

// NewTransitionRejectedError creates a TransitionRejectedError for the given reason.
func NewTransitionRejectedError(reason RejectionReason, state, event string) *TransitionRejectedError {
	return &TransitionRejectedError{Reason: reason, State: state, Event: event}
}

// NewTransitionRejectedErrorWithCause creates a TransitionRejectedError wrapping an underlying cause.
func NewTransitionRejectedErrorWithCause(
	reason RejectionReason, state, event string, cause error,
) *TransitionRejectedError {
	return &TransitionRejectedError{Reason: reason, State: state, Event: event, Cause: cause}
}

func (e *TransitionRejectedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s for event %s in state %s (cause: %s)",
			ErrTransitionRejected, e.Reason, e.Event, e.State, sanitize(e.Cause))
	}
	return fmt.Sprintf("%s: %s for event %s in state %s", ErrTransitionRejected, e.Reason, e.Event, e.State)
}

func (e *TransitionRejectedError) Unwrap() error {
	return ErrTransitionRejected
}

// DecisionFailure classifies why an approval decision could not be applied.
type DecisionFailure string

const (
	// DecisionPermissionDenied means the actor is not among the required approvers.
	DecisionPermissionDenied DecisionFailure = "PERMISSION_DENIED"
	// DecisionExpired means the request passed its deadline before the decision arrived.
	DecisionExpired DecisionFailure = "EXPIRED"
	// DecisionAlreadyDecided means the request is no longer pending.
	DecisionAlreadyDecided DecisionFailure = "ALREADY_DECIDED"
)

// ApprovalDecisionError reports a refused approve/reject attempt on an approval request.
type ApprovalDecisionError struct {
	Failure    DecisionFailure
	RequestID  string
	ApproverID string
}

// NewApprovalDecisionError creates an ApprovalDecisionError.
func NewApprovalDecisionError(failure DecisionFailure, requestID, approverID string) *ApprovalDecisionError {
	return &ApprovalDecisionError{Failure: failure, RequestID: requestID, ApproverID: approverID}
}

func (e *ApprovalDecisionError) Error() string {
	return fmt.Sprintf("%s: %s for request %s by approver %s",
		ErrApprovalDecision, e.Failure, e.RequestID, e.ApproverID)
}

func (e *ApprovalDecisionError) Unwrap() error {
	return ErrApprovalDecision
}

// HistoryOrderViolationError reports an append whose fromState does not chain onto
// the last recorded toState for the order. Unlike the rejections above this is a
// bug signal: it means the persistence layer handed the core an inconsistent
// context, and it should be logged at error severity for operator investigation.
type HistoryOrderViolationError struct {
	OrderID           string
	ExpectedFromState string
	ActualFromState   string
}

// NewHistoryOrderViolationError creates a HistoryOrderViolationError.
func NewHistoryOrderViolationError(orderID, expectedFromState, actualFromState string) *HistoryOrderViolationError {
	return &HistoryOrderViolationError{
		OrderID:           orderID,
		ExpectedFromState: expectedFromState,
		ActualFromState:   actualFromState,
	}
}

func (e *HistoryOrderViolationError) Error() string {
	return fmt.Sprintf("%s: order %s expected fromState %s, got %s",
		ErrHistoryOrderViolation, e.OrderID, e.ExpectedFromState, e.ActualFromState)
}

func (e *HistoryOrderViolationError) Unwrap() error {
	return ErrHistoryOrderViolation
}
