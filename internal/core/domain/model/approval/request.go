package approval

import (
	"errors"
	"slices"
	"time"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/pkg/errs"
)

var (
	// ErrRequestIsNotConstructed is returned when a Request instance was not created
	// through NewRequest or RestoreRequest.
	ErrRequestIsNotConstructed = errors.New("Request must be created via NewRequest or RestoreRequest")

	// ErrApprovalNotConsumable is returned when Consume is called on a request that is
	// not in the APPROVED status or was already consumed.
	ErrApprovalNotConsumable = errors.New("approval request is not consumable")
)

// Request is the aggregate for one ringi-style sign-off: a gated transition was
// attempted, and the listed approvers must decide before the transition can run.
//
// Invariants:
//   - Exactly one settled status; a settled request never changes status again,
//     except PENDING -> EXPIRED which happens lazily on read
//   - Only listed approvers may decide
//   - An APPROVED request authorizes at most one transition (tracked by consumedAt)
//   - Can only be created through NewRequest or RestoreRequest
type Request struct {
	id                kernel.UUID
	orderID           kernel.UUID
	event             order.Event
	requestedBy       string
	requiredApprovers []string
	status            Status
	decidedBy         string
	rejectionReason   string
	deadline          time.Time
	createdAt         time.Time
	decidedAt         *time.Time
	consumedAt        *time.Time

	isConstructed bool
}

// NewRequest creates a pending approval request for a gated transition.
func NewRequest(
	orderID kernel.UUID,
	event order.Event,
	requestedBy string,
	requiredApprovers []string,
	deadline time.Time,
	now time.Time,
) (*Request, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if requestedBy == "" {
		return nil, errs.NewValueIsRequiredError("requestedBy")
	}
	if len(requiredApprovers) == 0 {
		return nil, errs.NewValueIsRequiredError("requiredApprovers")
	}
	if !deadline.After(now) {
		return nil, errs.NewValueIsInvalidError("deadline")
	}

	return &Request{
		id:                kernel.NewUUID(),
		orderID:           orderID,
		event:             event,
		requestedBy:       requestedBy,
		requiredApprovers: slices.Clone(requiredApprovers),
		status:            StatusPending,
		deadline:          deadline,
		createdAt:         now,
		isConstructed:     true,
	}, nil
}

// RestoreRequest reconstructs an approval request from persistence.
func RestoreRequest(
	id, orderID kernel.UUID,
	event order.Event,
	requestedBy string,
	requiredApprovers []string,
	status Status,
	decidedBy, rejectionReason string,
	deadline, createdAt time.Time,
	decidedAt, consumedAt *time.Time,
) (*Request, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	return &Request{
		id:                id,
		orderID:           orderID,
		event:             event,
		requestedBy:       requestedBy,
		requiredApprovers: slices.Clone(requiredApprovers),
		status:            status,
		decidedBy:         decidedBy,
		rejectionReason:   rejectionReason,
		deadline:          deadline,
		createdAt:         createdAt,
		decidedAt:         decidedAt,
		consumedAt:        consumedAt,
		isConstructed:     true,
	}, nil
}

// Validate ensures the request was properly constructed.
func (r *Request) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRequestIsNotConstructed
	}
	return nil
}

// ID returns the request's unique identifier.
func (r *Request) ID() kernel.UUID { return r.id }

// OrderID returns the identifier of the order the request gates.
func (r *Request) OrderID() kernel.UUID { return r.orderID }

// Event returns the gated transition event.
func (r *Request) Event() order.Event { return r.event }

// RequestedBy returns the actor who attempted the gated transition.
func (r *Request) RequestedBy() string { return r.requestedBy }

// RequiredApprovers returns a copy of the approver allow-list.
func (r *Request) RequiredApprovers() []string { return slices.Clone(r.requiredApprovers) }

// Status returns the current status of the request.
func (r *Request) Status() Status { return r.status }

// DecidedBy returns the approver who settled the request, if any.
func (r *Request) DecidedBy() string { return r.decidedBy }

// RejectionReason returns the reason supplied with a rejection, if any.
func (r *Request) RejectionReason() string { return r.rejectionReason }

// Deadline returns the instant after which an undecided request is expired.
func (r *Request) Deadline() time.Time { return r.deadline }

// CreatedAt returns when the request was raised.
func (r *Request) CreatedAt() time.Time { return r.createdAt }

// DecidedAt returns when the request was settled, or nil.
func (r *Request) DecidedAt() *time.Time { return r.decidedAt }

// ConsumedAt returns when the approval authorized a transition, or nil.
func (r *Request) ConsumedAt() *time.Time { return r.consumedAt }

// IsConsumed reports whether an approved request has already authorized a transition.
func (r *Request) IsConsumed() bool { return r.consumedAt != nil }

// IsOverdue reports whether a still-pending request has passed its deadline.
func (r *Request) IsOverdue(now time.Time) bool {
	return r.status == StatusPending && now.After(r.deadline)
}

func (r *Request) isListedApprover(approverID string) bool {
	return slices.Contains(r.requiredApprovers, approverID)
}

func (r *Request) checkDecidable(approverID string, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.ExpireIfOverdue(now) || r.status == StatusExpired {
		return errs.NewApprovalDecisionError(errs.DecisionExpired, r.id.String(), approverID)
	}
	if r.status != StatusPending {
		return errs.NewApprovalDecisionError(errs.DecisionAlreadyDecided, r.id.String(), approverID)
	}
	if !r.isListedApprover(approverID) {
		return errs.NewApprovalDecisionError(errs.DecisionPermissionDenied, r.id.String(), approverID)
	}
	return nil
}

// Approve settles the request positively. The approver must be on the allow-list,
// the request must still be pending, and the deadline must not have passed.
func (r *Request) Approve(approverID string, now time.Time) error {
	if err := r.checkDecidable(approverID, now); err != nil {
		return err
	}

	r.status = StatusApproved
	r.decidedBy = approverID
	decidedAt := now
	r.decidedAt = &decidedAt
	return nil
}

// Reject settles the request negatively with a reason. The same authorization and
// timing rules as Approve apply.
func (r *Request) Reject(approverID, reason string, now time.Time) error {
	if err := r.checkDecidable(approverID, now); err != nil {
		return err
	}
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}

	r.status = StatusRejected
	r.decidedBy = approverID
	r.rejectionReason = reason
	decidedAt := now
	r.decidedAt = &decidedAt
	return nil
}

// ExpireIfOverdue lazily settles a pending request whose deadline has passed.
// It reports whether the status changed, so callers know to persist the update.
// No background job is needed for correctness: every read path calls this first.
func (r *Request) ExpireIfOverdue(now time.Time) bool {
	if !r.IsOverdue(now) {
		return false
	}

	r.status = StatusExpired
	decidedAt := now
	r.decidedAt = &decidedAt
	return true
}

// Supersede expires a pending request because a newer request for the same order
// and event replaces it. Settled requests are left untouched.
func (r *Request) Supersede(now time.Time) bool {
	if r.status != StatusPending {
		return false
	}

	r.status = StatusExpired
	decidedAt := now
	r.decidedAt = &decidedAt
	return true
}

// Consume marks an approved request as used. An approval authorizes exactly one
// transition; the executor calls this when the gated transition commits.
func (r *Request) Consume(now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.status != StatusApproved || r.consumedAt != nil {
		return ErrApprovalNotConsumable
	}

	consumedAt := now
	r.consumedAt = &consumedAt
	return nil
}

// Authorizes reports whether this request is an unconsumed approval for the given
// order event, i.e. it may gate-open the transition right now.
func (r *Request) Authorizes(event order.Event) bool {
	return r.status == StatusApproved && r.consumedAt == nil && r.event == event
}
