package order

import (
	"errors"
	"time"

	"packorder/internal/core/domain/model/kernel"
)

var (
	// ErrOrderContextIsNotConstructed is returned when an OrderContext instance was not
	// created through NewOrderContext or RestoreOrderContext.
	ErrOrderContextIsNotConstructed = errors.New(
		"OrderContext must be created via NewOrderContext or RestoreOrderContext",
	)

	// ErrTransitionDoesNotApply is returned when a transition is applied to a context
	// whose current state does not match the transition's From state.
	ErrTransitionDoesNotApply = errors.New("transition does not apply to the current state")
)

// Milestones holds the dated checkpoints of one order. It is a plain value:
// copying a Milestones copies all timestamps.
type Milestones struct {
	QuotationApprovedAt *time.Time
	PaymentConfirmedAt  *time.Time
	DataReceivedAt      *time.Time
	SpecApprovedAt      *time.Time
	ProductionStartedAt *time.Time
	ShippedAt           *time.Time
	DeliveredAt         *time.Time
	CancelledAt         *time.Time
}

// At returns the timestamp recorded for the milestone, or nil.
func (m Milestones) At(milestone Milestone) *time.Time {
	switch milestone {
	case MilestoneQuotationApproved:
		return m.QuotationApprovedAt
	case MilestonePaymentConfirmed:
		return m.PaymentConfirmedAt
	case MilestoneDataReceived:
		return m.DataReceivedAt
	case MilestoneSpecApproved:
		return m.SpecApprovedAt
	case MilestoneProductionStarted:
		return m.ProductionStartedAt
	case MilestoneShipped:
		return m.ShippedAt
	case MilestoneDelivered:
		return m.DeliveredAt
	case MilestoneCancelled:
		return m.CancelledAt
	default:
		return nil
	}
}

func (m *Milestones) set(milestone Milestone, at time.Time) {
	t := at
	switch milestone {
	case MilestoneQuotationApproved:
		m.QuotationApprovedAt = &t
	case MilestonePaymentConfirmed:
		m.PaymentConfirmedAt = &t
	case MilestoneDataReceived:
		m.DataReceivedAt = &t
	case MilestoneSpecApproved:
		m.SpecApprovedAt = &t
	case MilestoneProductionStarted:
		m.ProductionStartedAt = &t
	case MilestoneShipped:
		m.ShippedAt = &t
	case MilestoneDelivered:
		m.DeliveredAt = &t
	case MilestoneCancelled:
		m.CancelledAt = &t
	}
}

func (m *Milestones) clear(milestone Milestone) {
	switch milestone {
	case MilestoneQuotationApproved:
		m.QuotationApprovedAt = nil
	case MilestonePaymentConfirmed:
		m.PaymentConfirmedAt = nil
	case MilestoneDataReceived:
		m.DataReceivedAt = nil
	case MilestoneSpecApproved:
		m.SpecApprovedAt = nil
	case MilestoneProductionStarted:
		m.ProductionStartedAt = nil
	case MilestoneShipped:
		m.ShippedAt = nil
	case MilestoneDelivered:
		m.DeliveredAt = nil
	case MilestoneCancelled:
		m.CancelledAt = nil
	}
}

// OrderContext is the mutable subject of the state machine: the current state of
// one order plus the milestone timestamps and the free-form metadata guards
// evaluate. The core receives it for one decision cycle and returns an updated
// copy; it is owned and persisted by the caller.
//
// Invariants:
//   - Must have valid order and customer identifiers
//   - State changes only through ApplyTransition/ApplyRollback, which verify the
//     edge being applied matches the current state
//   - Can only be created through NewOrderContext or RestoreOrderContext
type OrderContext struct {
	id         kernel.UUID
	customerID kernel.UUID
	state      State
	milestones Milestones
	metadata   map[string]string

	// version supports the caller's optimistic-concurrency check; the core never
	// changes it.
	version int64

	isConstructed bool
}

// NewOrderContext creates the context for a brand-new order in the initial state.
func NewOrderContext(id, customerID kernel.UUID) (*OrderContext, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := customerID.Validate(); err != nil {
		return nil, err
	}

	return &OrderContext{
		id:            id,
		customerID:    customerID,
		state:         InitialState(),
		metadata:      map[string]string{},
		version:       1,
		isConstructed: true,
	}, nil
}

// RestoreOrderContext reconstructs a context from persistence.
func RestoreOrderContext(
	id, customerID kernel.UUID,
	state State,
	milestones Milestones,
	metadata map[string]string,
	version int64,
) (*OrderContext, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := customerID.Validate(); err != nil {
		return nil, err
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	return &OrderContext{
		id:            id,
		customerID:    customerID,
		state:         state,
		milestones:    milestones,
		metadata:      metadata,
		version:       version,
		isConstructed: true,
	}, nil
}

// Validate ensures the context was properly constructed.
func (o *OrderContext) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderContextIsNotConstructed
	}
	return nil
}

// ID returns the order's unique identifier.
func (o *OrderContext) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the owning customer's identifier.
func (o *OrderContext) CustomerID() kernel.UUID {
	return o.customerID
}

// State returns the current lifecycle state.
func (o *OrderContext) State() State {
	return o.state
}

// Milestones returns a copy of the milestone timestamps.
func (o *OrderContext) Milestones() Milestones {
	return o.milestones
}

// Version returns the optimistic-concurrency version the context was loaded with.
func (o *OrderContext) Version() int64 {
	return o.version
}

// Metadata returns a copy of the free-form metadata map.
func (o *OrderContext) Metadata() map[string]string {
	copied := make(map[string]string, len(o.metadata))
	for k, v := range o.metadata {
		copied[k] = v
	}
	return copied
}

// MetadataValue returns the metadata value for a key, and whether it is set
// to a non-empty value.
func (o *OrderContext) MetadataValue(key string) (string, bool) {
	v, ok := o.metadata[key]
	return v, ok && v != ""
}

// PatchMetadata merges the given keys into the context metadata.
// An empty value removes the key.
func (o *OrderContext) PatchMetadata(patch map[string]string) {
	for k, v := range patch {
		if v == "" {
			delete(o.metadata, k)
			continue
		}
		o.metadata[k] = v
	}
}

// Clone returns a deep copy of the context. The transition executor operates on
// clones so a rejected request leaves the caller's context untouched.
func (o *OrderContext) Clone() *OrderContext {
	return &OrderContext{
		id:            o.id,
		customerID:    o.customerID,
		state:         o.state,
		milestones:    o.milestones,
		metadata:      o.Metadata(),
		version:       o.version,
		isConstructed: o.isConstructed,
	}
}

// ApplyTransition moves the context along a table edge, stamping the event's
// milestone. The transition's From state must match the current state; this is
// a second line of defense behind the executor's table lookup.
func (o *OrderContext) ApplyTransition(t Transition, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if t.From != o.state {
		return ErrTransitionDoesNotApply
	}

	o.state = t.To
	if milestone, ok := MilestoneForEvent(t.Event); ok {
		o.milestones.set(milestone, now)
	}
	return nil
}

// ApplyRollback reverts the context to the given prior state, clearing the
// milestone of the state being left. Callers must have resolved target via the
// transition table's rollback allow-list.
func (o *OrderContext) ApplyRollback(target State) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := target.Validate(); err != nil {
		return err
	}

	if milestone, ok := MilestoneForState(o.state); ok {
		o.milestones.clear(milestone)
	}
	o.state = target
	return nil
}

// BackfillMilestone restores a missing milestone timestamp. Reserved for the
// edge-case recovery path, which derives the value from the audit history.
func (o *OrderContext) BackfillMilestone(milestone Milestone, at time.Time) {
	o.milestones.set(milestone, at)
}
