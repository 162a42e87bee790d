package history

import (
	"errors"
	"slices"
	"time"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/pkg/errs"
)

// ErrEntryIsNotConstructed is returned when an Entry instance was not created
// through NewEntry or RestoreEntry.
var ErrEntryIsNotConstructed = errors.New("Entry must be created via NewEntry or RestoreEntry")

// ChangeKind classifies what an audit entry records.
type ChangeKind int

const (
	// KindUnknown is the invalid zero value.
	KindUnknown ChangeKind = iota
	// KindTransition records a forward move along a transition-table edge.
	KindTransition
	// KindRollback records an administrative revert to a prior state.
	KindRollback
	// KindRecovery records an automated edge-case repair; state does not change.
	KindRecovery
	// KindApproval records an approval workflow decision; state does not change.
	KindApproval
)

func getChangeKindNames() map[ChangeKind]string {
	return map[ChangeKind]string{
		KindTransition: "TRANSITION",
		KindRollback:   "ROLLBACK",
		KindRecovery:   "RECOVERY",
		KindApproval:   "APPROVAL",
	}
}

// Validate checks that the change kind is one of the defined values.
func (k ChangeKind) Validate() error {
	if _, ok := getChangeKindNames()[k]; !ok {
		return errs.NewValueIsInvalidError("change kind")
	}
	return nil
}

// String implements the fmt.Stringer interface.
func (k ChangeKind) String() string {
	if name, ok := getChangeKindNames()[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// ChangeKindFromString parses the external representation of a change kind.
func ChangeKindFromString(value string) (ChangeKind, error) {
	for kind, name := range getChangeKindNames() {
		if name == value {
			return kind, nil
		}
	}
	return KindUnknown, errs.NewValueIsInvalidError("change kind")
}

// Entry is one immutable record in an order's audit history. Entries are only
// ever appended; corrections are new entries, never edits.
type Entry struct {
	id         kernel.UUID
	orderID    kernel.UUID
	kind       ChangeKind
	fromState  order.State
	toState    order.State
	event      order.Event
	actor      string
	note       string
	occurredAt time.Time

	// dispatchedEffects lists the side effects the caller reported executing for
	// this change, in their audit form, e.g. "EMAIL:quotation_submitted:sales".
	dispatchedEffects []string

	isConstructed bool
}

// NewEntry creates an audit entry for a lifecycle change. Recovery and approval
// entries must carry the same from and to state; event may be the zero value for
// kinds that no event drives.
func NewEntry(
	orderID kernel.UUID,
	kind ChangeKind,
	fromState, toState order.State,
	event order.Event,
	actor, note string,
	occurredAt time.Time,
	dispatchedEffects []string,
) (*Entry, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if err := fromState.Validate(); err != nil {
		return nil, err
	}
	if err := toState.Validate(); err != nil {
		return nil, err
	}
	if actor == "" {
		return nil, errs.NewValueIsRequiredError("actor")
	}
	if (kind == KindRecovery || kind == KindApproval) && fromState != toState {
		return nil, errs.NewValueIsInvalidError("toState")
	}

	return &Entry{
		id:                kernel.NewUUID(),
		orderID:           orderID,
		kind:              kind,
		fromState:         fromState,
		toState:           toState,
		event:             event,
		actor:             actor,
		note:              note,
		occurredAt:        occurredAt,
		dispatchedEffects: slices.Clone(dispatchedEffects),
		isConstructed:     true,
	}, nil
}

// RestoreEntry reconstructs an audit entry from persistence.
func RestoreEntry(
	id, orderID kernel.UUID,
	kind ChangeKind,
	fromState, toState order.State,
	event order.Event,
	actor, note string,
	occurredAt time.Time,
	dispatchedEffects []string,
) (*Entry, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	return &Entry{
		id:                id,
		orderID:           orderID,
		kind:              kind,
		fromState:         fromState,
		toState:           toState,
		event:             event,
		actor:             actor,
		note:              note,
		occurredAt:        occurredAt,
		dispatchedEffects: slices.Clone(dispatchedEffects),
		isConstructed:     true,
	}, nil
}

// Validate ensures the entry was properly constructed.
func (e *Entry) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEntryIsNotConstructed
	}
	return nil
}

// ID returns the entry's unique identifier.
func (e *Entry) ID() kernel.UUID { return e.id }

// OrderID returns the identifier of the order the entry belongs to.
func (e *Entry) OrderID() kernel.UUID { return e.orderID }

// Kind returns the classification of the recorded change.
func (e *Entry) Kind() ChangeKind { return e.kind }

// FromState returns the state the order was in before the change.
func (e *Entry) FromState() order.State { return e.fromState }

// ToState returns the state the order was in after the change.
func (e *Entry) ToState() order.State { return e.toState }

// Event returns the driving event, or the zero Event for kinds no event drives.
func (e *Entry) Event() order.Event { return e.event }

// Actor returns who caused the change.
func (e *Entry) Actor() string { return e.actor }

// Note returns the free-form annotation attached to the change.
func (e *Entry) Note() string { return e.note }

// OccurredAt returns when the change happened.
func (e *Entry) OccurredAt() time.Time { return e.occurredAt }

// DispatchedEffects returns a copy of the audit forms of the executed side effects.
func (e *Entry) DispatchedEffects() []string { return slices.Clone(e.dispatchedEffects) }

// IsStateChange reports whether the entry moved the order to a different state.
func (e *Entry) IsStateChange() bool { return e.fromState != e.toState }
