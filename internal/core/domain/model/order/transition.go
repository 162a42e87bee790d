package order

// GuardKind names a domain precondition a transition checks against the order
// context before it may fire. Guards are evaluated by the transition executor;
// the table only declares them.
type GuardKind int

const (
	// GuardUnknown represents an invalid guard.
	GuardUnknown GuardKind = iota

	// GuardPaymentAmountPresent requires the payment_amount metadata key to be set.
	GuardPaymentAmountPresent

	// GuardPaymentConfirmed requires the payment-confirmed milestone timestamp.
	GuardPaymentConfirmed

	// GuardShippingInfoPresent requires the tracking_number metadata key to be set.
	GuardShippingInfoPresent

	// GuardCancelReasonPresent requires the cancel_reason metadata key to be set.
	GuardCancelReasonPresent
)

// String returns the audit name of the guard.
func (g GuardKind) String() string {
	switch g {
	case GuardPaymentAmountPresent:
		return "payment_amount_present"
	case GuardPaymentConfirmed:
		return "payment_confirmed"
	case GuardShippingInfoPresent:
		return "shipping_info_present"
	case GuardCancelReasonPresent:
		return "cancel_reason_present"
	default:
		return "unknown"
	}
}

// Transition is a single allowed edge in the order lifecycle state machine.
type Transition struct {
	From  State
	Event Event
	To    State

	// Guards are domain preconditions checked against the order context.
	Guards []GuardKind

	// RequiresApproval marks the transition as gated by a ringi approval request:
	// it may only fire while an APPROVED, unconsumed request for (order, event) exists.
	RequiresApproval bool

	// SideEffects are dispatched by the caller after the transition succeeds.
	SideEffects []SideEffect
}

type transitionKey struct {
	from  State
	event Event
}

// TransitionTable is the immutable, authoritative description of the order
// lifecycle: which event is legal in which state, what it leads to, what it
// requires, and which prior state an explicit rollback returns to.
//
// The table is constructed once by NewTransitionTable and injected into the
// components that consult it; there is no package-level mutable registry, which
// keeps the table trivially swappable in tests.
type TransitionTable struct {
	transitions map[transitionKey]Transition
	rollbacks   map[State]State
}

// NewTransitionTable builds the production transition table.
func NewTransitionTable() *TransitionTable {
	entries := []Transition{
		{
			From: Draft, Event: SubmitQuotation, To: Quotation,
			SideEffects: []SideEffect{NotifyAdminEffect("quotation-submitted")},
		},
		{
			From: Draft, Event: Cancel, To: Cancelled,
			Guards: []GuardKind{GuardCancelReasonPresent},
		},
		{
			From: Quotation, Event: ApproveQuotation, To: QuotationApproved,
			SideEffects: []SideEffect{EmailEffect("quotation-approved", "customer")},
		},
		{
			From: Quotation, Event: Cancel, To: Cancelled,
			Guards:      []GuardKind{GuardCancelReasonPresent},
			SideEffects: []SideEffect{EmailEffect("order-cancelled", "customer")},
		},
		{
			From: QuotationApproved, Event: ConfirmPayment, To: PaymentConfirmed,
			Guards: []GuardKind{GuardPaymentAmountPresent},
			SideEffects: []SideEffect{
				EmailEffect("payment-received", "customer"),
				NotifyAdminEffect("payment-confirmed"),
			},
		},
		{
			From: QuotationApproved, Event: ReceiveData, To: DataReceived,
			SideEffects: []SideEffect{NotifyAdminEffect("data-received")},
		},
		// Fast track for repeat orders with existing print data: legal on the
		// table, but guarded on the payment milestone.
		{
			From: QuotationApproved, Event: StartProduction, To: Production,
			Guards:      []GuardKind{GuardPaymentConfirmed},
			SideEffects: []SideEffect{EmailEffect("production-started", "customer")},
		},
		{
			From: QuotationApproved, Event: Cancel, To: Cancelled,
			Guards:           []GuardKind{GuardCancelReasonPresent},
			RequiresApproval: true,
			SideEffects:      []SideEffect{EmailEffect("order-cancelled", "customer")},
		},
		{
			From: PaymentConfirmed, Event: ReceiveData, To: DataReceived,
			SideEffects: []SideEffect{NotifyAdminEffect("data-received")},
		},
		{
			From: PaymentConfirmed, Event: StartProduction, To: Production,
			Guards:      []GuardKind{GuardPaymentConfirmed},
			SideEffects: []SideEffect{EmailEffect("production-started", "customer")},
		},
		{
			From: PaymentConfirmed, Event: Cancel, To: Cancelled,
			Guards:           []GuardKind{GuardCancelReasonPresent},
			RequiresApproval: true,
			SideEffects: []SideEffect{
				EmailEffect("order-cancelled", "customer"),
				NotifyAdminEffect("refund-required"),
			},
		},
		{
			From: DataReceived, Event: RequestCorrection, To: CorrectionInProgress,
			SideEffects: []SideEffect{EmailEffect("correction-requested", "customer")},
		},
		{
			From: DataReceived, Event: SubmitProof, To: CustomerApprovalPending,
			SideEffects: []SideEffect{EmailEffect("proof-ready", "customer")},
		},
		{
			From: CorrectionInProgress, Event: ReceiveData, To: DataReceived,
			SideEffects: []SideEffect{NotifyAdminEffect("corrected-data-received")},
		},
		{
			From: CustomerApprovalPending, Event: ApproveSpec, To: SpecApproved,
			RequiresApproval: true,
			SideEffects:      []SideEffect{EmailEffect("spec-approved", "customer")},
		},
		{
			From: CustomerApprovalPending, Event: RequestCorrection, To: CorrectionInProgress,
			SideEffects: []SideEffect{EmailEffect("correction-requested", "customer")},
		},
		{
			From: SpecApproved, Event: StartProduction, To: Production,
			Guards: []GuardKind{GuardPaymentConfirmed},
			SideEffects: []SideEffect{
				EmailEffect("production-started", "customer"),
				NotifyAdminEffect("production-started"),
			},
		},
		{
			From: Production, Event: Ship, To: Shipped,
			Guards:      []GuardKind{GuardShippingInfoPresent},
			SideEffects: []SideEffect{EmailEffect("shipped", "customer")},
		},
		{
			From: Shipped, Event: Deliver, To: Delivered,
			SideEffects: []SideEffect{
				EmailEffect("delivered", "customer"),
				NotifyAdminEffect("order-complete"),
			},
		},
	}

	transitions := make(map[transitionKey]Transition, len(entries))
	for _, t := range entries {
		transitions[transitionKey{from: t.From, event: t.Event}] = t
	}

	// Rollback allow-list: only these states may be explicitly reverted, and
	// only to the listed prior state. Production and later states are never
	// rollback targets of themselves.
	rollbacks := map[State]State{
		QuotationApproved:       Quotation,
		PaymentConfirmed:        QuotationApproved,
		DataReceived:            PaymentConfirmed,
		CorrectionInProgress:    DataReceived,
		CustomerApprovalPending: DataReceived,
		SpecApproved:            CustomerApprovalPending,
	}

	return &TransitionTable{transitions: transitions, rollbacks: rollbacks}
}

// Get returns the transition for (state, event), if one exists.
// Unknown pairs yield ok=false rather than an error; callers treat that as a
// rejected request, not a system fault.
func (t *TransitionTable) Get(state State, event Event) (Transition, bool) {
	tr, ok := t.transitions[transitionKey{from: state, event: event}]
	return tr, ok
}

// CanTransition reports whether (state, event) has a table entry and the state
// is not terminal.
func (t *TransitionTable) CanTransition(state State, event Event) bool {
	if state.IsTerminal() {
		return false
	}
	_, ok := t.Get(state, event)
	return ok
}

// RollbackTarget returns the prior state an explicit rollback from the given
// state returns to, if the state is on the rollback allow-list.
func (t *TransitionTable) RollbackTarget(state State) (State, bool) {
	target, ok := t.rollbacks[state]
	return target, ok
}

// EventsFrom returns the events with a table entry for the given state.
func (t *TransitionTable) EventsFrom(state State) []Event {
	var events []Event
	for _, event := range AllEvents() {
		if _, ok := t.Get(state, event); ok {
			events = append(events, event)
		}
	}
	return events
}
