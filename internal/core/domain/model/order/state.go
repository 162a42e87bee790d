package order

import (
	"fmt"

	"packorder/internal/pkg/errs"
)

// State represents the lifecycle state of a packaging order.
// The set of states is closed: every value the system reasons over is one of the
// constants below, and the transition table in this package is the single source
// of truth for how an order may move between them.
//
// Main path:
//
//	Draft ──> Quotation ──> QuotationApproved ──> PaymentConfirmed ──> DataReceived
//	                                                                      │    ▲
//	                                                                      ▼    │
//	                                                         CorrectionInProgress
//	DataReceived ──> CustomerApprovalPending ──> SpecApproved ──> Production ──> Shipped ──> Delivered
//
// Cancellation branches off the quotation and contract phases; Delivered and
// Cancelled are terminal. A subset of states additionally permits an explicit
// rollback to the previous state (see TransitionTable.RollbackTarget).
type State int

const (
	// Unknown represents an invalid or undefined state.
	// This value (0) helps catch uninitialized State values.
	Unknown State = iota

	// Draft is the initial state: the order exists but no quotation was submitted.
	Draft

	// Quotation means a quotation has been submitted and awaits customer approval.
	Quotation

	// QuotationApproved means the customer accepted the quotation.
	QuotationApproved

	// PaymentConfirmed means payment for the approved quotation has been recorded.
	PaymentConfirmed

	// DataReceived means production data (artwork, dielines) has been uploaded.
	DataReceived

	// CorrectionInProgress means the manufacturing partner requested data corrections.
	CorrectionInProgress

	// CustomerApprovalPending means a proof was produced and awaits customer sign-off.
	CustomerApprovalPending

	// SpecApproved means the final specification passed the ringi approval gate.
	SpecApproved

	// Production means the order is being manufactured.
	Production

	// Shipped means the order left the factory with tracking information attached.
	Shipped

	// Delivered means the customer confirmed receipt. This is a terminal state.
	Delivered

	// Cancelled means the order was cancelled. This is a terminal state.
	Cancelled
)

// Category groups states into the business phases of an order.
type Category int

const (
	// CategoryUnknown represents an invalid category.
	CategoryUnknown Category = iota

	// CategoryQuotation covers the pre-contract negotiation phase.
	CategoryQuotation

	// CategoryContract covers the payment/contract phase.
	CategoryContract

	// CategoryProduction covers data preparation, proofing and manufacturing.
	CategoryProduction

	// CategoryFulfillment covers shipping, delivery and cancellation.
	CategoryFulfillment
)

// stateMeta carries the static metadata attached to every state.
type stateMeta struct {
	label            string
	status           string // external status vocabulary used by collaborators
	category         Category
	terminal         bool
	rollbackEligible bool
}

// getStateMeta returns the metadata for every valid state.
// Unknown is intentionally excluded to support validation.
func getStateMeta() map[State]stateMeta {
	return map[State]stateMeta{
		Draft:                {label: "Draft", status: "draft", category: CategoryQuotation},
		Quotation:            {label: "Quotation", status: "quotation", category: CategoryQuotation},
		QuotationApproved:    {label: "QuotationApproved", status: "quotation_approved", category: CategoryQuotation, rollbackEligible: true},
		PaymentConfirmed:     {label: "PaymentConfirmed", status: "payment_confirmed", category: CategoryContract, rollbackEligible: true},
		DataReceived:         {label: "DataReceived", status: "data_received", category: CategoryProduction, rollbackEligible: true},
		CorrectionInProgress: {label: "CorrectionInProgress", status: "correction_in_progress", category: CategoryProduction, rollbackEligible: true},
		CustomerApprovalPending: {
			label: "CustomerApprovalPending", status: "customer_approval_pending",
			category: CategoryProduction, rollbackEligible: true,
		},
		SpecApproved: {label: "SpecApproved", status: "spec_approved", category: CategoryProduction, rollbackEligible: true},
		Production:   {label: "Production", status: "production", category: CategoryProduction},
		Shipped:      {label: "Shipped", status: "shipped", category: CategoryFulfillment},
		Delivered:    {label: "Delivered", status: "delivered", category: CategoryFulfillment, terminal: true},
		Cancelled:    {label: "Cancelled", status: "cancelled", category: CategoryFulfillment, terminal: true},
	}
}

// InitialState returns the single state a new order starts in.
func InitialState() State {
	return Draft
}

// Validate checks if the State value is valid.
// Unknown (0) and any value outside the declared constants are invalid.
func (s State) Validate() error {
	if _, ok := getStateMeta()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("state is invalid", fmt.Errorf("%d is not a valid state", s))
	}
	return nil
}

// String returns the human-readable name of the state.
// Implements fmt.Stringer and is safe to call on any value, including invalid ones.
func (s State) String() string {
	if meta, ok := getStateMeta()[s]; ok {
		return meta.label
	}
	return "Unknown"
}

// StatusString returns the external status vocabulary for the state, the
// snake_case string persisted and exchanged with collaborators. The internal
// enum stays stable even if this external vocabulary changes.
func (s State) StatusString() string {
	if meta, ok := getStateMeta()[s]; ok {
		return meta.status
	}
	return "unknown"
}

// Category returns the business phase the state belongs to.
func (s State) Category() Category {
	if meta, ok := getStateMeta()[s]; ok {
		return meta.category
	}
	return CategoryUnknown
}

// IsTerminal reports whether the state accepts no further events.
func (s State) IsTerminal() bool {
	if meta, ok := getStateMeta()[s]; ok {
		return meta.terminal
	}
	return false
}

// IsRollbackEligible reports whether an explicit rollback is permitted from the state.
func (s State) IsRollbackEligible() bool {
	if meta, ok := getStateMeta()[s]; ok {
		return meta.rollbackEligible
	}
	return false
}

// StateFromStatus translates an external status string back into the internal enum.
// Returns an error for strings outside the known vocabulary; callers treat this as
// invalid input, not a system fault.
func StateFromStatus(status string) (State, error) {
	for state, meta := range getStateMeta() {
		if meta.status == status {
			return state, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status is invalid",
		fmt.Errorf("%q is not a known order status", status),
	)
}

// AllStates returns every valid state. Useful for exhaustive checks in callers and tests.
func AllStates() []State {
	return []State{
		Draft,
		Quotation,
		QuotationApproved,
		PaymentConfirmed,
		DataReceived,
		CorrectionInProgress,
		CustomerApprovalPending,
		SpecApproved,
		Production,
		Shipped,
		Delivered,
		Cancelled,
	}
}
