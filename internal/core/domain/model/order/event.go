package order

import (
	"fmt"

	"packorder/internal/pkg/errs"
)

// Event names a requested transition trigger. Events are pure intents: they carry
// no business payload beyond what guards need, which travels in the order context
// metadata (for example a cancellation reason or a payment amount).
type Event int

const (
	// EventUnknown represents an invalid or undefined event.
	EventUnknown Event = iota

	// SubmitQuotation submits a quotation for a draft order.
	SubmitQuotation

	// ApproveQuotation records the customer's acceptance of the quotation.
	ApproveQuotation

	// ConfirmPayment records that payment for the order has been received.
	ConfirmPayment

	// ReceiveData records the upload of production data, including resubmissions
	// after a correction cycle.
	ReceiveData

	// RequestCorrection sends the production data back to the customer for fixes.
	RequestCorrection

	// SubmitProof hands the produced proof to the customer for sign-off.
	SubmitProof

	// ApproveSpec approves the final specification. This event is ringi-gated.
	ApproveSpec

	// StartProduction releases the order to manufacturing.
	StartProduction

	// Ship dispatches the finished order.
	Ship

	// Deliver records customer receipt of the shipment.
	Deliver

	// Cancel cancels the order. Gated by ringi approval once payment territory
	// is reached; impossible once production has started.
	Cancel
)

// getEventNames returns a map of Event values to their wire names.
// EventUnknown is intentionally excluded to support validation.
func getEventNames() map[Event]string {
	return map[Event]string{
		SubmitQuotation:   "submit_quotation",
		ApproveQuotation:  "approve_quotation",
		ConfirmPayment:    "confirm_payment",
		ReceiveData:       "receive_data",
		RequestCorrection: "request_correction",
		SubmitProof:       "submit_proof",
		ApproveSpec:       "approve_spec",
		StartProduction:   "start_production",
		Ship:              "ship",
		Deliver:           "deliver",
		Cancel:            "cancel",
	}
}

// Validate checks if the Event value is valid.
func (e Event) Validate() error {
	if _, ok := getEventNames()[e]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("event is invalid", fmt.Errorf("%d is not a valid event", e))
	}
	return nil
}

// String returns the wire name of the event.
// Implements fmt.Stringer and is safe to call on any value.
func (e Event) String() string {
	if name, ok := getEventNames()[e]; ok {
		return name
	}
	return "unknown"
}

// EventFromString translates a wire name back into the internal enum.
func EventFromString(name string) (Event, error) {
	for event, n := range getEventNames() {
		if n == name {
			return event, nil
		}
	}
	return EventUnknown, errs.NewValueIsInvalidErrorWithCause(
		"event is invalid",
		fmt.Errorf("%q is not a known order event", name),
	)
}

// AllEvents returns every valid event. Useful for exhaustive checks in callers and tests.
func AllEvents() []Event {
	return []Event{
		SubmitQuotation,
		ApproveQuotation,
		ConfirmPayment,
		ReceiveData,
		RequestCorrection,
		SubmitProof,
		ApproveSpec,
		StartProduction,
		Ship,
		Deliver,
		Cancel,
	}
}
