package order

// Milestone identifies one of the dated checkpoints an order passes on its way
// through the lifecycle. Each milestone holds at most one timestamp on the
// order context; transitions stamp them, rollbacks clear them.
type Milestone int

const (
	// MilestoneUnknown represents an invalid milestone.
	MilestoneUnknown Milestone = iota

	// MilestoneQuotationApproved is stamped when the customer accepts the quotation.
	MilestoneQuotationApproved

	// MilestonePaymentConfirmed is stamped when payment is recorded.
	MilestonePaymentConfirmed

	// MilestoneDataReceived is stamped when production data arrives; resubmissions re-stamp it.
	MilestoneDataReceived

	// MilestoneSpecApproved is stamped when the ringi gate approves the final specification.
	MilestoneSpecApproved

	// MilestoneProductionStarted is stamped when the order is released to manufacturing.
	MilestoneProductionStarted

	// MilestoneShipped is stamped when the order leaves the factory.
	MilestoneShipped

	// MilestoneDelivered is stamped when the customer confirms receipt.
	MilestoneDelivered

	// MilestoneCancelled is stamped when the order is cancelled.
	MilestoneCancelled
)

// getMilestoneNames returns a map of Milestone values to their audit names.
func getMilestoneNames() map[Milestone]string {
	return map[Milestone]string{
		MilestoneQuotationApproved: "quotation_approved_at",
		MilestonePaymentConfirmed:  "payment_confirmed_at",
		MilestoneDataReceived:      "data_received_at",
		MilestoneSpecApproved:      "spec_approved_at",
		MilestoneProductionStarted: "production_started_at",
		MilestoneShipped:           "shipped_at",
		MilestoneDelivered:         "delivered_at",
		MilestoneCancelled:         "cancelled_at",
	}
}

// String returns the audit name of the milestone.
func (m Milestone) String() string {
	if name, ok := getMilestoneNames()[m]; ok {
		return name
	}
	return "unknown"
}

// MilestoneForEvent returns the milestone an event stamps, if any.
// Events that only move the order between working states (corrections, proofs)
// stamp nothing.
func MilestoneForEvent(event Event) (Milestone, bool) {
	switch event {
	case ApproveQuotation:
		return MilestoneQuotationApproved, true
	case ConfirmPayment:
		return MilestonePaymentConfirmed, true
	case ReceiveData:
		return MilestoneDataReceived, true
	case ApproveSpec:
		return MilestoneSpecApproved, true
	case StartProduction:
		return MilestoneProductionStarted, true
	case Ship:
		return MilestoneShipped, true
	case Deliver:
		return MilestoneDelivered, true
	case Cancel:
		return MilestoneCancelled, true
	default:
		return MilestoneUnknown, false
	}
}

// MilestoneForState returns the milestone stamped on entry into the state, if any.
// Used by rollback to clear the departed state's milestone and by edge-case
// detection to know which timestamps a state implies.
func MilestoneForState(state State) (Milestone, bool) {
	switch state {
	case QuotationApproved:
		return MilestoneQuotationApproved, true
	case PaymentConfirmed:
		return MilestonePaymentConfirmed, true
	case DataReceived:
		return MilestoneDataReceived, true
	case SpecApproved:
		return MilestoneSpecApproved, true
	case Production:
		return MilestoneProductionStarted, true
	case Shipped:
		return MilestoneShipped, true
	case Delivered:
		return MilestoneDelivered, true
	case Cancelled:
		return MilestoneCancelled, true
	default:
		return MilestoneUnknown, false
	}
}
