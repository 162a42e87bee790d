package http

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Error is the common error envelope for all endpoints.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`

	// Reason carries the machine-readable rejection reason when the error is a
	// structured lifecycle rejection, e.g. "NO_SUCH_TRANSITION".
	Reason string `json:"reason,omitempty"`
}

// NewOrder is the request body for order creation.
type NewOrder struct {
	CustomerId openapi_types.UUID `json:"customer_id"`
	Metadata   map[string]string  `json:"metadata,omitempty"`
}

// OrderCreated is the response body for a successful order creation.
type OrderCreated struct {
	OrderId openapi_types.UUID `json:"order_id"`
}

// OrderEvent is the request body for firing a lifecycle event.
type OrderEvent struct {
	Event    string            `json:"event"`
	Actor    string            `json:"actor"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// TransitionResult is the response body for a committed transition.
type TransitionResult struct {
	OrderId     openapi_types.UUID `json:"order_id"`
	NewState    string             `json:"new_state"`
	SideEffects []string           `json:"side_effects,omitempty"`
}

// ApprovalPending is the response body when a gated transition is waiting on a
// sign-off. Returned with HTTP 202.
type ApprovalPending struct {
	OrderId           openapi_types.UUID `json:"order_id"`
	Event             string             `json:"event"`
	ApprovalRequestId string             `json:"approval_request_id"`
}

// OrderRollback is the request body for an administrative rollback.
type OrderRollback struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

// OrderRecovery is the request body for an edge-case recovery pass.
type OrderRecovery struct {
	Actor string `json:"actor"`
}

// RecoveryResult is the response body for a recovery pass.
type RecoveryResult struct {
	OrderId      openapi_types.UUID `json:"order_id"`
	Applied      []RecoveryItem     `json:"applied"`
	Unresolvable []RecoveryItem     `json:"unresolvable"`
}

// RecoveryItem describes one detected anomaly.
type RecoveryItem struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// Order is the summary representation of an in-flight order.
type Order struct {
	Id         openapi_types.UUID `json:"id"`
	CustomerId openapi_types.UUID `json:"customer_id"`
	State      string             `json:"state"`
}

// HistoryEntry is one audit trail record.
type HistoryEntry struct {
	Id                openapi_types.UUID `json:"id"`
	Kind              string             `json:"kind"`
	FromState         string             `json:"from_state"`
	ToState           string             `json:"to_state"`
	Event             string             `json:"event,omitempty"`
	Actor             string             `json:"actor"`
	Note              string             `json:"note,omitempty"`
	OccurredAt        time.Time          `json:"occurred_at"`
	DispatchedEffects []string           `json:"dispatched_effects,omitempty"`
}

// TimelineSegment is one span the order spent in a state.
type TimelineSegment struct {
	State     string     `json:"state"`
	EnteredAt time.Time  `json:"entered_at"`
	LeftAt    *time.Time `json:"left_at,omitempty"`
}

// StateChangeReport is the lifecycle summary of one order.
type StateChangeReport struct {
	OrderId      openapi_types.UUID `json:"order_id"`
	CurrentState string             `json:"current_state"`
	Transitions  int                `json:"transitions"`
	Rollbacks    int                `json:"rollbacks"`
	Recoveries   int                `json:"recoveries"`
	Approvals    int                `json:"approvals"`

	// TimeInState maps each visited state to seconds spent in it.
	TimeInState map[string]float64 `json:"time_in_state_seconds"`
}

// ApprovalRequest is the inbox representation of an open approval request.
type ApprovalRequest struct {
	Id                openapi_types.UUID `json:"id"`
	OrderId           openapi_types.UUID `json:"order_id"`
	Event             string             `json:"event"`
	RequestedBy       string             `json:"requested_by"`
	RequiredApprovers []string           `json:"required_approvers"`
	Status            string             `json:"status"`
	Deadline          time.Time          `json:"deadline"`
	CreatedAt         time.Time          `json:"created_at"`
}

// ApprovalDecision is the request body for approving or rejecting a request.
type ApprovalDecision struct {
	Approver string `json:"approver"`

	// Reason is required for rejections.
	Reason string `json:"reason,omitempty"`
}
