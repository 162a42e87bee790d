package queries

import (
	"errors"
	"time"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/pkg/guard"
)

var ErrGetPendingApprovalsQueryIsNotConstructed = errors.New(
	"GetPendingApprovalsQuery must be created via NewGetPendingApprovalsQuery constructor",
)

// GetPendingApprovalsQuery retrieves the approval requests awaiting a decision.
// The view applies lazy expiry: a stored PENDING request whose deadline has
// passed is presented as EXPIRED without waiting for a write to catch up.
//
// The optional approver filter narrows the list to requests the given approver
// may decide, which backs the per-person approval inbox.
type GetPendingApprovalsQuery struct {
	approverID string

	guard guard.ConstructorGuard
}

// NewGetPendingApprovalsQuery creates a query for open approval requests.
// An empty approverID returns every open request.
func NewGetPendingApprovalsQuery(approverID string) GetPendingApprovalsQuery {
	return GetPendingApprovalsQuery{
		approverID: approverID,
		guard:      guard.NewConstructorGuard(),
	}
}

// Validate ensures the query was created through the constructor.
func (q GetPendingApprovalsQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingApprovalsQueryIsNotConstructed)
}

// ApproverID returns the approver filter, or "" for no filter.
func (q GetPendingApprovalsQuery) ApproverID() string {
	return q.approverID
}

// GetPendingApprovalsQueryResponse represents one open approval request.
type GetPendingApprovalsQueryResponse struct {
	ID                kernel.UUID
	OrderID           kernel.UUID
	Event             string
	RequestedBy       string
	RequiredApprovers []string
	Status            string
	Deadline          time.Time
	CreatedAt         time.Time
}
