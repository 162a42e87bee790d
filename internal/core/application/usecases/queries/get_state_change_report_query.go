package queries

import (
	"errors"
	"time"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/pkg/guard"
)

var ErrGetStateChangeReportQueryIsNotConstructed = errors.New(
	"GetStateChangeReportQuery must be created via NewGetStateChangeReportQuery constructor",
)

// GetStateChangeReportQuery summarizes an order's lifecycle for operational
// review: change counts by kind and total time spent in each state.
type GetStateChangeReportQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetStateChangeReportQuery creates a query for an order's lifecycle report.
func NewGetStateChangeReportQuery(orderID kernel.UUID) (GetStateChangeReportQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetStateChangeReportQuery{}, err
	}

	return GetStateChangeReportQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetStateChangeReportQuery) Validate() error {
	return q.guard.Validate(ErrGetStateChangeReportQueryIsNotConstructed)
}

// OrderID returns the subject order's unique identifier.
func (q GetStateChangeReportQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetStateChangeReportQueryResponse represents the lifecycle summary of one order.
type GetStateChangeReportQueryResponse struct {
	OrderID      kernel.UUID
	CurrentState string
	Transitions  int
	Rollbacks    int
	Recoveries   int
	Approvals    int

	// TimeInState maps each visited state to the total time spent in it, with the
	// current state measured against the query time.
	TimeInState map[string]time.Duration
}
