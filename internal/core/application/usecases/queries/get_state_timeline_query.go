package queries

import (
	"errors"
	"time"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/pkg/guard"
)

var ErrGetStateTimelineQueryIsNotConstructed = errors.New(
	"GetStateTimelineQuery must be created via NewGetStateTimelineQuery constructor",
)

// GetStateTimelineQuery reconstructs when an order entered and left each state,
// derived from the audit trail rather than stored separately.
type GetStateTimelineQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetStateTimelineQuery creates a query for an order's state timeline.
func NewGetStateTimelineQuery(orderID kernel.UUID) (GetStateTimelineQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetStateTimelineQuery{}, err
	}

	return GetStateTimelineQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetStateTimelineQuery) Validate() error {
	return q.guard.Validate(ErrGetStateTimelineQueryIsNotConstructed)
}

// OrderID returns the subject order's unique identifier.
func (q GetStateTimelineQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetStateTimelineQueryResponse represents one span the order spent in a state.
type GetStateTimelineQueryResponse struct {
	State     string
	EnteredAt time.Time

	// LeftAt is nil for the state the order is still in.
	LeftAt *time.Time
}
