package queries

import (
	"errors"
	"time"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/pkg/guard"
)

var ErrGetStateHistoryQueryIsNotConstructed = errors.New(
	"GetStateHistoryQuery must be created via NewGetStateHistoryQuery constructor",
)

// GetStateHistoryQuery retrieves an order's full audit trail, oldest first.
//
// Example:
//
//	query, err := NewGetStateHistoryQuery(orderID)
//	if err != nil {
//	    return err
//	}
//
//	entries, err := handler.Handle(ctx, query)
type GetStateHistoryQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetStateHistoryQuery creates a query for an order's audit trail.
func NewGetStateHistoryQuery(orderID kernel.UUID) (GetStateHistoryQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetStateHistoryQuery{}, err
	}

	return GetStateHistoryQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetStateHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetStateHistoryQueryIsNotConstructed)
}

// OrderID returns the subject order's unique identifier.
func (q GetStateHistoryQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetStateHistoryQueryResponse represents one audit entry.
type GetStateHistoryQueryResponse struct {
	ID                kernel.UUID
	Kind              string
	FromState         string
	ToState           string
	Event             string
	Actor             string
	Note              string
	OccurredAt        time.Time
	DispatchedEffects []string
}
