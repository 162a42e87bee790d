package queries

import (
	"context"

	"packorder/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetStateHistoryQueryHandler retrieves an order's audit trail from the database.
type GetStateHistoryQueryHandler struct {
	db *gorm.DB
}

// NewGetStateHistoryQueryHandler creates a handler for audit trail queries.
// Requires a GORM database connection for query execution.
func NewGetStateHistoryQueryHandler(db *gorm.DB) GetStateHistoryQueryHandler {
	return GetStateHistoryQueryHandler{db: db}
}

// Handle executes the query to retrieve the audit trail, oldest entry first.
func (h GetStateHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetStateHistoryQuery,
) ([]GetStateHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	log, err := loadHistoryLog(ctx, h.db, query.OrderID())
	if err != nil {
		return nil, err
	}

	responses := make([]GetStateHistoryQueryResponse, 0, log.Len())
	for _, entry := range log.Entries() {
		event := ""
		if entry.Event() != order.EventUnknown {
			event = entry.Event().String()
		}

		responses = append(responses, GetStateHistoryQueryResponse{
			ID:                entry.ID(),
			Kind:              entry.Kind().String(),
			FromState:         entry.FromState().StatusString(),
			ToState:           entry.ToState().StatusString(),
			Event:             event,
			Actor:             entry.Actor(),
			Note:              entry.Note(),
			OccurredAt:        entry.OccurredAt(),
			DispatchedEffects: entry.DispatchedEffects(),
		})
	}

	return responses, nil
}
