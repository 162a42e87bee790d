package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetStateTimelineQueryHandler derives an order's state-occupancy timeline from
// its audit trail.
type GetStateTimelineQueryHandler struct {
	db *gorm.DB
}

// NewGetStateTimelineQueryHandler creates a handler for timeline queries.
// Requires a GORM database connection for query execution.
func NewGetStateTimelineQueryHandler(db *gorm.DB) GetStateTimelineQueryHandler {
	return GetStateTimelineQueryHandler{db: db}
}

// Handle executes the query and returns the timeline segments in order.
func (h GetStateTimelineQueryHandler) Handle(
	ctx context.Context,
	query GetStateTimelineQuery,
) ([]GetStateTimelineQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	log, err := loadHistoryLog(ctx, h.db, query.OrderID())
	if err != nil {
		return nil, err
	}

	segments := log.Timeline()
	responses := make([]GetStateTimelineQueryResponse, 0, len(segments))
	for _, segment := range segments {
		responses = append(responses, GetStateTimelineQueryResponse{
			State:     segment.State.StatusString(),
			EnteredAt: segment.EnteredAt,
			LeftAt:    segment.LeftAt,
		})
	}

	return responses, nil
}
