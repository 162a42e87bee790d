package queries

import (
	"context"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler retrieves non-terminal orders from the database.
// Filters out delivered and cancelled orders to provide active workload visibility.
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveOrdersQueryHandler creates a handler for active order queries.
// Requires a GORM database connection for query execution.
func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

// Handle executes the query to retrieve all active orders.
// Results are sorted by order ID for consistent output.
func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetActiveOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_id,
			status
		FROM orders
		WHERE status NOT IN (?, ?)
		ORDER BY id
	`, order.Delivered.StatusString(), order.Cancelled.StatusString()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, customerID uuid.UUID
		var status string

		if err = rows.Scan(&id, &customerID, &status); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		ownerID, idErr := kernel.UUIDFromBytes(customerID[:])
		if idErr != nil {
			return nil, idErr
		}
		state, stateErr := order.StateFromStatus(status)
		if stateErr != nil {
			return nil, stateErr
		}

		orders = append(orders, GetActiveOrdersQueryResponse{
			ID:         orderID,
			CustomerID: ownerID,
			State:      state,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
