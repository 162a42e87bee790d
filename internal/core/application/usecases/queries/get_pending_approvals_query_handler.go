package queries

import (
	"context"
	"time"

	"packorder/internal/core/domain/model/approval"
	"packorder/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GetPendingApprovalsQueryHandler retrieves open approval requests from the
// database, presenting overdue ones as expired.
type GetPendingApprovalsQueryHandler struct {
	db *gorm.DB

	now func() time.Time
}

// NewGetPendingApprovalsQueryHandler creates a handler for approval inbox queries.
// Requires a GORM database connection for query execution.
func NewGetPendingApprovalsQueryHandler(db *gorm.DB) GetPendingApprovalsQueryHandler {
	return GetPendingApprovalsQueryHandler{db: db, now: time.Now}
}

// Handle executes the query to retrieve open approval requests.
// The approver filter matches against the stored required_approvers array.
// Results are sorted by creation time, oldest first.
func (h GetPendingApprovalsQueryHandler) Handle(
	ctx context.Context,
	query GetPendingApprovalsQuery,
) ([]GetPendingApprovalsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sql := `
		SELECT
			id,
			order_id,
			event,
			requested_by,
			required_approvers,
			deadline,
			created_at
		FROM approval_requests
		WHERE status = ?
	`
	args := []any{approval.StatusPending.String()}
	if query.ApproverID() != "" {
		sql += ` AND ? = ANY(required_approvers)`
		args = append(args, query.ApproverID())
	}
	sql += ` ORDER BY created_at`

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := h.now()
	requests := make([]GetPendingApprovalsQueryResponse, 0)

	for rows.Next() {
		var id, orderID uuid.UUID
		var event, requestedBy string
		var approvers pq.StringArray
		var deadline, createdAt time.Time

		if err = rows.Scan(&id, &orderID, &event, &requestedBy, &approvers, &deadline, &createdAt); err != nil {
			return nil, err
		}

		requestID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		subjectID, idErr := kernel.UUIDFromBytes(orderID[:])
		if idErr != nil {
			return nil, idErr
		}

		status := approval.StatusPending
		if now.After(deadline) {
			status = approval.StatusExpired
		}

		requests = append(requests, GetPendingApprovalsQueryResponse{
			ID:                requestID,
			OrderID:           subjectID,
			Event:             event,
			RequestedBy:       requestedBy,
			RequiredApprovers: approvers,
			Status:            status.String(),
			Deadline:          deadline,
			CreatedAt:         createdAt,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}
