package ports

import (
	"context"

	"packorder/internal/core/domain/model/approval"
	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"
)

// ApprovalRepository defines the persistence contract for approval requests.
type ApprovalRepository interface {
	// Add persists a new approval request.
	Add(ctx context.Context, request *approval.Request) error

	// Update persists status changes to an existing approval request.
	Update(ctx context.Context, request *approval.Request) error

	// Get retrieves an approval request by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*approval.Request, error)

	// GetOpenByOrder retrieves the order's requests that may still influence a
	// transition: pending ones and approved-but-unconsumed ones.
	GetOpenByOrder(ctx context.Context, orderID kernel.UUID) ([]*approval.Request, error)

	// GetPendingByOrderAndEvent retrieves the pending requests gating the given
	// event for the order. Used to supersede them when a new request is raised.
	GetPendingByOrderAndEvent(
		ctx context.Context, orderID kernel.UUID, event order.Event,
	) ([]*approval.Request, error)
}
