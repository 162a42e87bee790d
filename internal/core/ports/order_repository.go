package ports

import (
	"context"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order contexts.
// Provides methods for storing, retrieving, and querying orders by their
// lifecycle state.
type OrderRepository interface {
	// Add persists a new order context to storage.
	// The context must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.OrderContext) error

	// Update persists changes to an existing order context.
	// The stored row's version must match the context's loaded version;
	// a mismatch means a concurrent change won and yields a version error.
	Update(ctx context.Context, aggregate *order.OrderContext) error

	// Get retrieves an order context by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.OrderContext, error)

	// GetAllActive retrieves every order in a non-terminal state.
	// Used by the edge-case sweep to bound its working set.
	GetAllActive(ctx context.Context) ([]*order.OrderContext, error)
}
