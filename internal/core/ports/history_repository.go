package ports

import (
	"context"

	"packorder/internal/core/domain/model/history"
	"packorder/internal/core/domain/model/kernel"
)

// HistoryRepository defines the persistence contract for the append-only audit
// trail. Entries are never updated or deleted.
type HistoryRepository interface {
	// Add persists a new audit entry.
	Add(ctx context.Context, entry *history.Entry) error

	// GetByOrder retrieves the order's audit entries, oldest first.
	GetByOrder(ctx context.Context, orderID kernel.UUID) ([]*history.Entry, error)

	// GetLastByOrder retrieves the order's most recent audit entry, or nil when
	// no entry exists yet. Used to verify chaining before an append.
	GetLastByOrder(ctx context.Context, orderID kernel.UUID) (*history.Entry, error)
}
