// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"packorder/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// ApprovalRepoFactory provides access to the approval repository within a transaction.
	ApprovalRepoFactory interface {
		ApprovalRepository() ports.ApprovalRepository
	}

	// HistoryRepoFactory provides access to the audit history repository within a transaction.
	HistoryRepoFactory interface {
		HistoryRepository() ports.HistoryRepository
	}

	// OrderUoW manages transactions for order-only operations.
	// Used when commands only touch the order context.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// UoW manages transactions across the order context, its approval requests,
	// and its audit history. Lifecycle commands change all three atomically:
	// a transition that consumes an approval must commit the state change, the
	// consumed marker, and the audit entry together or not at all.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   orderRepo := uow.OrderRepository()
	//   historyRepo := uow.HistoryRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		ApprovalRepoFactory
		HistoryRepoFactory
	}

	// UoWFactory creates new unit of work instances for lifecycle operations.
	UoWFactory interface {
		Create() UoW
	}
)
