package commands

import (
	"context"

	"packorder/internal/core/domain/model/order"
)

// CreateOrderCommandHandler handles the business logic for order registration.
// Creates new orders in the draft state with their initial metadata.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	cmd, _ := NewCreateOrderCommand(kernel.NewUUID(), customerID, nil)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	// Order is now in draft, ready for quotation submission
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewCreateOrderCommandHandler creates a handler for order registration.
// Requires an OrderUoWFactory for transactional persistence.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the order creation command.
// Constructs the order context in the draft state and persists it.
// Uses a transaction to ensure the order is properly persisted or rolled back on error.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	octx, err := order.NewOrderContext(cmd.OrderID(), cmd.CustomerID())
	if err != nil {
		return err
	}
	octx.PatchMetadata(cmd.Metadata())

	if err = uow.OrderRepository().Add(ctx, octx); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
