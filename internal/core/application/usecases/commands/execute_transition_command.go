package commands

import (
	"errors"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/pkg/guard"
)

var (
	ErrExecuteTransitionCommandIsNotConstructed = errors.New(
		"ExecuteTransitionCommand must be created via NewExecuteTransitionCommand constructor",
	)
	ErrActorIsRequired = errors.New("actor is required")
)

// ExecuteTransitionCommand represents a request to fire one lifecycle event on
// an order. Metadata carries the values the transition's guards may need, e.g.
// payment_amount for payment confirmation or tracking_number for shipping.
//
// Example:
//
//	cmd, err := NewExecuteTransitionCommand(orderID, order.ConfirmPayment, "sales:tanaka",
//	    map[string]string{"payment_amount": "120000"})
//	if err != nil {
//	    return fmt.Errorf("invalid transition request: %w", err)
//	}
//
//	result, err := handler.Handle(ctx, cmd)
type ExecuteTransitionCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	event    order.Event
	actor    string
	metadata map[string]string

	guard guard.ConstructorGuard
}

// NewExecuteTransitionCommand creates a command to fire a lifecycle event.
// Validates that the order ID, event, and actor are all present and valid.
func NewExecuteTransitionCommand(
	orderID kernel.UUID, event order.Event, actor string, metadata map[string]string,
) (ExecuteTransitionCommand, error) {
	command := ExecuteTransitionCommand{
		metadata: metadata,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setEvent(event),
		command.setActor(actor),
	); err != nil {
		return ExecuteTransitionCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrExecuteTransitionCommandIsNotConstructed if validation fails.
func (c ExecuteTransitionCommand) Validate() error {
	return c.guard.Validate(ErrExecuteTransitionCommandIsNotConstructed)
}

// OrderID returns the target order's unique identifier.
func (c ExecuteTransitionCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Event returns the lifecycle event to fire.
func (c ExecuteTransitionCommand) Event() order.Event {
	return c.event
}

// Actor returns who requested the transition.
func (c ExecuteTransitionCommand) Actor() string {
	return c.actor
}

// Metadata returns the metadata patch to apply before guard evaluation.
func (c ExecuteTransitionCommand) Metadata() map[string]string {
	return c.metadata
}

func (c *ExecuteTransitionCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ExecuteTransitionCommand) setEvent(event order.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	c.event = event
	return nil
}

func (c *ExecuteTransitionCommand) setActor(actor string) error {
	if actor == "" {
		return ErrActorIsRequired
	}

	c.actor = actor
	return nil
}
