package commands

import (
	"errors"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/pkg/guard"
)

var (
	ErrRollbackOrderCommandIsNotConstructed = errors.New(
		"RollbackOrderCommand must be created via NewRollbackOrderCommand constructor",
	)
	ErrReasonIsRequired = errors.New("reason is required")
)

// RollbackOrderCommand represents an administrative request to revert an order
// to its prior lifecycle state, e.g. when a customer re-negotiates terms after
// quotation approval. The reason is mandatory and lands in the audit trail.
type RollbackOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   string
	reason  string

	guard guard.ConstructorGuard
}

// NewRollbackOrderCommand creates a command to revert an order one state back.
// Validates that the order ID, actor, and reason are all present.
func NewRollbackOrderCommand(orderID kernel.UUID, actor, reason string) (RollbackOrderCommand, error) {
	command := RollbackOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setActor(actor),
		command.setReason(reason),
	); err != nil {
		return RollbackOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRollbackOrderCommandIsNotConstructed if validation fails.
func (c RollbackOrderCommand) Validate() error {
	return c.guard.Validate(ErrRollbackOrderCommandIsNotConstructed)
}

// OrderID returns the target order's unique identifier.
func (c RollbackOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Actor returns the operator performing the rollback.
func (c RollbackOrderCommand) Actor() string {
	return c.actor
}

// Reason returns the operator's justification for the rollback.
func (c RollbackOrderCommand) Reason() string {
	return c.reason
}

func (c *RollbackOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RollbackOrderCommand) setActor(actor string) error {
	if actor == "" {
		return ErrActorIsRequired
	}

	c.actor = actor
	return nil
}

func (c *RollbackOrderCommand) setReason(reason string) error {
	if reason == "" {
		return ErrReasonIsRequired
	}

	c.reason = reason
	return nil
}
