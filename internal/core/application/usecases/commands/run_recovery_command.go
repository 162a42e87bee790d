package commands

import (
	"errors"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/pkg/guard"
)

var ErrRunRecoveryCommandIsNotConstructed = errors.New(
	"RunRecoveryCommand must be created via NewRunRecoveryCommand constructor",
)

// RunRecoveryCommand represents a request to detect and repair data anomalies on
// one order: missing milestone timestamps, dangling approval requests, and the
// like. Safe to issue repeatedly; a clean order yields an empty result.
type RunRecoveryCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   string

	guard guard.ConstructorGuard
}

// NewRunRecoveryCommand creates a command to run edge-case recovery on an order.
func NewRunRecoveryCommand(orderID kernel.UUID, actor string) (RunRecoveryCommand, error) {
	command := RunRecoveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setActor(actor),
	); err != nil {
		return RunRecoveryCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c RunRecoveryCommand) Validate() error {
	return c.guard.Validate(ErrRunRecoveryCommandIsNotConstructed)
}

// OrderID returns the target order's unique identifier.
func (c RunRecoveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Actor returns who triggered the recovery, an operator or the sweep job.
func (c RunRecoveryCommand) Actor() string {
	return c.actor
}

func (c *RunRecoveryCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RunRecoveryCommand) setActor(actor string) error {
	if actor == "" {
		return ErrActorIsRequired
	}

	c.actor = actor
	return nil
}
