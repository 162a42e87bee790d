package commands

import (
	"errors"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/pkg/guard"
)

var (
	ErrApproveRequestCommandIsNotConstructed = errors.New(
		"ApproveRequestCommand must be created via NewApproveRequestCommand constructor",
	)
	ErrRejectRequestCommandIsNotConstructed = errors.New(
		"RejectRequestCommand must be created via NewRejectRequestCommand constructor",
	)
	ErrApproverIsRequired = errors.New("approver is required")
)

// ApproveRequestCommand represents an approver's positive decision on a pending
// approval request.
type ApproveRequestCommand struct { //nolint:recvcheck //using for validation
	requestID  kernel.UUID
	approverID string

	guard guard.ConstructorGuard
}

// NewApproveRequestCommand creates a command to approve a pending request.
func NewApproveRequestCommand(requestID kernel.UUID, approverID string) (ApproveRequestCommand, error) {
	command := ApproveRequestCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setRequestID(requestID),
		command.setApproverID(approverID),
	); err != nil {
		return ApproveRequestCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ApproveRequestCommand) Validate() error {
	return c.guard.Validate(ErrApproveRequestCommandIsNotConstructed)
}

// RequestID returns the approval request's unique identifier.
func (c ApproveRequestCommand) RequestID() kernel.UUID {
	return c.requestID
}

// ApproverID returns the deciding approver.
func (c ApproveRequestCommand) ApproverID() string {
	return c.approverID
}

func (c *ApproveRequestCommand) setRequestID(requestID kernel.UUID) error {
	if err := requestID.Validate(); err != nil {
		return err
	}

	c.requestID = requestID
	return nil
}

func (c *ApproveRequestCommand) setApproverID(approverID string) error {
	if approverID == "" {
		return ErrApproverIsRequired
	}

	c.approverID = approverID
	return nil
}

// RejectRequestCommand represents an approver's negative decision on a pending
// approval request. The reason is mandatory and lands in the audit trail.
type RejectRequestCommand struct { //nolint:recvcheck //using for validation
	requestID  kernel.UUID
	approverID string
	reason     string

	guard guard.ConstructorGuard
}

// NewRejectRequestCommand creates a command to reject a pending request.
func NewRejectRequestCommand(
	requestID kernel.UUID, approverID, reason string,
) (RejectRequestCommand, error) {
	command := RejectRequestCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setRequestID(requestID),
		command.setApproverID(approverID),
		command.setReason(reason),
	); err != nil {
		return RejectRequestCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c RejectRequestCommand) Validate() error {
	return c.guard.Validate(ErrRejectRequestCommandIsNotConstructed)
}

// RequestID returns the approval request's unique identifier.
func (c RejectRequestCommand) RequestID() kernel.UUID {
	return c.requestID
}

// ApproverID returns the deciding approver.
func (c RejectRequestCommand) ApproverID() string {
	return c.approverID
}

// Reason returns the rejection reason.
func (c RejectRequestCommand) Reason() string {
	return c.reason
}

func (c *RejectRequestCommand) setRequestID(requestID kernel.UUID) error {
	if err := requestID.Validate(); err != nil {
		return err
	}

	c.requestID = requestID
	return nil
}

func (c *RejectRequestCommand) setApproverID(approverID string) error {
	if approverID == "" {
		return ErrApproverIsRequired
	}

	c.approverID = approverID
	return nil
}

func (c *RejectRequestCommand) setReason(reason string) error {
	if reason == "" {
		return ErrReasonIsRequired
	}

	c.reason = reason
	return nil
}
