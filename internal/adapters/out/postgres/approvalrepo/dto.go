// Package approvalrepo provides data transfer objects and mapping functions for
// approval request persistence. It implements the repository pattern for the
// approval aggregate, converting between domain entities and database rows.
package approvalrepo

import (
	"time"

	"packorder/internal/core/domain/model/approval"
	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ApprovalRequestDTO represents the database structure for persisting approval
// requests. The approver allow-list is stored as a native text array so the
// inbox query can filter with ANY() server-side.
type ApprovalRequestDTO struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID      `gorm:"type:uuid;index"`
	Event             string         `gorm:"type:varchar(64)"`
	RequestedBy       string         `gorm:"type:varchar(255)"`
	RequiredApprovers pq.StringArray `gorm:"type:text[]"`
	Status            string         `gorm:"type:varchar(32);index"`
	DecidedBy         string         `gorm:"type:varchar(255)"`
	RejectionReason   string         `gorm:"type:text"`
	Deadline          time.Time
	CreatedAt         time.Time
	DecidedAt         *time.Time
	ConsumedAt        *time.Time
}

// TableName specifies the database table name for approval requests.
func (ApprovalRequestDTO) TableName() string {
	return "approval_requests"
}

// fromDomain converts an approval request to its database representation.
func fromDomain(request *approval.Request) ApprovalRequestDTO {
	return ApprovalRequestDTO{
		ID:                request.ID().Bytes(),
		OrderID:           request.OrderID().Bytes(),
		Event:             request.Event().String(),
		RequestedBy:       request.RequestedBy(),
		RequiredApprovers: request.RequiredApprovers(),
		Status:            request.Status().String(),
		DecidedBy:         request.DecidedBy(),
		RejectionReason:   request.RejectionReason(),
		Deadline:          request.Deadline(),
		CreatedAt:         request.CreatedAt(),
		DecidedAt:         request.DecidedAt(),
		ConsumedAt:        request.ConsumedAt(),
	}
}

// toDomain converts a database DTO to an approval request using RestoreRequest.
func toDomain(dto ApprovalRequestDTO) (*approval.Request, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	event, err := order.EventFromString(dto.Event)
	if err != nil {
		return nil, err
	}
	status, err := approval.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return approval.RestoreRequest(
		id,
		orderID,
		event,
		dto.RequestedBy,
		dto.RequiredApprovers,
		status,
		dto.DecidedBy,
		dto.RejectionReason,
		dto.Deadline,
		dto.CreatedAt,
		dto.DecidedAt,
		dto.ConsumedAt,
	)
}
