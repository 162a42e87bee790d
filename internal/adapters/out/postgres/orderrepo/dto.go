// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order context aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"encoding/json"
	"time"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order contexts.
// The lifecycle state is stored by its external status string, milestone
// timestamps as nullable columns, and metadata as a JSON document. The version
// column backs the optimistic-concurrency check in Update.
type OrderDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID `gorm:"type:uuid;index"`
	Status     string    `gorm:"type:varchar(64);index"`

	QuotationApprovedAt *time.Time
	PaymentConfirmedAt  *time.Time
	DataReceivedAt      *time.Time
	SpecApprovedAt      *time.Time
	ProductionStartedAt *time.Time
	ShippedAt           *time.Time
	DeliveredAt         *time.Time
	CancelledAt         *time.Time

	Metadata string `gorm:"type:text"`
	Version  int64
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order context to its database representation.
func fromDomain(octx *order.OrderContext) (OrderDTO, error) {
	metadata, err := json.Marshal(octx.Metadata())
	if err != nil {
		return OrderDTO{}, err
	}

	milestones := octx.Milestones()

	return OrderDTO{
		ID:                  octx.ID().Bytes(),
		CustomerID:          octx.CustomerID().Bytes(),
		Status:              octx.State().StatusString(),
		QuotationApprovedAt: milestones.QuotationApprovedAt,
		PaymentConfirmedAt:  milestones.PaymentConfirmedAt,
		DataReceivedAt:      milestones.DataReceivedAt,
		SpecApprovedAt:      milestones.SpecApprovedAt,
		ProductionStartedAt: milestones.ProductionStartedAt,
		ShippedAt:           milestones.ShippedAt,
		DeliveredAt:         milestones.DeliveredAt,
		CancelledAt:         milestones.CancelledAt,
		Metadata:            string(metadata),
		Version:             octx.Version(),
	}, nil
}

// toDomain converts a database DTO to an order context using RestoreOrderContext.
func toDomain(dto OrderDTO) (*order.OrderContext, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	state, err := order.StateFromStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{}
	if dto.Metadata != "" {
		if err = json.Unmarshal([]byte(dto.Metadata), &metadata); err != nil {
			return nil, err
		}
	}

	return order.RestoreOrderContext(
		id,
		customerID,
		state,
		order.Milestones{
			QuotationApprovedAt: dto.QuotationApprovedAt,
			PaymentConfirmedAt:  dto.PaymentConfirmedAt,
			DataReceivedAt:      dto.DataReceivedAt,
			SpecApprovedAt:      dto.SpecApprovedAt,
			ProductionStartedAt: dto.ProductionStartedAt,
			ShippedAt:           dto.ShippedAt,
			DeliveredAt:         dto.DeliveredAt,
			CancelledAt:         dto.CancelledAt,
		},
		metadata,
		dto.Version,
	)
}
