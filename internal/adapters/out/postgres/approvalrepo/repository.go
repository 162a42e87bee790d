package approvalrepo

import (
	"context"
	"errors"

	"packorder/internal/core/domain/model/approval"
	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormApprovalRepository implements ApprovalRepository using GORM.
type GormApprovalRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormApprovalRepository creates a new GORM approval repository.
func NewGormApprovalRepository(db *gorm.DB, tracker aggregateTracker) *GormApprovalRepository {
	return &GormApprovalRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new approval request to the database.
func (r *GormApprovalRepository) Add(ctx context.Context, request *approval.Request) error {
	if err := request.Validate(); err != nil {
		return err
	}

	dto := fromDomain(request)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(request.ID(), request)
	return nil
}

// Update saves status changes of an existing approval request.
// Select("*") forces NULL-able decision columns to be written even when unset.
func (r *GormApprovalRepository) Update(ctx context.Context, request *approval.Request) error {
	if err := request.Validate(); err != nil {
		return err
	}

	dto := fromDomain(request)
	result := r.db.WithContext(ctx).
		Model(&ApprovalRequestDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(request.ID(), request)
	return nil
}

// Get retrieves an approval request by ID.
func (r *GormApprovalRepository) Get(ctx context.Context, id kernel.UUID) (*approval.Request, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ApprovalRequestDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("approval request", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetOpenByOrder retrieves the order's requests that may still influence a
// transition: pending, and approved but not yet consumed.
func (r *GormApprovalRepository) GetOpenByOrder(
	ctx context.Context, orderID kernel.UUID,
) ([]*approval.Request, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []ApprovalRequestDTO
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Where(
			"status = ? OR (status = ? AND consumed_at IS NULL)",
			approval.StatusPending.String(), approval.StatusApproved.String(),
		).
		Order("created_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetPendingByOrderAndEvent retrieves the pending requests gating the given
// event for the order.
func (r *GormApprovalRepository) GetPendingByOrderAndEvent(
	ctx context.Context, orderID kernel.UUID, event order.Event,
) ([]*approval.Request, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	var dtos []ApprovalRequestDTO
	if err := r.db.WithContext(ctx).
		Where(
			"order_id = ? AND event = ? AND status = ?",
			orderID.Bytes(), event.String(), approval.StatusPending.String(),
		).
		Order("created_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func toDomainSlice(dtos []ApprovalRequestDTO) ([]*approval.Request, error) {
	requests := make([]*approval.Request, 0, len(dtos))
	for _, dto := range dtos {
		request, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, nil
}
