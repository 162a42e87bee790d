package orderrepo

import (
	"context"
	"errors"

	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order context to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.OrderContext) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order context to the database.
// The write is guarded by the version the aggregate was loaded with: the row is
// updated and its version bumped only if no concurrent change got there first.
// Select("*") forces cleared milestone columns back to NULL, which a plain
// struct update would silently skip.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.OrderContext) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	loadedVersion := dto.Version
	dto.Version = loadedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, loadedVersion).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewVersionIsInvalidErrorWithCause("order " + aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order context by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.OrderContext, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllActive retrieves all orders in a non-terminal state.
func (r *GormOrderRepository) GetAllActive(ctx context.Context) ([]*order.OrderContext, error) {
	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).
		Find(&dtos, "status NOT IN ?", []string{
			order.Delivered.StatusString(),
			order.Cancelled.StatusString(),
		}).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.OrderContext, 0, len(dtos))
	for _, dto := range dtos {
		octx, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, octx)
	}

	return orders, nil
}
