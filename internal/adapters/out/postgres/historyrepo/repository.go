package historyrepo

import (
	"context"
	"errors"

	"packorder/internal/core/domain/model/history"
	"packorder/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// GormHistoryRepository implements HistoryRepository using GORM.
type GormHistoryRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormHistoryRepository creates a new GORM history repository.
func NewGormHistoryRepository(db *gorm.DB, tracker aggregateTracker) *GormHistoryRepository {
	return &GormHistoryRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add appends a new audit entry.
func (r *GormHistoryRepository) Add(ctx context.Context, entry *history.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	dto := fromDomain(entry)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(entry.ID(), entry)
	return nil
}

// GetByOrder retrieves the order's audit entries, oldest first.
func (r *GormHistoryRepository) GetByOrder(
	ctx context.Context, orderID kernel.UUID,
) ([]*history.Entry, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []HistoryEntryDTO
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("seq").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	entries := make([]*history.Entry, 0, len(dtos))
	for _, dto := range dtos {
		entry, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// GetLastByOrder retrieves the order's most recent audit entry, or nil when the
// order has no history yet.
func (r *GormHistoryRepository) GetLastByOrder(
	ctx context.Context, orderID kernel.UUID,
) (*history.Entry, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto HistoryEntryDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("seq DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return toDomain(dto)
}
