// Package historyrepo provides data transfer objects and mapping functions for
// the append-only audit trail. Entries are inserted and read, never updated: the
// repository deliberately exposes no Update or Delete.
package historyrepo

import (
	"time"

	"packorder/internal/core/domain/model/history"
	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// HistoryEntryDTO represents the database structure for persisting audit entries.
// Seq is a database-assigned monotonic sequence that fixes the read order even
// when two entries share a timestamp.
type HistoryEntryDTO struct {
	Seq               int64          `gorm:"primaryKey;autoIncrement"`
	ID                uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	OrderID           uuid.UUID      `gorm:"type:uuid;index"`
	Kind              string         `gorm:"type:varchar(32)"`
	FromState         string         `gorm:"type:varchar(64)"`
	ToState           string         `gorm:"type:varchar(64)"`
	Event             string         `gorm:"type:varchar(64)"`
	Actor             string         `gorm:"type:varchar(255)"`
	Note              string         `gorm:"type:text"`
	OccurredAt        time.Time
	DispatchedEffects pq.StringArray `gorm:"type:text[]"`
}

// TableName specifies the database table name for audit entries.
func (HistoryEntryDTO) TableName() string {
	return "history_entries"
}

// fromDomain converts an audit entry to its database representation.
// Seq is left zero; the database assigns it on insert.
func fromDomain(entry *history.Entry) HistoryEntryDTO {
	event := ""
	if entry.Event() != order.EventUnknown {
		event = entry.Event().String()
	}

	return HistoryEntryDTO{
		ID:                entry.ID().Bytes(),
		OrderID:           entry.OrderID().Bytes(),
		Kind:              entry.Kind().String(),
		FromState:         entry.FromState().StatusString(),
		ToState:           entry.ToState().StatusString(),
		Event:             event,
		Actor:             entry.Actor(),
		Note:              entry.Note(),
		OccurredAt:        entry.OccurredAt(),
		DispatchedEffects: entry.DispatchedEffects(),
	}
}

// toDomain converts a database DTO to an audit entry using RestoreEntry.
func toDomain(dto HistoryEntryDTO) (*history.Entry, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	kind, err := history.ChangeKindFromString(dto.Kind)
	if err != nil {
		return nil, err
	}
	fromState, err := order.StateFromStatus(dto.FromState)
	if err != nil {
		return nil, err
	}
	toState, err := order.StateFromStatus(dto.ToState)
	if err != nil {
		return nil, err
	}

	event := order.EventUnknown
	if dto.Event != "" {
		if event, err = order.EventFromString(dto.Event); err != nil {
			return nil, err
		}
	}

	return history.RestoreEntry(
		id, orderID, kind, fromState, toState, event,
		dto.Actor, dto.Note, dto.OccurredAt, dto.DispatchedEffects,
	)
}
