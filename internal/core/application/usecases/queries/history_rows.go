package queries

import (
	"context"
	"time"

	"packorder/internal/core/domain/model/history"
	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// loadHistoryLog reads an order's audit entries oldest first and rebuilds the
// domain log, re-verifying the chaining invariant on the way. The history
// queries share this path so their views always agree.
func loadHistoryLog(ctx context.Context, db *gorm.DB, orderID kernel.UUID) (*history.Log, error) {
	rows, err := db.WithContext(ctx).Raw(`
		SELECT
			id,
			kind,
			from_state,
			to_state,
			event,
			actor,
			note,
			occurred_at,
			dispatched_effects
		FROM history_entries
		WHERE order_id = ?
		ORDER BY seq
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*history.Entry, 0)

	for rows.Next() {
		var id uuid.UUID
		var kindName, fromStatus, toStatus, eventName, actor, note string
		var occurredAt time.Time
		var effects pq.StringArray

		if err = rows.Scan(
			&id, &kindName, &fromStatus, &toStatus, &eventName, &actor, &note, &occurredAt, &effects,
		); err != nil {
			return nil, err
		}

		entry, entryErr := restoreHistoryEntry(
			id, orderID, kindName, fromStatus, toStatus, eventName, actor, note, occurredAt, effects,
		)
		if entryErr != nil {
			return nil, entryErr
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return history.NewLog(orderID.String(), entries)
}

func restoreHistoryEntry(
	id uuid.UUID,
	orderID kernel.UUID,
	kindName, fromStatus, toStatus, eventName, actor, note string,
	occurredAt time.Time,
	effects []string,
) (*history.Entry, error) {
	entryID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return nil, err
	}
	kind, err := history.ChangeKindFromString(kindName)
	if err != nil {
		return nil, err
	}
	fromState, err := order.StateFromStatus(fromStatus)
	if err != nil {
		return nil, err
	}
	toState, err := order.StateFromStatus(toStatus)
	if err != nil {
		return nil, err
	}

	// Rollback and recovery entries store no driving event.
	event := order.EventUnknown
	if eventName != "" {
		if event, err = order.EventFromString(eventName); err != nil {
			return nil, err
		}
	}

	return history.RestoreEntry(
		entryID, orderID, kind, fromState, toState, event, actor, note, occurredAt, effects,
	)
}
