package history

import (
	"time"

	"packorder/internal/core/domain/model/order"
	"packorder/internal/pkg/errs"
)

// Log is an in-memory, append-only view of one order's audit history, ordered
// oldest first. It enforces the chaining invariant: every appended entry must
// start where the previous one ended.
type Log struct {
	orderID string
	entries []*Entry
}

// NewLog builds a log from already-persisted entries, verifying the chain as it
// goes. A broken chain means the stored history is corrupt and is reported with
// the offending link.
func NewLog(orderID string, entries []*Entry) (*Log, error) {
	log := &Log{orderID: orderID}
	for _, entry := range entries {
		if err := log.Append(entry); err != nil {
			return nil, err
		}
	}
	return log, nil
}

// OrderID returns the identifier of the order the log belongs to.
func (l *Log) OrderID() string { return l.orderID }

// Entries returns the entries oldest first. The slice must not be mutated.
func (l *Log) Entries() []*Entry { return l.entries }

// Len returns the number of entries in the log.
func (l *Log) Len() int { return len(l.entries) }

// Last returns the most recent entry, or nil for an empty log.
func (l *Log) Last() *Entry {
	if len(l.entries) == 0 {
		return nil
	}
	return l.entries[len(l.entries)-1]
}

// Append adds an entry, enforcing that its fromState equals the previous entry's
// toState. The first entry is exempt. A violation indicates an inconsistency
// between the order context and its history and must be surfaced, not swallowed.
func (l *Log) Append(entry *Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	if last := l.Last(); last != nil && entry.FromState() != last.ToState() {
		return errs.NewHistoryOrderViolationError(
			l.orderID, last.ToState().String(), entry.FromState().String(),
		)
	}

	l.entries = append(l.entries, entry)
	return nil
}

// Segment is one span of time an order spent in a state.
type Segment struct {
	State     order.State
	EnteredAt time.Time

	// LeftAt is nil for the segment the order is still in.
	LeftAt *time.Time
}

// Duration returns how long the segment lasted, measuring the open segment
// against now.
func (s Segment) Duration(now time.Time) time.Duration {
	if s.LeftAt != nil {
		return s.LeftAt.Sub(s.EnteredAt)
	}
	return now.Sub(s.EnteredAt)
}

// Timeline derives the state-occupancy segments from the log. Approval and
// recovery entries do not open segments; only state changes do.
func (l *Log) Timeline() []Segment {
	var segments []Segment
	for _, entry := range l.entries {
		if len(segments) == 0 {
			enteredAt := entry.OccurredAt()
			segments = append(segments, Segment{State: entry.FromState(), EnteredAt: enteredAt})
		}
		if !entry.IsStateChange() {
			continue
		}
		leftAt := entry.OccurredAt()
		segments[len(segments)-1].LeftAt = &leftAt
		segments = append(segments, Segment{State: entry.ToState(), EnteredAt: leftAt})
	}
	return segments
}

// Report summarizes an order's history for operational review.
type Report struct {
	OrderID     string
	Transitions int
	Rollbacks   int
	Recoveries  int
	Approvals   int

	// TimeInState maps each visited state to the total time spent in it, with the
	// open segment measured against the report's reference clock. Keyed by the
	// state's external status string.
	TimeInState map[string]time.Duration

	CurrentState order.State
}

// BuildReport computes the summary report as of now.
func (l *Log) BuildReport(now time.Time) Report {
	report := Report{
		OrderID:     l.orderID,
		TimeInState: map[string]time.Duration{},
	}

	for _, entry := range l.entries {
		switch entry.Kind() {
		case KindTransition:
			report.Transitions++
		case KindRollback:
			report.Rollbacks++
		case KindRecovery:
			report.Recoveries++
		case KindApproval:
			report.Approvals++
		}
	}

	for _, segment := range l.Timeline() {
		report.TimeInState[segment.State.StatusString()] += segment.Duration(now)
	}

	if last := l.Last(); last != nil {
		report.CurrentState = last.ToState()
	}

	return report
}
