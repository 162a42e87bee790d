// Package history models the append-only audit trail of an order's lifecycle.
// Every transition, rollback, recovery action, and approval decision becomes an
// immutable Entry; the Log wraps an order's entries and enforces that each one
// chains onto the previous (fromState equals the prior toState).
//
// Derived views: Timeline reconstructs state-occupancy segments from the
// entries, and BuildReport aggregates counts and time-in-state totals.
package history
