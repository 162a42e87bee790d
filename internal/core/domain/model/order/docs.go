// Package order models the order lifecycle: the set of states an order moves
// through from draft to delivery, the events that move it, and the static
// transition table that is the single source of truth for which moves are legal.
//
// The package includes:
//   - State and Event: enumerations of lifecycle states and the commands that drive them
//   - TransitionTable: the immutable map of (state, event) edges with their guards,
//     approval requirements, and declared side effects
//   - OrderContext: the aggregate carrying one order's current state, milestone
//     timestamps, and the metadata guards evaluate
//   - SideEffect: a description of work the caller should perform after a
//     transition commits; the domain never executes effects itself
//
// Key business rules:
//   - A transition is legal only if the table has an edge for the (state, event) pair
//   - Terminal states (Delivered, Cancelled) accept no events
//   - Rollbacks are restricted to the table's explicit allow-list and clear the
//     milestone of the state being left
//   - Milestone timestamps are stamped exactly when their transition applies
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
