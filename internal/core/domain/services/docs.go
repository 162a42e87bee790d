// Package services provides domain services that orchestrate business operations
// across multiple domain entities in the order lifecycle. It implements complex
// business workflows that don't naturally belong to a single aggregate root.
//
// The package includes:
//   - TransitionExecutor: the decision core that validates a requested event
//     against the transition table, guards, and approval gate, and produces an
//     updated context plus the side effects to dispatch
//   - EdgeCaseDetector: detection and idempotent repair of data anomalies such
//     as missing milestone timestamps and dangling approval requests
//
// Domain services coordinate between aggregates, implementing business logic that
// spans multiple bounded contexts following Domain-Driven Design principles.
package services
