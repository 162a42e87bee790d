// Package jobs provides scheduled background tasks for the order lifecycle service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the service.
//
// # Available Jobs
//
// 1. EdgeCaseSweepJob - Periodically scans all non-terminal orders, repairs
// recoverable lifecycle anomalies (missing milestone timestamps, overdue and
// orphaned approval requests) and logs anomalies that need an operator.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(activeOrdersHandler, recoveryHandler, schedule, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The sweep schedule is a six-field cron expression (with a seconds column) and
// comes from configuration. Every sweep pass is idempotent: an order repaired on
// one pass reports nothing on the next, so overlapping or frequent runs are safe.
//
// # Error Handling
//
// A failure on one order is logged and never aborts the sweep; the remaining
// orders are still processed. Unresolvable anomalies are logged at warn severity
// every pass until an operator intervenes.
package jobs
