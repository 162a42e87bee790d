package cmd

import "time"

// Config carries everything the application reads from its environment.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// ApprovalApprovers lists the actors allowed to decide ringi approval
	// requests raised for gated transitions.
	ApprovalApprovers []string
	// ApprovalTTL is how long a raised approval request stays decidable.
	ApprovalTTL time.Duration
	// StuckAfter is how long an order may sit in one non-terminal state before
	// the sweep reports it as stuck.
	StuckAfter time.Duration
	// SweepSchedule is a six-field cron expression for the edge case sweep.
	SweepSchedule string
}
