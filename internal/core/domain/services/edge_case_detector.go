package services

import (
	"errors"
	"fmt"
	"time"

	"packorder/internal/core/domain/model/approval"
	"packorder/internal/core/domain/model/history"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/pkg/errs"
)

// ErrEdgeCaseDetectorIsNotConstructed is returned when an EdgeCaseDetector was
// not created through NewEdgeCaseDetector.
var ErrEdgeCaseDetectorIsNotConstructed = errors.New(
	"EdgeCaseDetector must be created via NewEdgeCaseDetector",
)

// EdgeCaseKind classifies a detected data anomaly on an order.
type EdgeCaseKind string

const (
	// EdgeCaseMissingTimestamp means the current state implies a milestone
	// timestamp that is not set.
	EdgeCaseMissingTimestamp EdgeCaseKind = "MISSING_TIMESTAMP"
	// EdgeCaseTimestampConflict means two set milestones contradict the lifecycle
	// ordering.
	EdgeCaseTimestampConflict EdgeCaseKind = "TIMESTAMP_CONFLICT"
	// EdgeCaseOrphanedApproval means a pending approval gates an event that is no
	// longer legal from the current state.
	EdgeCaseOrphanedApproval EdgeCaseKind = "ORPHANED_APPROVAL"
	// EdgeCaseOverdueApproval means a pending approval passed its deadline.
	EdgeCaseOverdueApproval EdgeCaseKind = "OVERDUE_APPROVAL"
	// EdgeCaseMissingHistory means a non-draft order has no audit trail.
	EdgeCaseMissingHistory EdgeCaseKind = "MISSING_HISTORY"
	// EdgeCaseStuckOrder means a non-terminal order has not changed state for
	// longer than the configured threshold.
	EdgeCaseStuckOrder EdgeCaseKind = "STUCK_ORDER"
)

// EdgeCase is one detected anomaly, with enough reference data for a repair or
// an operator report.
type EdgeCase struct {
	Kind        EdgeCaseKind
	Description string

	// Milestone is set for timestamp anomalies.
	Milestone order.Milestone
	// ApprovalID is set for approval anomalies.
	ApprovalID string
}

// RecoveryResult is the outcome of one recovery pass over an order.
type RecoveryResult struct {
	// Context is the repaired copy of the order context; equal to a clone of the
	// input when no repair touched it.
	Context *order.OrderContext

	// Applied lists the anomalies that were repaired this pass.
	Applied []EdgeCase
	// Unresolvable lists anomalies that need an operator; they are reported, not
	// repaired.
	Unresolvable []EdgeCase

	// Entries are the audit records of the applied repairs.
	Entries []*history.Entry
	// UpdatedApprovals are approval requests whose status a repair changed; the
	// caller persists them.
	UpdatedApprovals []*approval.Request
}

// EdgeCaseDetector finds and repairs data anomalies that historically required
// manual database fixes: milestones lost to partial writes, approval requests
// left dangling by state changes, and orders silently stalled.
//
// Detection is pure; Recover applies only repairs that are safe to re-run, so a
// sweep may process the same order any number of times.
type EdgeCaseDetector struct {
	table *order.TransitionTable

	// stuckAfter is how long an order may sit in one non-terminal state before it
	// is flagged.
	stuckAfter time.Duration

	isConstructed bool
}

// NewEdgeCaseDetector creates a detector over the given transition table.
func NewEdgeCaseDetector(table *order.TransitionTable, stuckAfter time.Duration) (*EdgeCaseDetector, error) {
	if table == nil {
		return nil, errs.NewValueIsRequiredError("table")
	}
	if stuckAfter <= 0 {
		return nil, errs.NewValueIsInvalidError("stuckAfter")
	}
	return &EdgeCaseDetector{table: table, stuckAfter: stuckAfter, isConstructed: true}, nil
}

// Validate ensures the detector was properly constructed.
func (d *EdgeCaseDetector) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrEdgeCaseDetectorIsNotConstructed
	}
	return nil
}

// milestoneSequence is the canonical forward order of milestones; set timestamps
// must not contradict it.
func milestoneSequence() []order.Milestone {
	return []order.Milestone{
		order.MilestoneQuotationApproved,
		order.MilestonePaymentConfirmed,
		order.MilestoneDataReceived,
		order.MilestoneSpecApproved,
		order.MilestoneProductionStarted,
		order.MilestoneShipped,
		order.MilestoneDelivered,
	}
}

// Detect inspects one order without changing anything and returns every anomaly
// it finds.
func (d *EdgeCaseDetector) Detect(
	octx *order.OrderContext,
	approvals []*approval.Request,
	log *history.Log,
	now time.Time,
) ([]EdgeCase, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := octx.Validate(); err != nil {
		return nil, err
	}

	var cases []EdgeCase

	cases = append(cases, d.detectTimestampCases(octx)...)
	cases = append(cases, d.detectApprovalCases(octx, approvals, now)...)
	cases = append(cases, d.detectHistoryCases(octx, log, now)...)

	return cases, nil
}

func (d *EdgeCaseDetector) detectTimestampCases(octx *order.OrderContext) []EdgeCase {
	var cases []EdgeCase
	milestones := octx.Milestones()

	if milestone, ok := order.MilestoneForState(octx.State()); ok && milestones.At(milestone) == nil {
		cases = append(cases, EdgeCase{
			Kind:        EdgeCaseMissingTimestamp,
			Milestone:   milestone,
			Description: fmt.Sprintf("state %s implies %s but it is not set", octx.State().StatusString(), milestone),
		})
	}

	sequence := milestoneSequence()
	for i := 0; i < len(sequence); i++ {
		earlier := milestones.At(sequence[i])
		if earlier == nil {
			continue
		}
		for j := i + 1; j < len(sequence); j++ {
			later := milestones.At(sequence[j])
			if later != nil && later.Before(*earlier) {
				cases = append(cases, EdgeCase{
					Kind:      EdgeCaseTimestampConflict,
					Milestone: sequence[j],
					Description: fmt.Sprintf(
						"%s (%s) precedes %s (%s)",
						sequence[j], later.Format(time.RFC3339), sequence[i], earlier.Format(time.RFC3339),
					),
				})
			}
		}
	}

	return cases
}

func (d *EdgeCaseDetector) detectApprovalCases(
	octx *order.OrderContext, approvals []*approval.Request, now time.Time,
) []EdgeCase {
	var cases []EdgeCase
	for _, request := range approvals {
		if request.Status() != approval.StatusPending {
			continue
		}
		if request.IsOverdue(now) {
			cases = append(cases, EdgeCase{
				Kind:        EdgeCaseOverdueApproval,
				ApprovalID:  request.ID().String(),
				Description: fmt.Sprintf("approval for %s passed its deadline undecided", request.Event()),
			})
			continue
		}
		if !d.table.CanTransition(octx.State(), request.Event()) {
			cases = append(cases, EdgeCase{
				Kind:       EdgeCaseOrphanedApproval,
				ApprovalID: request.ID().String(),
				Description: fmt.Sprintf(
					"approval gates %s, which is not legal from %s",
					request.Event(), octx.State().StatusString(),
				),
			})
		}
	}
	return cases
}

func (d *EdgeCaseDetector) detectHistoryCases(
	octx *order.OrderContext, log *history.Log, now time.Time,
) []EdgeCase {
	var cases []EdgeCase

	if octx.State() != order.InitialState() && (log == nil || log.Len() == 0) {
		cases = append(cases, EdgeCase{
			Kind:        EdgeCaseMissingHistory,
			Description: fmt.Sprintf("order is in %s with no audit trail", octx.State().StatusString()),
		})
	}

	if !octx.State().IsTerminal() && log != nil {
		if lastChange := lastStateChange(log); lastChange != nil &&
			now.Sub(lastChange.OccurredAt()) > d.stuckAfter {
			cases = append(cases, EdgeCase{
				Kind: EdgeCaseStuckOrder,
				Description: fmt.Sprintf(
					"no state change since %s", lastChange.OccurredAt().Format(time.RFC3339),
				),
			})
		}
	}

	return cases
}

func lastStateChange(log *history.Log) *history.Entry {
	entries := log.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].IsStateChange() {
			return entries[i]
		}
	}
	return nil
}

// Recover detects anomalies and applies the repairs that are safe to automate:
// backfilling a missing milestone from the audit trail, expiring overdue
// approvals, and superseding orphaned ones. Everything else is reported as
// unresolvable. Running Recover twice in a row applies nothing the second time.
func (d *EdgeCaseDetector) Recover(
	octx *order.OrderContext,
	approvals []*approval.Request,
	log *history.Log,
	actor string,
	now time.Time,
) (*RecoveryResult, error) {
	cases, err := d.Detect(octx, approvals, log, now)
	if err != nil {
		return nil, err
	}
	if actor == "" {
		return nil, errs.NewValueIsRequiredError("actor")
	}

	result := &RecoveryResult{Context: octx.Clone()}

	for _, edgeCase := range cases {
		switch edgeCase.Kind {
		case EdgeCaseMissingTimestamp:
			d.recoverMissingTimestamp(result, edgeCase, log)
		case EdgeCaseOverdueApproval:
			d.recoverApproval(result, edgeCase, approvals, func(r *approval.Request) bool {
				return r.ExpireIfOverdue(now)
			})
		case EdgeCaseOrphanedApproval:
			d.recoverApproval(result, edgeCase, approvals, func(r *approval.Request) bool {
				return r.Supersede(now)
			})
		default:
			result.Unresolvable = append(result.Unresolvable, edgeCase)
			continue
		}
	}

	for _, applied := range result.Applied {
		entry, entryErr := history.NewEntry(
			result.Context.ID(),
			history.KindRecovery,
			result.Context.State(), result.Context.State(),
			order.EventUnknown,
			actor,
			fmt.Sprintf("%s: %s", applied.Kind, applied.Description),
			now,
			nil,
		)
		if entryErr != nil {
			return nil, entryErr
		}
		result.Entries = append(result.Entries, entry)
	}

	return result, nil
}

// recoverMissingTimestamp backfills the milestone from the audit entry that
// entered the current state. Without such an entry the anomaly stays with the
// operator.
func (d *EdgeCaseDetector) recoverMissingTimestamp(
	result *RecoveryResult, edgeCase EdgeCase, log *history.Log,
) {
	var enteredAt *time.Time
	if log != nil {
		entries := log.Entries()
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].IsStateChange() && entries[i].ToState() == result.Context.State() {
				occurredAt := entries[i].OccurredAt()
				enteredAt = &occurredAt
				break
			}
		}
	}

	if enteredAt == nil {
		result.Unresolvable = append(result.Unresolvable, edgeCase)
		return
	}

	result.Context.BackfillMilestone(edgeCase.Milestone, *enteredAt)
	result.Applied = append(result.Applied, edgeCase)
}

func (d *EdgeCaseDetector) recoverApproval(
	result *RecoveryResult,
	edgeCase EdgeCase,
	approvals []*approval.Request,
	settle func(*approval.Request) bool,
) {
	for _, request := range approvals {
		if request.ID().String() != edgeCase.ApprovalID {
			continue
		}
		if settle(request) {
			result.Applied = append(result.Applied, edgeCase)
			result.UpdatedApprovals = append(result.UpdatedApprovals, request)
		}
		return
	}
	result.Unresolvable = append(result.Unresolvable, edgeCase)
}
