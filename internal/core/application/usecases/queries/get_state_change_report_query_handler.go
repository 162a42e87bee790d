package queries

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// GetStateChangeReportQueryHandler aggregates an order's audit trail into a
// lifecycle summary.
type GetStateChangeReportQueryHandler struct {
	db *gorm.DB

	now func() time.Time
}

// NewGetStateChangeReportQueryHandler creates a handler for lifecycle reports.
// Requires a GORM database connection for query execution.
func NewGetStateChangeReportQueryHandler(db *gorm.DB) GetStateChangeReportQueryHandler {
	return GetStateChangeReportQueryHandler{db: db, now: time.Now}
}

// Handle executes the query and returns the lifecycle summary as of now.
func (h GetStateChangeReportQueryHandler) Handle(
	ctx context.Context,
	query GetStateChangeReportQuery,
) (GetStateChangeReportQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetStateChangeReportQueryResponse{}, err
	}

	log, err := loadHistoryLog(ctx, h.db, query.OrderID())
	if err != nil {
		return GetStateChangeReportQueryResponse{}, err
	}

	report := log.BuildReport(h.now())

	currentState := ""
	if log.Len() > 0 {
		currentState = report.CurrentState.StatusString()
	}

	return GetStateChangeReportQueryResponse{
		OrderID:      query.OrderID(),
		CurrentState: currentState,
		Transitions:  report.Transitions,
		Rollbacks:    report.Rollbacks,
		Recoveries:   report.Recoveries,
		Approvals:    report.Approvals,
		TimeInState:  report.TimeInState,
	}, nil
}
