package http

import (
	"errors"
	"net/http"

	"packorder/internal/core/application/usecases/commands"
	"packorder/internal/core/application/usecases/queries"
	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server exposes the order lifecycle over HTTP.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler       commands.CreateOrderCommandHandler
	executeTransitionHandler *commands.ExecuteTransitionCommandHandler
	rollbackOrderHandler     *commands.RollbackOrderCommandHandler
	decideApprovalHandler    *commands.DecideApprovalCommandHandler
	runRecoveryHandler       *commands.RunRecoveryCommandHandler

	// Query handlers
	getActiveOrdersHandler     queries.GetActiveOrdersQueryHandler
	getPendingApprovalsHandler queries.GetPendingApprovalsQueryHandler
	getStateHistoryHandler     queries.GetStateHistoryQueryHandler
	getStateTimelineHandler    queries.GetStateTimelineQueryHandler
	getStateReportHandler      queries.GetStateChangeReportQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	executeTransitionHandler *commands.ExecuteTransitionCommandHandler,
	rollbackOrderHandler *commands.RollbackOrderCommandHandler,
	decideApprovalHandler *commands.DecideApprovalCommandHandler,
	runRecoveryHandler *commands.RunRecoveryCommandHandler,
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler,
	getPendingApprovalsHandler queries.GetPendingApprovalsQueryHandler,
	getStateHistoryHandler queries.GetStateHistoryQueryHandler,
	getStateTimelineHandler queries.GetStateTimelineQueryHandler,
	getStateReportHandler queries.GetStateChangeReportQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:         createOrderHandler,
		executeTransitionHandler:   executeTransitionHandler,
		rollbackOrderHandler:       rollbackOrderHandler,
		decideApprovalHandler:      decideApprovalHandler,
		runRecoveryHandler:         runRecoveryHandler,
		getActiveOrdersHandler:     getActiveOrdersHandler,
		getPendingApprovalsHandler: getPendingApprovalsHandler,
		getStateHistoryHandler:     getStateHistoryHandler,
		getStateTimelineHandler:    getStateTimelineHandler,
		getStateReportHandler:      getStateReportHandler,
	}
}

// RegisterRoutes mounts all order lifecycle endpoints under /api/v1.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	v1.POST("/orders", s.CreateOrder)
	v1.GET("/orders/active", s.GetOrders)
	v1.POST("/orders/:orderId/events", s.ExecuteTransition)
	v1.POST("/orders/:orderId/rollback", s.RollbackOrder)
	v1.POST("/orders/:orderId/recovery", s.RunRecovery)
	v1.GET("/orders/:orderId/history", s.GetOrderHistory)
	v1.GET("/orders/:orderId/timeline", s.GetOrderTimeline)
	v1.GET("/orders/:orderId/report", s.GetOrderReport)
	v1.GET("/approvals", s.GetApprovals)
	v1.POST("/approvals/:requestId/approve", s.ApproveRequest)
	v1.POST("/approvals/:requestId/reject", s.RejectRequest)
}

// CreateOrder handles POST /api/v1/orders - registers a new order in Draft.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var newOrder NewOrder
	if err := ctx.Bind(&newOrder); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	customerID, err := kernel.UUIDFromString(newOrder.CustomerId.String())
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid customer identifier",
		})
	}

	orderID := kernel.NewUUID()

	cmd, err := commands.NewCreateOrderCommand(orderID, customerID, newOrder.Metadata)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if handleErr := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.writeDomainError(ctx, handleErr, "Failed to create order")
	}

	return ctx.JSON(http.StatusCreated, OrderCreated{OrderId: orderID.Bytes()})
}

// GetOrders handles GET /api/v1/orders/active - retrieves all non-terminal orders.
func (s *Server) GetOrders(ctx echo.Context) error {
	query := queries.NewGetActiveOrdersQuery()

	orders, err := s.getActiveOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve orders",
		})
	}

	response := make([]Order, len(orders))
	for i, o := range orders {
		response[i] = Order{
			Id:         o.ID.Bytes(),
			CustomerId: o.CustomerID.Bytes(),
			State:      o.State.StatusString(),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// ExecuteTransition handles POST /api/v1/orders/:orderId/events - fires a
// lifecycle event against the order's current state.
//
// A committed transition answers 200 with the new state and the side effects to
// dispatch. A transition waiting on a sign-off answers 202 with the approval
// request to chase. Structured rejections map to 409 (no such transition,
// terminal state) and 422 (guard failed).
func (s *Server) ExecuteTransition(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order identifier",
		})
	}

	var body OrderEvent
	if err = ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	event, err := order.EventFromString(body.Event)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Unknown event: " + body.Event,
		})
	}

	cmd, err := commands.NewExecuteTransitionCommand(orderID, event, body.Actor, body.Metadata)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	result, handleErr := s.executeTransitionHandler.Handle(ctx.Request().Context(), cmd)
	if handleErr != nil {
		var rejection *errs.TransitionRejectedError
		if errors.As(handleErr, &rejection) && rejection.Reason == errs.ReasonApprovalRequired {
			return ctx.JSON(http.StatusAccepted, ApprovalPending{
				OrderId:           orderID.Bytes(),
				Event:             body.Event,
				ApprovalRequestId: rejection.PendingApprovalID,
			})
		}
		return s.writeDomainError(ctx, handleErr, "Failed to execute transition")
	}

	effects := make([]string, len(result.SideEffects))
	for i, effect := range result.SideEffects {
		effects[i] = effect.String()
	}

	return ctx.JSON(http.StatusOK, TransitionResult{
		OrderId:     result.OrderID.Bytes(),
		NewState:    result.NewState.StatusString(),
		SideEffects: effects,
	})
}

// RollbackOrder handles POST /api/v1/orders/:orderId/rollback - steps the order
// back to the preceding state where the lifecycle allows it.
func (s *Server) RollbackOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order identifier",
		})
	}

	var body OrderRollback
	if err = ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := commands.NewRollbackOrderCommand(orderID, body.Actor, body.Reason)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	newState, handleErr := s.rollbackOrderHandler.Handle(ctx.Request().Context(), cmd)
	if handleErr != nil {
		return s.writeDomainError(ctx, handleErr, "Failed to roll back order")
	}

	return ctx.JSON(http.StatusOK, TransitionResult{
		OrderId:  orderID.Bytes(),
		NewState: newState.StatusString(),
	})
}

// RunRecovery handles POST /api/v1/orders/:orderId/recovery - detects and
// repairs lifecycle anomalies on one order.
func (s *Server) RunRecovery(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order identifier",
		})
	}

	var body OrderRecovery
	if err = ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := commands.NewRunRecoveryCommand(orderID, body.Actor)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	result, handleErr := s.runRecoveryHandler.Handle(ctx.Request().Context(), cmd)
	if handleErr != nil {
		return s.writeDomainError(ctx, handleErr, "Failed to run recovery")
	}

	response := RecoveryResult{
		OrderId:      orderID.Bytes(),
		Applied:      make([]RecoveryItem, len(result.Applied)),
		Unresolvable: make([]RecoveryItem, len(result.Unresolvable)),
	}
	for i, edgeCase := range result.Applied {
		response.Applied[i] = RecoveryItem{
			Kind:        string(edgeCase.Kind),
			Description: edgeCase.Description,
		}
	}
	for i, edgeCase := range result.Unresolvable {
		response.Unresolvable[i] = RecoveryItem{
			Kind:        string(edgeCase.Kind),
			Description: edgeCase.Description,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetOrderHistory handles GET /api/v1/orders/:orderId/history - returns the
// full audit trail in chronological order.
func (s *Server) GetOrderHistory(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order identifier",
		})
	}

	query, err := queries.NewGetStateHistoryQuery(orderID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	entries, handleErr := s.getStateHistoryHandler.Handle(ctx.Request().Context(), query)
	if handleErr != nil {
		return s.writeDomainError(ctx, handleErr, "Failed to retrieve history")
	}

	response := make([]HistoryEntry, len(entries))
	for i, entry := range entries {
		response[i] = HistoryEntry{
			Id:                entry.ID.Bytes(),
			Kind:              entry.Kind,
			FromState:         entry.FromState,
			ToState:           entry.ToState,
			Event:             entry.Event,
			Actor:             entry.Actor,
			Note:              entry.Note,
			OccurredAt:        entry.OccurredAt,
			DispatchedEffects: entry.DispatchedEffects,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetOrderTimeline handles GET /api/v1/orders/:orderId/timeline - returns the
// spans the order spent in each state.
func (s *Server) GetOrderTimeline(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order identifier",
		})
	}

	query, err := queries.NewGetStateTimelineQuery(orderID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	segments, handleErr := s.getStateTimelineHandler.Handle(ctx.Request().Context(), query)
	if handleErr != nil {
		return s.writeDomainError(ctx, handleErr, "Failed to retrieve timeline")
	}

	response := make([]TimelineSegment, len(segments))
	for i, segment := range segments {
		response[i] = TimelineSegment{
			State:     segment.State,
			EnteredAt: segment.EnteredAt,
			LeftAt:    segment.LeftAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetOrderReport handles GET /api/v1/orders/:orderId/report - returns the
// lifecycle summary derived from the audit trail.
func (s *Server) GetOrderReport(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order identifier",
		})
	}

	query, err := queries.NewGetStateChangeReportQuery(orderID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	report, handleErr := s.getStateReportHandler.Handle(ctx.Request().Context(), query)
	if handleErr != nil {
		return s.writeDomainError(ctx, handleErr, "Failed to build report")
	}

	timeInState := make(map[string]float64, len(report.TimeInState))
	for state, spent := range report.TimeInState {
		timeInState[state] = spent.Seconds()
	}

	return ctx.JSON(http.StatusOK, StateChangeReport{
		OrderId:      report.OrderID.Bytes(),
		CurrentState: report.CurrentState,
		Transitions:  report.Transitions,
		Rollbacks:    report.Rollbacks,
		Recoveries:   report.Recoveries,
		Approvals:    report.Approvals,
		TimeInState:  timeInState,
	})
}

// GetApprovals handles GET /api/v1/approvals - lists open approval requests,
// optionally filtered to one approver via ?approver=.
func (s *Server) GetApprovals(ctx echo.Context) error {
	query := queries.NewGetPendingApprovalsQuery(ctx.QueryParam("approver"))

	requests, err := s.getPendingApprovalsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve approval requests",
		})
	}

	response := make([]ApprovalRequest, len(requests))
	for i, request := range requests {
		response[i] = ApprovalRequest{
			Id:                request.ID.Bytes(),
			OrderId:           request.OrderID.Bytes(),
			Event:             request.Event,
			RequestedBy:       request.RequestedBy,
			RequiredApprovers: request.RequiredApprovers,
			Status:            request.Status,
			Deadline:          request.Deadline,
			CreatedAt:         request.CreatedAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// ApproveRequest handles POST /api/v1/approvals/:requestId/approve.
func (s *Server) ApproveRequest(ctx echo.Context) error {
	requestID, err := kernel.UUIDFromString(ctx.Param("requestId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request identifier",
		})
	}

	var body ApprovalDecision
	if err = ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := commands.NewApproveRequestCommand(requestID, body.Approver)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if handleErr := s.decideApprovalHandler.HandleApprove(ctx.Request().Context(), cmd); handleErr != nil {
		return s.writeDomainError(ctx, handleErr, "Failed to approve request")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RejectRequest handles POST /api/v1/approvals/:requestId/reject.
func (s *Server) RejectRequest(ctx echo.Context) error {
	requestID, err := kernel.UUIDFromString(ctx.Param("requestId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request identifier",
		})
	}

	var body ApprovalDecision
	if err = ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := commands.NewRejectRequestCommand(requestID, body.Approver, body.Reason)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if handleErr := s.decideApprovalHandler.HandleReject(ctx.Request().Context(), cmd); handleErr != nil {
		return s.writeDomainError(ctx, handleErr, "Failed to reject request")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// writeDomainError translates the structured error taxonomy into HTTP answers.
// Unrecognized errors fall through to 500 with the given generic message so
// internal detail never leaks to clients.
func (s *Server) writeDomainError(ctx echo.Context, err error, fallback string) error {
	var rejection *errs.TransitionRejectedError
	if errors.As(err, &rejection) {
		status := http.StatusConflict
		if rejection.Reason == errs.ReasonGuardFailed {
			status = http.StatusUnprocessableEntity
		}
		return ctx.JSON(status, Error{
			Code:    status,
			Message: rejection.Error(),
			Reason:  string(rejection.Reason),
		})
	}

	var decision *errs.ApprovalDecisionError
	if errors.As(err, &decision) {
		status := http.StatusConflict
		switch decision.Failure {
		case errs.DecisionPermissionDenied:
			status = http.StatusForbidden
		case errs.DecisionExpired:
			status = http.StatusGone
		case errs.DecisionAlreadyDecided:
			status = http.StatusConflict
		}
		return ctx.JSON(status, Error{
			Code:    status,
			Message: decision.Error(),
			Reason:  string(decision.Failure),
		})
	}

	var notFound *errs.ObjectNotFoundError
	if errors.As(err, &notFound) {
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: notFound.Error(),
		})
	}

	var stale *errs.VersionIsInvalidError
	if errors.As(err, &stale) {
		return ctx.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Message: "Order was modified concurrently, retry the request",
		})
	}

	return ctx.JSON(http.StatusInternalServerError, Error{
		Code:    http.StatusInternalServerError,
		Message: fallback,
	})
}
