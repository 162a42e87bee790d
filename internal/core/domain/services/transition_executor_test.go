package services_test

import (
	"testing"
	"time"

	"packorder/internal/core/domain/model/approval"
	"packorder/internal/core/domain/model/history"
	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/core/domain/services"
	"packorder/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var execNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func newExecutor(t *testing.T) *services.TransitionExecutor {
	t.Helper()
	executor, err := services.NewTransitionExecutor(order.NewTransitionTable())
	require.NoError(t, err)
	return executor
}

func restoreOrder(
	t *testing.T, state order.State, milestones order.Milestones, metadata map[string]string,
) *order.OrderContext {
	t.Helper()
	octx, err := order.RestoreOrderContext(
		kernel.NewUUID(), kernel.NewUUID(), state, milestones, metadata, 1,
	)
	require.NoError(t, err)
	return octx
}

func approvedRequest(t *testing.T, orderID kernel.UUID, event order.Event) *approval.Request {
	t.Helper()
	request, err := approval.NewRequest(
		orderID, event, "sales:tanaka", []string{"director:sato"},
		execNow.Add(48*time.Hour), execNow,
	)
	require.NoError(t, err)
	require.NoError(t, request.Approve("director:sato", execNow.Add(time.Hour)))
	return request
}

func TestTransitionExecutor_Execute(t *testing.T) {
	executor := newExecutor(t)

	t.Run("should commit a plain transition and describe its side effects", func(t *testing.T) {
		octx := restoreOrder(t, order.Draft, order.Milestones{}, nil)

		result, err := executor.Execute(octx, order.SubmitQuotation, "sales:tanaka", nil, execNow)

		require.NoError(t, err)
		assert.Equal(t, order.Quotation, result.Context.State())
		assert.Equal(t, order.Draft, octx.State(), "input context must stay untouched")
		require.Len(t, result.SideEffects, 1)
		assert.Equal(t, order.SideEffectNotifyAdmin, result.SideEffects[0].Kind)
		require.NotNil(t, result.Entry)
		assert.Equal(t, history.KindTransition, result.Entry.Kind())
		assert.Equal(t, order.Draft, result.Entry.FromState())
		assert.Equal(t, order.Quotation, result.Entry.ToState())
		assert.Nil(t, result.ConsumedApproval)
	})

	t.Run("should reject every event in a terminal state", func(t *testing.T) {
		octx := restoreOrder(t, order.Delivered, order.Milestones{}, nil)

		_, err := executor.Execute(octx, order.Ship, "sales:tanaka", nil, execNow)

		var rejection *errs.TransitionRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, errs.ReasonTerminalState, rejection.Reason)
	})

	t.Run("should reject an event with no table entry", func(t *testing.T) {
		octx := restoreOrder(t, order.Draft, order.Milestones{}, nil)

		_, err := executor.Execute(octx, order.Ship, "sales:tanaka", nil, execNow)

		var rejection *errs.TransitionRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, errs.ReasonNoSuchTransition, rejection.Reason)
	})

	t.Run("should stamp the milestone of a dated event", func(t *testing.T) {
		octx := restoreOrder(t, order.QuotationApproved, order.Milestones{},
			map[string]string{services.MetadataPaymentAmount: "150000"})

		result, err := executor.Execute(octx, order.ConfirmPayment, "sales:tanaka", nil, execNow)

		require.NoError(t, err)
		require.NotNil(t, result.Context.Milestones().PaymentConfirmedAt)
		assert.True(t, result.Context.Milestones().PaymentConfirmedAt.Equal(execNow))
	})
}

func TestTransitionExecutor_Guards(t *testing.T) {
	executor := newExecutor(t)

	t.Run("should hold production until payment is confirmed", func(t *testing.T) {
		// Production release straight from an approved quotation: legal edge,
		// failing guard, then satisfied guard after the payment lands.
		octx := restoreOrder(t, order.QuotationApproved, order.Milestones{},
			map[string]string{services.MetadataPaymentAmount: "150000"})

		_, err := executor.Execute(octx, order.StartProduction, "sales:tanaka", nil, execNow)
		var rejection *errs.TransitionRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, errs.ReasonGuardFailed, rejection.Reason)
		assert.Equal(t, order.QuotationApproved, octx.State())

		paid, err := executor.Execute(octx, order.ConfirmPayment, "sales:tanaka", nil, execNow)
		require.NoError(t, err)

		released, err := executor.Execute(
			paid.Context, order.StartProduction, "sales:tanaka", nil, execNow.Add(time.Hour),
		)
		require.NoError(t, err)
		assert.Equal(t, order.Production, released.Context.State())
		require.NotNil(t, released.Context.Milestones().ProductionStartedAt)
	})

	t.Run("should require a payment amount before confirming payment", func(t *testing.T) {
		octx := restoreOrder(t, order.QuotationApproved, order.Milestones{}, nil)

		_, err := executor.Execute(octx, order.ConfirmPayment, "sales:tanaka", nil, execNow)

		var rejection *errs.TransitionRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, errs.ReasonGuardFailed, rejection.Reason)
	})

	t.Run("should require a tracking number before shipping", func(t *testing.T) {
		paidAt := execNow.Add(-time.Hour)
		octx := restoreOrder(t, order.Production,
			order.Milestones{PaymentConfirmedAt: &paidAt}, nil)

		_, err := executor.Execute(octx, order.Ship, "factory:ito", nil, execNow)
		var rejection *errs.TransitionRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, errs.ReasonGuardFailed, rejection.Reason)

		octx.PatchMetadata(map[string]string{services.MetadataTrackingNumber: "JP123456789"})
		result, err := executor.Execute(octx, order.Ship, "factory:ito", nil, execNow)
		require.NoError(t, err)
		assert.Equal(t, order.Shipped, result.Context.State())
	})

	t.Run("should require a cancel reason", func(t *testing.T) {
		octx := restoreOrder(t, order.Draft, order.Milestones{}, nil)

		_, err := executor.Execute(octx, order.Cancel, "sales:tanaka", nil, execNow)

		var rejection *errs.TransitionRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, errs.ReasonGuardFailed, rejection.Reason)
	})
}

func TestTransitionExecutor_ApprovalGate(t *testing.T) {
	executor := newExecutor(t)

	t.Run("should ask for an approval request when none exists", func(t *testing.T) {
		octx := restoreOrder(t, order.CustomerApprovalPending, order.Milestones{}, nil)

		_, err := executor.Execute(octx, order.ApproveSpec, "sales:tanaka", nil, execNow)

		var rejection *errs.TransitionRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, errs.ReasonApprovalRequired, rejection.Reason)
		assert.True(t, rejection.NeedsApprovalRequest)
		assert.Empty(t, rejection.PendingApprovalID)
	})

	t.Run("should point at the pending request while undecided", func(t *testing.T) {
		octx := restoreOrder(t, order.CustomerApprovalPending, order.Milestones{}, nil)
		pending, err := approval.NewRequest(
			octx.ID(), order.ApproveSpec, "sales:tanaka",
			[]string{"director:sato"}, execNow.Add(48*time.Hour), execNow,
		)
		require.NoError(t, err)

		_, err = executor.Execute(
			octx, order.ApproveSpec, "sales:tanaka", []*approval.Request{pending}, execNow,
		)

		var rejection *errs.TransitionRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, errs.ReasonApprovalRequired, rejection.Reason)
		assert.False(t, rejection.NeedsApprovalRequest)
		assert.Equal(t, pending.ID().String(), rejection.PendingApprovalID)
	})

	t.Run("should fire a gated transition on an approved request and consume it", func(t *testing.T) {
		octx := restoreOrder(t, order.CustomerApprovalPending, order.Milestones{}, nil)
		request := approvedRequest(t, octx.ID(), order.ApproveSpec)

		result, err := executor.Execute(
			octx, order.ApproveSpec, "sales:tanaka", []*approval.Request{request}, execNow.Add(2*time.Hour),
		)

		require.NoError(t, err)
		assert.Equal(t, order.SpecApproved, result.Context.State())
		require.NotNil(t, result.ConsumedApproval)
		assert.True(t, result.ConsumedApproval.IsConsumed())

		// The same approval authorizes exactly one transition.
		again := restoreOrder(t, order.CustomerApprovalPending, order.Milestones{}, nil)
		_, err = executor.Execute(
			again, order.ApproveSpec, "sales:tanaka", []*approval.Request{request}, execNow.Add(3*time.Hour),
		)
		var rejection *errs.TransitionRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, errs.ReasonApprovalRequired, rejection.Reason)
	})

	t.Run("should expire an overdue pending request instead of honoring it", func(t *testing.T) {
		octx := restoreOrder(t, order.CustomerApprovalPending, order.Milestones{}, nil)
		pending, err := approval.NewRequest(
			octx.ID(), order.ApproveSpec, "sales:tanaka",
			[]string{"director:sato"}, execNow.Add(time.Hour), execNow,
		)
		require.NoError(t, err)

		_, err = executor.Execute(
			octx, order.ApproveSpec, "sales:tanaka",
			[]*approval.Request{pending}, execNow.Add(2*time.Hour),
		)

		var rejection *errs.TransitionRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, errs.ReasonApprovalRequired, rejection.Reason)
		assert.True(t, rejection.NeedsApprovalRequest)
		assert.Equal(t, approval.StatusExpired, pending.Status())
	})

	t.Run("should check guards after the gate", func(t *testing.T) {
		// Gated cancellation with an approval but no cancel reason.
		octx := restoreOrder(t, order.PaymentConfirmed, order.Milestones{}, nil)
		request := approvedRequest(t, octx.ID(), order.Cancel)

		_, err := executor.Execute(
			octx, order.Cancel, "sales:tanaka", []*approval.Request{request}, execNow.Add(2*time.Hour),
		)

		var rejection *errs.TransitionRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, errs.ReasonGuardFailed, rejection.Reason)
		assert.False(t, request.IsConsumed(), "a failed guard must not burn the approval")
	})
}

func TestTransitionExecutor_Rollback(t *testing.T) {
	executor := newExecutor(t)

	t.Run("should step an eligible state back and clear its milestone", func(t *testing.T) {
		approvedAt := execNow.Add(-24 * time.Hour)
		octx := restoreOrder(t, order.QuotationApproved,
			order.Milestones{QuotationApprovedAt: &approvedAt}, nil)

		result, err := executor.Rollback(octx, "admin:yamada", "customer revised volume", execNow)

		require.NoError(t, err)
		assert.Equal(t, order.Quotation, result.Context.State())
		assert.Nil(t, result.Context.Milestones().QuotationApprovedAt)
		assert.Equal(t, order.QuotationApproved, octx.State())
		require.NotNil(t, result.Entry)
		assert.Equal(t, history.KindRollback, result.Entry.Kind())
		assert.Equal(t, "customer revised volume", result.Entry.Note())
	})

	t.Run("should refuse rollback outside the allow-list", func(t *testing.T) {
		octx := restoreOrder(t, order.Production, order.Milestones{}, nil)

		_, err := executor.Rollback(octx, "admin:yamada", "mistake", execNow)

		var rejection *errs.TransitionRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, errs.ReasonNoSuchTransition, rejection.Reason)
	})

	t.Run("should refuse rollback from a terminal state", func(t *testing.T) {
		octx := restoreOrder(t, order.Cancelled, order.Milestones{}, nil)

		_, err := executor.Rollback(octx, "admin:yamada", "mistake", execNow)

		var rejection *errs.TransitionRejectedError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, errs.ReasonTerminalState, rejection.Reason)
	})

	t.Run("should require actor and reason", func(t *testing.T) {
		octx := restoreOrder(t, order.QuotationApproved, order.Milestones{}, nil)

		_, err := executor.Rollback(octx, "", "reason", execNow)
		require.Error(t, err)

		_, err = executor.Rollback(octx, "admin:yamada", "", execNow)
		require.Error(t, err)
	})
}

func TestNewTransitionExecutor(t *testing.T) {
	t.Run("should require a table", func(t *testing.T) {
		_, err := services.NewTransitionExecutor(nil)
		require.Error(t, err)
	})

	t.Run("should reject a zero value executor", func(t *testing.T) {
		var executor services.TransitionExecutor
		require.ErrorIs(t, executor.Validate(), services.ErrTransitionExecutorIsNotConstructed)
	})
}
