package commands_test

import (
	"testing"
	"time"

	"packorder/internal/core/application/usecases/commands"
	"packorder/internal/core/domain/model/approval"
	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDecideHandler(factory commands.UoWFactory) *commands.DecideApprovalCommandHandler {
	h := commands.NewDecideApprovalCommandHandler(factory)
	h.SetClock(func() time.Time { return handlerNow })
	return h
}

func pendingCancelRequest(t *testing.T, orderID kernel.UUID) *approval.Request {
	t.Helper()
	request, err := approval.NewRequest(
		orderID, order.Cancel, "sales:tanaka",
		testPolicy.Approvers, handlerNow.Add(testPolicy.TTL), handlerNow,
	)
	require.NoError(t, err)
	return request
}

func TestDecideApprovalCommandHandler_HandleApprove_Success(t *testing.T) {
	ctx := t.Context()
	m := newLifecycleMocks()
	octx := mustRestoreOrder(t, order.QuotationApproved, nil)
	request := pendingCancelRequest(t, octx.ID())

	cmd, err := commands.NewApproveRequestCommand(request.ID(), "director:sato")
	require.NoError(t, err)

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.approvalRepo.On("Get", ctx, request.ID()).Return(request, nil).Once()
	m.approvalRepo.On("Update", ctx, request).Return(nil).Once()
	m.orderRepo.On("Get", ctx, octx.ID()).Return(octx, nil).Once()
	m.historyRepo.On("GetLastByOrder", ctx, octx.ID()).Return(nil, nil).Once()
	m.historyRepo.On("Add", ctx, mock.AnythingOfType("*history.Entry")).Return(nil).Once()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.uow.On("Rollback", ctx).Return(nil).Once()

	h := newDecideHandler(m.factory)
	err = h.HandleApprove(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, request.Status())
	assert.Equal(t, "director:sato", request.DecidedBy())
	m.assertExpectations(t)
}

func TestDecideApprovalCommandHandler_HandleApprove_ExpiredIsPersisted(t *testing.T) {
	ctx := t.Context()
	m := newLifecycleMocks()
	orderID := kernel.NewUUID()

	requestedAt := handlerNow.Add(-72 * time.Hour)
	request, err := approval.NewRequest(
		orderID, order.Cancel, "sales:tanaka",
		testPolicy.Approvers, handlerNow.Add(-24*time.Hour), requestedAt,
	)
	require.NoError(t, err)

	cmd, err := commands.NewApproveRequestCommand(request.ID(), "director:sato")
	require.NoError(t, err)

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.approvalRepo.On("Get", ctx, request.ID()).Return(request, nil).Once()
	m.approvalRepo.On("Update", ctx, request).Return(nil).Once()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.uow.On("Rollback", ctx).Return(nil).Once()

	h := newDecideHandler(m.factory)
	err = h.HandleApprove(ctx, cmd)

	require.Error(t, err)
	var decision *errs.ApprovalDecisionError
	require.ErrorAs(t, err, &decision)
	assert.Equal(t, errs.DecisionExpired, decision.Failure)
	assert.Equal(t, approval.StatusExpired, request.Status())

	m.historyRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestDecideApprovalCommandHandler_HandleApprove_PermissionDenied(t *testing.T) {
	ctx := t.Context()
	m := newLifecycleMocks()
	request := pendingCancelRequest(t, kernel.NewUUID())

	cmd, err := commands.NewApproveRequestCommand(request.ID(), "accountant:yamada")
	require.NoError(t, err)

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.approvalRepo.On("Get", ctx, request.ID()).Return(request, nil).Once()
	m.uow.On("Rollback", ctx).Return(nil).Once()

	h := newDecideHandler(m.factory)
	err = h.HandleApprove(ctx, cmd)

	require.Error(t, err)
	var decision *errs.ApprovalDecisionError
	require.ErrorAs(t, err, &decision)
	assert.Equal(t, errs.DecisionPermissionDenied, decision.Failure)
	assert.Equal(t, approval.StatusPending, request.Status())

	m.approvalRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit", mock.Anything)
	m.assertExpectations(t)
}

func TestDecideApprovalCommandHandler_HandleReject_Success(t *testing.T) {
	ctx := t.Context()
	m := newLifecycleMocks()
	octx := mustRestoreOrder(t, order.QuotationApproved, nil)
	request := pendingCancelRequest(t, octx.ID())

	cmd, err := commands.NewRejectRequestCommand(
		request.ID(), "director:suzuki", "customer wants to proceed after all",
	)
	require.NoError(t, err)

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.approvalRepo.On("Get", ctx, request.ID()).Return(request, nil).Once()
	m.approvalRepo.On("Update", ctx, request).Return(nil).Once()
	m.orderRepo.On("Get", ctx, octx.ID()).Return(octx, nil).Once()
	m.historyRepo.On("GetLastByOrder", ctx, octx.ID()).Return(nil, nil).Once()
	m.historyRepo.On("Add", ctx, mock.AnythingOfType("*history.Entry")).Return(nil).Once()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.uow.On("Rollback", ctx).Return(nil).Once()

	h := newDecideHandler(m.factory)
	err = h.HandleReject(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, approval.StatusRejected, request.Status())
	assert.Equal(t, "customer wants to proceed after all", request.RejectionReason())
	m.assertExpectations(t)
}

func TestNewApproveRequestCommand_Validation(t *testing.T) {
	t.Run("should reject empty approver", func(t *testing.T) {
		_, err := commands.NewApproveRequestCommand(kernel.NewUUID(), "")
		require.ErrorIs(t, err, commands.ErrApproverIsRequired)
	})

	t.Run("should reject invalid request id", func(t *testing.T) {
		_, err := commands.NewApproveRequestCommand(kernel.UUID{}, "director:sato")
		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("should reject zero value on validate", func(t *testing.T) {
		var cmd commands.ApproveRequestCommand
		require.ErrorIs(t, cmd.Validate(), commands.ErrApproveRequestCommandIsNotConstructed)
	})
}

func TestNewRejectRequestCommand_Validation(t *testing.T) {
	t.Run("should reject empty reason", func(t *testing.T) {
		_, err := commands.NewRejectRequestCommand(kernel.NewUUID(), "director:sato", "")
		require.ErrorIs(t, err, commands.ErrReasonIsRequired)
	})

	t.Run("should reject empty approver", func(t *testing.T) {
		_, err := commands.NewRejectRequestCommand(kernel.NewUUID(), "", "budget hold")
		require.ErrorIs(t, err, commands.ErrApproverIsRequired)
	})
}
