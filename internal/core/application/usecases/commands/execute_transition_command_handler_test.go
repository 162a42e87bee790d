package commands_test

import (
	"context"
	"testing"
	"time"

	"packorder/internal/core/application/usecases/commands"
	"packorder/internal/core/domain/model/approval"
	"packorder/internal/core/domain/model/history"
	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/core/domain/services"
	"packorder/internal/core/ports"
	"packorder/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var handlerNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

var testPolicy = commands.ApprovalPolicy{
	Approvers: []string{"director:sato", "director:suzuki"},
	TTL:       48 * time.Hour,
}

type MockApprovalRepository struct{ mock.Mock }

func (m *MockApprovalRepository) Add(ctx context.Context, request *approval.Request) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}
func (m *MockApprovalRepository) Update(ctx context.Context, request *approval.Request) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}
func (m *MockApprovalRepository) Get(ctx context.Context, id kernel.UUID) (*approval.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*approval.Request), args.Error(1)
}
func (m *MockApprovalRepository) GetOpenByOrder(
	ctx context.Context, orderID kernel.UUID,
) ([]*approval.Request, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*approval.Request), args.Error(1)
}
func (m *MockApprovalRepository) GetPendingByOrderAndEvent(
	ctx context.Context, orderID kernel.UUID, event order.Event,
) ([]*approval.Request, error) {
	args := m.Called(ctx, orderID, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*approval.Request), args.Error(1)
}

type MockHistoryRepository struct{ mock.Mock }

func (m *MockHistoryRepository) Add(ctx context.Context, entry *history.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockHistoryRepository) GetByOrder(
	ctx context.Context, orderID kernel.UUID,
) ([]*history.Entry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*history.Entry), args.Error(1)
}
func (m *MockHistoryRepository) GetLastByOrder(
	ctx context.Context, orderID kernel.UUID,
) (*history.Entry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*history.Entry), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}
func (m *MockUoW) ApprovalRepository() ports.ApprovalRepository {
	args := m.Called()
	return args.Get(0).(ports.ApprovalRepository)
}
func (m *MockUoW) HistoryRepository() ports.HistoryRepository {
	args := m.Called()
	return args.Get(0).(ports.HistoryRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type lifecycleMocks struct {
	orderRepo    *MockOrderRepository
	approvalRepo *MockApprovalRepository
	historyRepo  *MockHistoryRepository
	uow          *MockUoW
	factory      *MockUoWFactory
}

// newLifecycleMocks wires a unit of work whose repository getters always hand
// back the same mocks, leaving call expectations to each test.
func newLifecycleMocks() lifecycleMocks {
	m := lifecycleMocks{
		orderRepo:    new(MockOrderRepository),
		approvalRepo: new(MockApprovalRepository),
		historyRepo:  new(MockHistoryRepository),
		uow:          new(MockUoW),
		factory:      new(MockUoWFactory),
	}
	m.factory.On("Create").Return(m.uow).Once()
	m.uow.On("OrderRepository").Return(m.orderRepo).Maybe()
	m.uow.On("ApprovalRepository").Return(m.approvalRepo).Maybe()
	m.uow.On("HistoryRepository").Return(m.historyRepo).Maybe()
	return m
}

func (m lifecycleMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.orderRepo.AssertExpectations(t)
	m.approvalRepo.AssertExpectations(t)
	m.historyRepo.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.factory.AssertExpectations(t)
}

func newTransitionHandler(
	t *testing.T, factory commands.UoWFactory,
) *commands.ExecuteTransitionCommandHandler {
	t.Helper()
	executor, err := services.NewTransitionExecutor(order.NewTransitionTable())
	require.NoError(t, err)
	h, err := commands.NewExecuteTransitionCommandHandler(factory, executor, testPolicy)
	require.NoError(t, err)
	h.SetClock(func() time.Time { return handlerNow })
	return h
}

func mustRestoreOrder(
	t *testing.T, state order.State, metadata map[string]string,
) *order.OrderContext {
	t.Helper()
	octx, err := order.RestoreOrderContext(
		kernel.NewUUID(), kernel.NewUUID(), state, order.Milestones{}, metadata, 3,
	)
	require.NoError(t, err)
	return octx
}

func TestExecuteTransitionCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	m := newLifecycleMocks()
	octx, err := order.NewOrderContext(kernel.NewUUID(), kernel.NewUUID())
	require.NoError(t, err)

	cmd, err := commands.NewExecuteTransitionCommand(
		octx.ID(), order.SubmitQuotation, "sales:tanaka", nil,
	)
	require.NoError(t, err)

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.orderRepo.On("Get", ctx, octx.ID()).Return(octx, nil).Once()
	m.approvalRepo.On("GetOpenByOrder", ctx, octx.ID()).Return([]*approval.Request{}, nil).Once()
	m.orderRepo.On("Update", ctx, mock.AnythingOfType("*order.OrderContext")).Return(nil).Once()
	m.historyRepo.On("GetLastByOrder", ctx, octx.ID()).Return(nil, nil).Once()

	var recorded *history.Entry
	m.historyRepo.On("Add", ctx, mock.AnythingOfType("*history.Entry")).
		Run(func(args mock.Arguments) { recorded = args.Get(1).(*history.Entry) }).
		Return(nil).Once()

	m.uow.On("Commit", ctx).Return(nil).Once()
	m.uow.On("Rollback", ctx).Return(nil).Once()

	h := newTransitionHandler(t, m.factory)
	result, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, result.OrderID.IsEqual(octx.ID()))
	assert.Equal(t, order.Quotation, result.NewState)

	require.NotNil(t, recorded)
	assert.Equal(t, history.KindTransition, recorded.Kind())
	assert.Equal(t, order.Draft, recorded.FromState())
	assert.Equal(t, order.Quotation, recorded.ToState())
	assert.Equal(t, "sales:tanaka", recorded.Actor())
	assert.Equal(t, handlerNow, recorded.OccurredAt())

	m.assertExpectations(t)
}

func TestExecuteTransitionCommandHandler_Handle_RaisesApprovalRequest(t *testing.T) {
	ctx := t.Context()
	m := newLifecycleMocks()
	octx := mustRestoreOrder(t, order.CustomerApprovalPending, nil)

	cmd, err := commands.NewExecuteTransitionCommand(
		octx.ID(), order.ApproveSpec, "sales:tanaka", nil,
	)
	require.NoError(t, err)

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.orderRepo.On("Get", ctx, octx.ID()).Return(octx, nil).Once()
	m.approvalRepo.On("GetOpenByOrder", ctx, octx.ID()).Return([]*approval.Request{}, nil).Once()
	m.approvalRepo.On("GetPendingByOrderAndEvent", ctx, octx.ID(), order.ApproveSpec).
		Return([]*approval.Request{}, nil).Once()

	var raised *approval.Request
	m.approvalRepo.On("Add", ctx, mock.AnythingOfType("*approval.Request")).
		Run(func(args mock.Arguments) { raised = args.Get(1).(*approval.Request) }).
		Return(nil).Once()

	m.historyRepo.On("GetLastByOrder", ctx, octx.ID()).Return(nil, nil).Once()
	m.historyRepo.On("Add", ctx, mock.AnythingOfType("*history.Entry")).Return(nil).Once()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.uow.On("Rollback", ctx).Return(nil).Once()

	h := newTransitionHandler(t, m.factory)
	_, err = h.Handle(ctx, cmd)

	require.Error(t, err)
	var rejection *errs.TransitionRejectedError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, errs.ReasonApprovalRequired, rejection.Reason)
	assert.False(t, rejection.NeedsApprovalRequest)

	require.NotNil(t, raised)
	assert.Equal(t, raised.ID().String(), rejection.PendingApprovalID)
	assert.Equal(t, approval.StatusPending, raised.Status())
	assert.Equal(t, order.ApproveSpec, raised.Event())
	assert.Equal(t, "sales:tanaka", raised.RequestedBy())
	assert.Equal(t, handlerNow.Add(testPolicy.TTL), raised.Deadline())

	m.assertExpectations(t)
}

func TestExecuteTransitionCommandHandler_Handle_ConsumesApproval(t *testing.T) {
	ctx := t.Context()
	m := newLifecycleMocks()
	octx := mustRestoreOrder(t, order.CustomerApprovalPending, nil)

	granted, err := approval.NewRequest(
		octx.ID(), order.ApproveSpec, "sales:tanaka",
		testPolicy.Approvers, handlerNow.Add(testPolicy.TTL), handlerNow,
	)
	require.NoError(t, err)
	require.NoError(t, granted.Approve("director:sato", handlerNow))

	cmd, err := commands.NewExecuteTransitionCommand(
		octx.ID(), order.ApproveSpec, "sales:tanaka", nil,
	)
	require.NoError(t, err)

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.orderRepo.On("Get", ctx, octx.ID()).Return(octx, nil).Once()
	m.approvalRepo.On("GetOpenByOrder", ctx, octx.ID()).
		Return([]*approval.Request{granted}, nil).Once()
	m.orderRepo.On("Update", ctx, mock.AnythingOfType("*order.OrderContext")).Return(nil).Once()
	m.approvalRepo.On("Update", ctx, granted).Return(nil).Once()
	m.historyRepo.On("GetLastByOrder", ctx, octx.ID()).Return(nil, nil).Once()
	m.historyRepo.On("Add", ctx, mock.AnythingOfType("*history.Entry")).Return(nil).Once()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.uow.On("Rollback", ctx).Return(nil).Once()

	h := newTransitionHandler(t, m.factory)
	result, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.SpecApproved, result.NewState)
	assert.True(t, granted.IsConsumed())

	m.assertExpectations(t)
}

func TestExecuteTransitionCommandHandler_Handle_ExpiresOverduePending(t *testing.T) {
	ctx := t.Context()
	m := newLifecycleMocks()
	octx, err := order.NewOrderContext(kernel.NewUUID(), kernel.NewUUID())
	require.NoError(t, err)

	requestedAt := handlerNow.Add(-72 * time.Hour)
	overdue, err := approval.NewRequest(
		octx.ID(), order.Cancel, "sales:tanaka",
		testPolicy.Approvers, handlerNow.Add(-24*time.Hour), requestedAt,
	)
	require.NoError(t, err)

	cmd, err := commands.NewExecuteTransitionCommand(
		octx.ID(), order.SubmitQuotation, "sales:tanaka", nil,
	)
	require.NoError(t, err)

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.orderRepo.On("Get", ctx, octx.ID()).Return(octx, nil).Once()
	m.approvalRepo.On("GetOpenByOrder", ctx, octx.ID()).
		Return([]*approval.Request{overdue}, nil).Once()
	m.approvalRepo.On("Update", ctx, overdue).Return(nil).Once()
	m.orderRepo.On("Update", ctx, mock.AnythingOfType("*order.OrderContext")).Return(nil).Once()
	m.historyRepo.On("GetLastByOrder", ctx, octx.ID()).Return(nil, nil).Once()
	m.historyRepo.On("Add", ctx, mock.AnythingOfType("*history.Entry")).Return(nil).Once()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.uow.On("Rollback", ctx).Return(nil).Once()

	h := newTransitionHandler(t, m.factory)
	result, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Quotation, result.NewState)
	assert.Equal(t, approval.StatusExpired, overdue.Status())

	m.assertExpectations(t)
}

func TestExecuteTransitionCommandHandler_Handle_RejectionLeavesOrderUntouched(t *testing.T) {
	ctx := t.Context()
	m := newLifecycleMocks()
	octx, err := order.NewOrderContext(kernel.NewUUID(), kernel.NewUUID())
	require.NoError(t, err)

	cmd, err := commands.NewExecuteTransitionCommand(
		octx.ID(), order.Ship, "logistics:mori", nil,
	)
	require.NoError(t, err)

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.orderRepo.On("Get", ctx, octx.ID()).Return(octx, nil).Once()
	m.approvalRepo.On("GetOpenByOrder", ctx, octx.ID()).Return([]*approval.Request{}, nil).Once()
	m.uow.On("Rollback", ctx).Return(nil).Once()

	h := newTransitionHandler(t, m.factory)
	_, err = h.Handle(ctx, cmd)

	require.Error(t, err)
	var rejection *errs.TransitionRejectedError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, errs.ReasonNoSuchTransition, rejection.Reason)
	assert.Equal(t, order.Draft, octx.State())

	m.orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit", mock.Anything)
	m.assertExpectations(t)
}

func TestExecuteTransitionCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockUoWFactory)
	h := newTransitionHandler(t, factory)

	_, err := h.Handle(t.Context(), commands.ExecuteTransitionCommand{})

	require.Error(t, err)
	factory.AssertNotCalled(t, "Create")
}

func TestNewExecuteTransitionCommandHandler_InvalidPolicy(t *testing.T) {
	executor, err := services.NewTransitionExecutor(order.NewTransitionTable())
	require.NoError(t, err)
	factory := new(MockUoWFactory)

	t.Run("should reject empty approver list", func(t *testing.T) {
		_, err := commands.NewExecuteTransitionCommandHandler(
			factory, executor, commands.ApprovalPolicy{TTL: time.Hour},
		)
		require.Error(t, err)
	})

	t.Run("should reject non-positive TTL", func(t *testing.T) {
		_, err := commands.NewExecuteTransitionCommandHandler(
			factory, executor, commands.ApprovalPolicy{Approvers: []string{"director:sato"}},
		)
		require.Error(t, err)
	})
}
