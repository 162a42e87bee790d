package approval_test

import (
	"testing"
	"time"

	"packorder/internal/core/domain/model/approval"
	"packorder/internal/core/domain/model/kernel"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow      = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	testDeadline = testNow.Add(48 * time.Hour)
)

func newPendingRequest(t *testing.T) *approval.Request {
	t.Helper()
	request, err := approval.NewRequest(
		kernel.NewUUID(), order.ApproveSpec, "sales:tanaka",
		[]string{"director:sato", "director:suzuki"},
		testDeadline, testNow,
	)
	require.NoError(t, err)
	return request
}

func TestNewRequest(t *testing.T) {
	t.Run("should create pending request with valid input", func(t *testing.T) {
		request := newPendingRequest(t)

		require.NoError(t, request.Validate())
		assert.Equal(t, approval.StatusPending, request.Status())
		assert.Equal(t, order.ApproveSpec, request.Event())
		assert.Equal(t, "sales:tanaka", request.RequestedBy())
		assert.Equal(t, []string{"director:sato", "director:suzuki"}, request.RequiredApprovers())
		assert.Nil(t, request.DecidedAt())
		assert.Nil(t, request.ConsumedAt())
	})

	t.Run("should fail without approvers", func(t *testing.T) {
		_, err := approval.NewRequest(
			kernel.NewUUID(), order.ApproveSpec, "sales:tanaka", nil, testDeadline, testNow,
		)
		require.Error(t, err)
	})

	t.Run("should fail without requester", func(t *testing.T) {
		_, err := approval.NewRequest(
			kernel.NewUUID(), order.ApproveSpec, "", []string{"director:sato"}, testDeadline, testNow,
		)
		require.Error(t, err)
	})

	t.Run("should fail with deadline in the past", func(t *testing.T) {
		_, err := approval.NewRequest(
			kernel.NewUUID(), order.ApproveSpec, "sales:tanaka",
			[]string{"director:sato"}, testNow.Add(-time.Hour), testNow,
		)
		require.Error(t, err)
	})

	t.Run("should fail with invalid event", func(t *testing.T) {
		_, err := approval.NewRequest(
			kernel.NewUUID(), order.EventUnknown, "sales:tanaka",
			[]string{"director:sato"}, testDeadline, testNow,
		)
		require.Error(t, err)
	})
}

func TestRequest_Approve(t *testing.T) {
	t.Run("should settle positively for a listed approver", func(t *testing.T) {
		request := newPendingRequest(t)
		decidedAt := testNow.Add(time.Hour)

		require.NoError(t, request.Approve("director:sato", decidedAt))

		assert.Equal(t, approval.StatusApproved, request.Status())
		assert.Equal(t, "director:sato", request.DecidedBy())
		require.NotNil(t, request.DecidedAt())
		assert.True(t, request.DecidedAt().Equal(decidedAt))
	})

	t.Run("should deny an unlisted actor", func(t *testing.T) {
		request := newPendingRequest(t)

		err := request.Approve("sales:tanaka", testNow.Add(time.Hour))

		var decisionErr *errs.ApprovalDecisionError
		require.ErrorAs(t, err, &decisionErr)
		assert.Equal(t, errs.DecisionPermissionDenied, decisionErr.Failure)
		assert.Equal(t, approval.StatusPending, request.Status())
	})

	t.Run("should expire instead of approving past the deadline", func(t *testing.T) {
		request := newPendingRequest(t)

		err := request.Approve("director:sato", testDeadline.Add(time.Minute))

		var decisionErr *errs.ApprovalDecisionError
		require.ErrorAs(t, err, &decisionErr)
		assert.Equal(t, errs.DecisionExpired, decisionErr.Failure)
		assert.Equal(t, approval.StatusExpired, request.Status())
	})

	t.Run("should refuse a second decision", func(t *testing.T) {
		request := newPendingRequest(t)
		require.NoError(t, request.Approve("director:sato", testNow.Add(time.Hour)))

		err := request.Approve("director:suzuki", testNow.Add(2*time.Hour))

		var decisionErr *errs.ApprovalDecisionError
		require.ErrorAs(t, err, &decisionErr)
		assert.Equal(t, errs.DecisionAlreadyDecided, decisionErr.Failure)
		assert.Equal(t, "director:sato", request.DecidedBy())
	})
}

func TestRequest_Reject(t *testing.T) {
	t.Run("should settle negatively with a reason", func(t *testing.T) {
		request := newPendingRequest(t)

		require.NoError(t, request.Reject("director:suzuki", "budget exceeded", testNow.Add(time.Hour)))

		assert.Equal(t, approval.StatusRejected, request.Status())
		assert.Equal(t, "budget exceeded", request.RejectionReason())
	})

	t.Run("should require a reason", func(t *testing.T) {
		request := newPendingRequest(t)

		err := request.Reject("director:suzuki", "", testNow.Add(time.Hour))

		require.Error(t, err)
		assert.Equal(t, approval.StatusPending, request.Status())
	})
}

func TestRequest_ExpireIfOverdue(t *testing.T) {
	t.Run("should expire a pending request past its deadline", func(t *testing.T) {
		request := newPendingRequest(t)

		changed := request.ExpireIfOverdue(testDeadline.Add(time.Second))

		assert.True(t, changed)
		assert.Equal(t, approval.StatusExpired, request.Status())
	})

	t.Run("should do nothing before the deadline", func(t *testing.T) {
		request := newPendingRequest(t)

		assert.False(t, request.ExpireIfOverdue(testNow.Add(time.Hour)))
		assert.Equal(t, approval.StatusPending, request.Status())
	})

	t.Run("should be idempotent", func(t *testing.T) {
		request := newPendingRequest(t)
		request.ExpireIfOverdue(testDeadline.Add(time.Second))

		assert.False(t, request.ExpireIfOverdue(testDeadline.Add(time.Minute)))
	})

	t.Run("should never touch a settled request", func(t *testing.T) {
		request := newPendingRequest(t)
		require.NoError(t, request.Approve("director:sato", testNow.Add(time.Hour)))

		assert.False(t, request.ExpireIfOverdue(testDeadline.Add(time.Hour)))
		assert.Equal(t, approval.StatusApproved, request.Status())
	})
}

func TestRequest_Supersede(t *testing.T) {
	t.Run("should expire a pending request", func(t *testing.T) {
		request := newPendingRequest(t)

		assert.True(t, request.Supersede(testNow.Add(time.Hour)))
		assert.Equal(t, approval.StatusExpired, request.Status())
	})

	t.Run("should leave settled requests untouched", func(t *testing.T) {
		request := newPendingRequest(t)
		require.NoError(t, request.Reject("director:sato", "no", testNow.Add(time.Hour)))

		assert.False(t, request.Supersede(testNow.Add(2*time.Hour)))
		assert.Equal(t, approval.StatusRejected, request.Status())
	})
}

func TestRequest_Consume(t *testing.T) {
	t.Run("should mark an approved request used exactly once", func(t *testing.T) {
		request := newPendingRequest(t)
		require.NoError(t, request.Approve("director:sato", testNow.Add(time.Hour)))

		require.NoError(t, request.Consume(testNow.Add(2*time.Hour)))
		assert.True(t, request.IsConsumed())

		err := request.Consume(testNow.Add(3 * time.Hour))
		require.ErrorIs(t, err, approval.ErrApprovalNotConsumable)
	})

	t.Run("should refuse a pending request", func(t *testing.T) {
		request := newPendingRequest(t)
		require.ErrorIs(t, request.Consume(testNow), approval.ErrApprovalNotConsumable)
	})
}

func TestRequest_Authorizes(t *testing.T) {
	t.Run("should authorize only the matching event while unconsumed", func(t *testing.T) {
		request := newPendingRequest(t)
		require.NoError(t, request.Approve("director:sato", testNow.Add(time.Hour)))

		assert.True(t, request.Authorizes(order.ApproveSpec))
		assert.False(t, request.Authorizes(order.Cancel))

		require.NoError(t, request.Consume(testNow.Add(2*time.Hour)))
		assert.False(t, request.Authorizes(order.ApproveSpec))
	})

	t.Run("should not authorize while pending", func(t *testing.T) {
		request := newPendingRequest(t)
		assert.False(t, request.Authorizes(order.ApproveSpec))
	})
}

func TestRestoreRequest(t *testing.T) {
	t.Run("should reconstruct a settled request", func(t *testing.T) {
		decidedAt := testNow.Add(time.Hour)
		request, err := approval.RestoreRequest(
			kernel.NewUUID(), kernel.NewUUID(),
			order.Cancel, "sales:tanaka", []string{"director:sato"},
			approval.StatusApproved, "director:sato", "",
			testDeadline, testNow, &decidedAt, nil,
		)

		require.NoError(t, err)
		assert.Equal(t, approval.StatusApproved, request.Status())
		assert.True(t, request.Authorizes(order.Cancel))
	})

	t.Run("should fail with invalid status", func(t *testing.T) {
		_, err := approval.RestoreRequest(
			kernel.NewUUID(), kernel.NewUUID(),
			order.Cancel, "sales:tanaka", []string{"director:sato"},
			approval.StatusUnknown, "", "",
			testDeadline, testNow, nil, nil,
		)
		require.Error(t, err)
	})
}
