package order_test

import (
	"testing"

	"packorder/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Validate(t *testing.T) {
	t.Run("should accept all declared events", func(t *testing.T) {
		for _, event := range order.AllEvents() {
			assert.NoError(t, event.Validate(), event.String())
		}
	})

	t.Run("should reject unknown event", func(t *testing.T) {
		require.Error(t, order.EventUnknown.Validate())
		require.Error(t, order.Event(99).Validate())
	})
}

func TestEventFromString(t *testing.T) {
	t.Run("should round-trip through the wire name", func(t *testing.T) {
		for _, event := range order.AllEvents() {
			restored, err := order.EventFromString(event.String())
			require.NoError(t, err)
			assert.Equal(t, event, restored)
		}
	})

	t.Run("should reject unknown wire name", func(t *testing.T) {
		_, err := order.EventFromString("teleport")
		require.Error(t, err)
	})
}

func TestMilestoneForEvent(t *testing.T) {
	t.Run("should stamp a milestone for dated events", func(t *testing.T) {
		milestone, ok := order.MilestoneForEvent(order.ConfirmPayment)
		require.True(t, ok)
		assert.Equal(t, order.MilestonePaymentConfirmed, milestone)
	})

	t.Run("should stamp nothing for working-state events", func(t *testing.T) {
		_, ok := order.MilestoneForEvent(order.SubmitQuotation)
		assert.False(t, ok)
		_, ok = order.MilestoneForEvent(order.RequestCorrection)
		assert.False(t, ok)
		_, ok = order.MilestoneForEvent(order.SubmitProof)
		assert.False(t, ok)
	})
}
