package commands

import "time"

// Clock overrides for deterministic handler tests.

func (h *ExecuteTransitionCommandHandler) SetClock(now func() time.Time) {
	h.now = now
}

func (h *RollbackOrderCommandHandler) SetClock(now func() time.Time) {
	h.now = now
}

func (h *DecideApprovalCommandHandler) SetClock(now func() time.Time) {
	h.now = now
}

func (h *RunRecoveryCommandHandler) SetClock(now func() time.Time) {
	h.now = now
}
