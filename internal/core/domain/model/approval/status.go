package approval

import "packorder/internal/pkg/errs"

// Status represents the lifecycle of one approval request.
// The zero value is invalid; requests are created PENDING and settle into
// exactly one of the other statuses.
type Status int

const (
	// StatusUnknown is the invalid zero value.
	StatusUnknown Status = iota
	// StatusPending means the request awaits a decision.
	StatusPending
	// StatusApproved means an authorized approver signed off; the approval can be
	// consumed by exactly one transition.
	StatusApproved
	// StatusRejected means an authorized approver declined the request.
	StatusRejected
	// StatusExpired means the deadline passed before a decision arrived.
	StatusExpired
)

func getStatusNames() map[Status]string {
	return map[Status]string{
		StatusPending:  "PENDING",
		StatusApproved: "APPROVED",
		StatusRejected: "REJECTED",
		StatusExpired:  "EXPIRED",
	}
}

// Validate checks that the status is one of the defined values.
func (s Status) Validate() error {
	if _, ok := getStatusNames()[s]; !ok {
		return errs.NewValueIsInvalidError("approval status")
	}
	return nil
}

// String implements the fmt.Stringer interface.
func (s Status) String() string {
	if name, ok := getStatusNames()[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// StatusFromString parses the external representation of a status.
func StatusFromString(value string) (Status, error) {
	for status, name := range getStatusNames() {
		if name == value {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidError("approval status")
}

// IsSettled reports whether the status is final for the request.
func (s Status) IsSettled() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusExpired
}
