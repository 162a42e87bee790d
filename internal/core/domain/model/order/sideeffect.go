package order

import "fmt"

// SideEffectKind tags the kind of external action a transition asks the caller to perform.
type SideEffectKind int

const (
	// SideEffectUnknown represents an invalid side effect.
	SideEffectUnknown SideEffectKind = iota

	// SideEffectSendEmail asks the caller to send a templated email.
	SideEffectSendEmail

	// SideEffectNotifyAdmin asks the caller to raise an internal notification.
	SideEffectNotifyAdmin
)

// String returns the wire tag of the side effect kind.
func (k SideEffectKind) String() string {
	switch k {
	case SideEffectSendEmail:
		return "EMAIL"
	case SideEffectNotifyAdmin:
		return "NOTIFY_ADMIN"
	default:
		return "UNKNOWN"
	}
}

// SideEffect describes one external action the caller must dispatch after a
// successful transition. The core only ever describes side effects; it never
// executes them, which keeps transition decisions deterministic and testable
// without mocking mail or storage.
type SideEffect struct {
	// Kind selects the dispatching subsystem.
	Kind SideEffectKind

	// Template names the email template for SideEffectSendEmail, or the
	// notification topic for SideEffectNotifyAdmin.
	Template string

	// Recipient addresses the effect: "customer" or "admin" for emails.
	Recipient string
}

// EmailEffect describes a templated email to a recipient.
func EmailEffect(template, recipient string) SideEffect {
	return SideEffect{Kind: SideEffectSendEmail, Template: template, Recipient: recipient}
}

// NotifyAdminEffect describes an internal notification on a topic.
func NotifyAdminEffect(topic string) SideEffect {
	return SideEffect{Kind: SideEffectNotifyAdmin, Template: topic, Recipient: "admin"}
}

// String renders the descriptor in a compact audit form, suitable for storing
// alongside history entries.
func (e SideEffect) String() string {
	switch e.Kind {
	case SideEffectSendEmail:
		return fmt.Sprintf("%s:%s:%s", e.Kind, e.Template, e.Recipient)
	case SideEffectNotifyAdmin:
		return fmt.Sprintf("%s:%s", e.Kind, e.Template)
	default:
		return e.Kind.String()
	}
}
