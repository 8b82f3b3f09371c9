package billing

import "time"

// CheckoutSession is the redirect handle returned to clients.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// PortalSession is the billing portal redirect handle.
type PortalSession struct {
	URL string `json:"url"`
}

// ConfirmState tracks a guest checkout through confirmation.
type ConfirmState string

const (
	ConfirmStateSubmitted   ConfirmState = "submitted"
	ConfirmStatePolling     ConfirmState = "polling"
	ConfirmStateConfirmed   ConfirmState = "confirmed"
	ConfirmStateAwaitingRep ConfirmState = "awaiting_manual_verification"
)

// ConfirmResult reports the outcome of a guest checkout confirmation.
type ConfirmResult struct {
	State       ConfirmState `json:"state"`
	Email       string       `json:"email,omitempty"`
	Attempts    int          `json:"attempts"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}
