package payment

import "context"

// Payment statuses as reported by the provider. Anything other than
// PaymentStatusPaid is treated as "not yet paid"; the reconciler never
// infers success from the absence of failure.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

type LineItem struct {
	Name      string
	UnitPrice float64
}

type SessionRequest struct {
	Amount     float64
	Currency   string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
	Items      []LineItem
}

type Session struct {
	SessionID string
	URL       string
}

// Status is the provider's view of a session, returned to reconcile
// callers unconditionally.
type Status struct {
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	AmountTotal   float64 `json:"amount_total"`
	Currency      string  `json:"currency"`
}

type CallbackResult struct {
	SessionID     string
	PaymentStatus string
}

// Provider abstracts the external payment processor. Implementations
// must bound every call with the passed context; VerifyCallback must
// reject any payload whose signature cannot be authenticated.
type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetStatus(ctx context.Context, sessionID string) (*Status, error)
	VerifyCallback(payload []byte, signature string) (*CallbackResult, error)
}
