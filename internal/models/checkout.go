package models

import "time"

// SnapshotItem is one priced line of a checkout session. The unit price
// is fixed when the session is created and never recomputed from the
// catalog afterwards.
type SnapshotItem struct {
	PhotoID   string  `json:"photo_id"`
	UnitPrice float64 `json:"unit_price"`
}

// CheckoutSession binds a user, a price snapshot and the payment
// provider's session id. Immutable once created; exactly one
// PaymentTransaction exists per session.
type CheckoutSession struct {
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id"`
	Items     []SnapshotItem `json:"items"`
	Total     float64        `json:"total"`
	Currency  string         `json:"currency"`
	CreatedAt time.Time      `json:"created_at"`
}
