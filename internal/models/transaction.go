package models

import "time"

type PaymentTransaction struct {
	ID          string     `json:"transaction_id"`
	SessionID   string     `json:"session_id"`
	UserID      string     `json:"user_id"`
	PhotoIDs    []string   `json:"photo_ids"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	Status      StatusType `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type StatusType string

// Status is monotonic: a transaction moves pending -> completed exactly
// once and never back.
const (
	StatusPending   StatusType = "pending"
	StatusCompleted StatusType = "completed"
)
