package models

import "time"

// Purchase is a permanent access grant for a (user, photo) pair. At most
// one row exists per pair regardless of how many checkout sessions
// referenced the photo.
type Purchase struct {
	ID          string    `json:"purchase_id"`
	PhotoID     string    `json:"photo_id"`
	UserID      string    `json:"user_id"`
	SessionID   string    `json:"session_id"`
	PurchasedAt time.Time `json:"purchased_at"`
}
