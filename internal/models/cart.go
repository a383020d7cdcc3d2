package models

import "time"

type Cart struct {
	UserID    string    `json:"user_id"`
	PhotoIDs  []string  `json:"photo_ids"`
	CreatedAt time.Time `json:"created_at"`
}
