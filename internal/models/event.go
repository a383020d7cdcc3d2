package models

import "time"

type Event struct {
	ID          string    `json:"event_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	IsPublic    bool      `json:"is_public"`
	PhotoCount  int32     `json:"photo_count"`
	CoverPhoto  string    `json:"cover_photo,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
