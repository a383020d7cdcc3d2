package models

import "time"

type Photo struct {
	ID        string    `json:"photo_id"`
	EventID   string    `json:"event_id"`
	Filename  string    `json:"filename"`
	Price     float64   `json:"price"`
	Width     int32     `json:"width"`
	Height    int32     `json:"height"`
	CreatedAt time.Time `json:"created_at"`
}
