package models

import "time"

// Memory is a writing sample an owner contributed to steer tone and voice.
type Memory struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"-"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
