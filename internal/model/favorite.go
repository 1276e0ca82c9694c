package model

import "time"

// Favorite links a user to a favorited flyer.
type Favorite struct {
	ID        ID        `json:"id"`
	UserID    ID        `json:"user_id"`
	FlyerID   ID        `json:"flyer_id"`
	CreatedAt time.Time `json:"created_at"`

	Flyer *Flyer `json:"flyer,omitempty"`
}
