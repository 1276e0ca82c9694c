package model

import "time"

// AuthUser is the normalized identity of the signed-in customer.
type AuthUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Provider  string    `json:"provider"`
	Phone     string    `json:"phone,omitempty"`
	Favorites []string  `json:"favorites"`
	Orders    []string  `json:"orders"`
	CreatedAt time.Time `json:"createdAt"`
}
