package models

import (
	"time"
)

// UserInfo is the verified identity extracted from the provider's ID token.
type UserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

type Session struct {
	ID        string    `json:"id"`
	User      UserInfo  `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}
