package models

import "time"

// Account is a local login used by the stub auth endpoints. It is unrelated to
// Profile rows; nothing in the profile flow requires one.
type Account struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
