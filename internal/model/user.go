package model

import "time"

// User represents the users table
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	RoleID         int64     `json:"role_id"`
	CreatedAt      time.Time `json:"created_at"`
	Role           *Role     `json:"role,omitempty"` // joined on read
}
