package model

import "time"

// Admin represents an administrative account able to authenticate and manage
// employee records. Passwords are stored as bcrypt hashes.
type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // bcrypt hash, never expose
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
