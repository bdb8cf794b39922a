package entity

import "time"

// User is the aggregate root for the user domain.
// Passwords are stored as bcrypt hashes in PasswordHash.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
