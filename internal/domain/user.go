package domain

import "time"

// User is a registered identity that can author updates and be assigned work.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
