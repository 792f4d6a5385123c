package domain

import "time"

// EntityState marks soft-deleted rows.
type EntityState string

const (
	StateActive   EntityState = "ACTIVE"
	StateInactive EntityState = "INACTIVE"
)

// User is the domain model for members who write boards.
type User struct {
	ID           int64
	Name         string
	Age          int
	Email        string
	PasswordHash string
	Role         Role
	State        EntityState
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
