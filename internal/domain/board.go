package domain

import "time"

// Board is a single article posted by a member.
type Board struct {
	ID        int64
	UserID    int64
	Title     string
	Content   string
	State     EntityState
	CreatedAt time.Time
	UpdatedAt time.Time

	// Writer is populated on reads that join the author.
	Writer *User
}
