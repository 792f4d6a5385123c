package domain

import "time"

// Session is server-held login state registered after a session login.
type Session struct {
	// ID is the identifier of the underlying session handle (the cookie value).
	ID          string
	UserID      int64
	UserEmail   string
	MaxInactive time.Duration
	CreatedAt   time.Time
}
