package models

import "time"

// PasswordReset is the outstanding reset token of a user; a user has at most one.
type PasswordReset struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}
