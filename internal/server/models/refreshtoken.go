package models

import "time"

// RefreshToken is a single-use credential that can be exchanged for a new
// token pair. AccessToken is the access token minted alongside it.
type RefreshToken struct {
	ID          string
	UserID      string
	AccessToken string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
