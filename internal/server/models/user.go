// Package models holds the persistent records shared by repositories and services.
package models

import "time"

// User is an account able to log in. Password holds the PHC-encoded hash,
// never the plaintext. DeletedAt is set on soft deletion.
type User struct {
	ID        string
	Lastname  string
	Firstname string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
