package models

import "time"

type Scope struct {
	ID        string
	CreatedAt time.Time
}
