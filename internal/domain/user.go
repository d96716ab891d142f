package domain

import "time"

// User is the domain model for people who can be invited to events.
type User struct {
	ID        int64
	Name      string
	EventRefs []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
