package dto

import (
	"time"

	"github.com/spec-kit/calendar-service/internal/domain"
)

// CreateUserRequest payload for new users.
type CreateUserRequest struct {
	Name string `json:"name"`
}

// UpdateUserRequest payload for partial user updates.
type UpdateUserRequest struct {
	Name *string `json:"name"`
}

// UserSummary is the compact wire representation of a user.
type UserSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserResponse is the full wire representation of a user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Events    []string  `json:"events"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EventCountResponse reports how many events a user is invited to.
type EventCountResponse struct {
	EventCount int `json:"eventCount"`
}

// NewUserSummary maps a domain user to its compact wire form.
func NewUserSummary(user *domain.User) UserSummary {
	return UserSummary{ID: user.ID, Name: user.Name}
}

// NewUserResponse maps a domain user to its wire form.
func NewUserResponse(user *domain.User) UserResponse {
	refs := user.EventRefs
	if refs == nil {
		refs = []string{}
	}
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Events:    refs,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
