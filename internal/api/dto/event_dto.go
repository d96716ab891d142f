package dto

import (
	"time"

	"github.com/spec-kit/calendar-service/internal/domain"
)

// CreateEventRequest payload for new events.
type CreateEventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Invitees    []int64    `json:"invitees"`
}

// EventResponse is the wire representation of an event.
type EventResponse struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      string        `json:"status"`
	StartTime   *time.Time    `json:"startTime"`
	EndTime     *time.Time    `json:"endTime"`
	Invitees    []UserSummary `json:"invitees"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// NewEventResponse maps a domain event to its wire form.
func NewEventResponse(event *domain.Event) EventResponse {
	invitees := make([]UserSummary, 0, len(event.Invitees))
	for i := range event.Invitees {
		invitees = append(invitees, NewUserSummary(&event.Invitees[i]))
	}
	return EventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Status:      string(event.Status),
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		Invitees:    invitees,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

// NewEventResponses maps a slice of domain events.
func NewEventResponses(eventList []domain.Event) []EventResponse {
	items := make([]EventResponse, 0, len(eventList))
	for i := range eventList {
		items = append(items, NewEventResponse(&eventList[i]))
	}
	return items
}
