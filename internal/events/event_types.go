package events

import "time"

// NotificationType enumerates supported event identifiers.
type NotificationType string

const (
	NotificationEventCreated NotificationType = "event_created"
	NotificationEventDeleted NotificationType = "event_deleted"
	NotificationEventsMerged NotificationType = "events_merged"
	NotificationUserCreated  NotificationType = "user_created"
	NotificationUserDeleted  NotificationType = "user_deleted"
)

// Notification represents a domain event emitted by services. SubjectID is
// the id of the calendar event or user the notification is about.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	SubjectID int64            `json:"subject_id"`
	Timestamp time.Time        `json:"timestamp"`
	Payload   interface{}      `json:"payload"`
}

// EventCreatedPayload payload.
type EventCreatedPayload struct {
	Title      string  `json:"title"`
	InviteeIDs []int64 `json:"invitee_ids,omitempty"`
}

// EventDeletedPayload payload.
type EventDeletedPayload struct {
	Title string `json:"title"`
}

// EventsMergedPayload payload.
type EventsMergedPayload struct {
	UserID        int64   `json:"user_id"`
	CreatedIDs    []int64 `json:"created_ids"`
	SupersededIDs []int64 `json:"superseded_ids"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	Name string `json:"name"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct{}
