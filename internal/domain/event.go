package domain

import (
	"fmt"
	"time"
)

// EventStatus enumerates lifecycle states for calendar events.
type EventStatus string

const (
	EventStatusTodo       EventStatus = "TODO"
	EventStatusInProgress EventStatus = "IN_PROGRESS"
	EventStatusCompleted  EventStatus = "COMPLETED"
)

// IsValid reports whether the status is one of the known values.
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusTodo, EventStatusInProgress, EventStatusCompleted:
		return true
	}
	return false
}

// Event is the aggregate for scheduled calendar entries.
type Event struct {
	ID          int64
	Title       string
	Description string
	Status      EventStatus
	StartTime   *time.Time
	EndTime     *time.Time
	Invitees    []User
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasTimeRange reports whether both instants are present. Events without a
// complete time range never participate in overlap resolution.
func (e *Event) HasTimeRange() bool {
	return e.StartTime != nil && e.EndTime != nil
}

// Overlaps reports whether e, starting no later than other, conflicts with
// other under the strict predicate: touching endpoints do not overlap.
func (e *Event) Overlaps(other *Event) bool {
	if !e.HasTimeRange() || !other.HasTimeRange() {
		return false
	}
	return e.EndTime.After(*other.StartTime)
}

// InviteeIDs returns the invitee user ids, deduplicated, in first-seen order.
func (e *Event) InviteeIDs() []int64 {
	seen := make(map[int64]struct{}, len(e.Invitees))
	ids := make([]int64, 0, len(e.Invitees))
	for _, u := range e.Invitees {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		ids = append(ids, u.ID)
	}
	return ids
}

// Ref renders the opaque reference string stored on invitee user records.
// It is derived only from immutable event fields so that the string written
// on creation matches the one removed on deletion.
func (e *Event) Ref() string {
	return fmt.Sprintf("%s: %s - %s", e.Title, formatInstant(e.StartTime), formatInstant(e.EndTime))
}

func formatInstant(t *time.Time) string {
	if t == nil {
		return "unscheduled"
	}
	return t.UTC().Format(time.RFC3339)
}
