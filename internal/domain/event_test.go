package domain

import (
	"testing"
	"time"
)

func instant(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad instant %q: %v", value, err)
	}
	return &parsed
}

func TestOverlapsStrict(t *testing.T) {
	tests := []struct {
		name     string
		aStart   string
		aEnd     string
		bStart   string
		bEnd     string
		overlaps bool
	}{
		{"overlapping", "2023-11-15T14:00:00Z", "2023-11-15T15:00:00Z", "2023-11-15T14:30:00Z", "2023-11-15T16:00:00Z", true},
		{"touching endpoints", "2023-11-15T10:00:00Z", "2023-11-15T11:00:00Z", "2023-11-15T11:00:00Z", "2023-11-15T12:00:00Z", false},
		{"disjoint", "2023-11-15T10:00:00Z", "2023-11-15T11:00:00Z", "2023-11-15T12:00:00Z", "2023-11-15T13:00:00Z", false},
		{"contained", "2023-11-15T10:00:00Z", "2023-11-15T14:00:00Z", "2023-11-15T11:00:00Z", "2023-11-15T12:00:00Z", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := Event{StartTime: instant(t, tc.aStart), EndTime: instant(t, tc.aEnd)}
			b := Event{StartTime: instant(t, tc.bStart), EndTime: instant(t, tc.bEnd)}
			if got := a.Overlaps(&b); got != tc.overlaps {
				t.Errorf("Overlaps = %v, want %v", got, tc.overlaps)
			}
		})
	}
}

func TestOverlapsMissingTimes(t *testing.T) {
	timed := Event{StartTime: instant(t, "2023-11-15T10:00:00Z"), EndTime: instant(t, "2023-11-15T11:00:00Z")}
	open := Event{StartTime: instant(t, "2023-11-15T10:30:00Z")}

	if timed.Overlaps(&open) {
		t.Error("event without end time must never overlap")
	}
	if open.Overlaps(&timed) {
		t.Error("partial event must never overlap")
	}
}

func TestInviteeIDsDedupes(t *testing.T) {
	event := Event{Invitees: []User{{ID: 2}, {ID: 1}, {ID: 2}}}

	ids := event.InviteeIDs()
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 1 {
		t.Errorf("expected [2 1], got %v", ids)
	}
}

func TestRefDeterministic(t *testing.T) {
	event := Event{
		Title:     "standup",
		StartTime: instant(t, "2023-11-15T14:00:00Z"),
		EndTime:   instant(t, "2023-11-15T15:00:00Z"),
	}

	want := "standup: 2023-11-15T14:00:00Z - 2023-11-15T15:00:00Z"
	if got := event.Ref(); got != want {
		t.Errorf("Ref = %q, want %q", got, want)
	}

	open := Event{Title: "someday"}
	if got := open.Ref(); got != "someday: unscheduled - unscheduled" {
		t.Errorf("Ref for untimed event = %q", got)
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, status := range []EventStatus{EventStatusTodo, EventStatusInProgress, EventStatusCompleted} {
		if !status.IsValid() {
			t.Errorf("%s should be valid", status)
		}
	}
	if EventStatus("DONE").IsValid() {
		t.Error("unknown status should be invalid")
	}
}
