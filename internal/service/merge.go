package service

import (
	"strings"
	"time"

	"github.com/spec-kit/calendar-service/internal/domain"
)

// mergedTitlePlaceholder names merged events whose source title is blank.
const mergedTitlePlaceholder = "merged"

// mergeDraft describes a combined event to be created in place of two
// overlapping sources.
type mergeDraft struct {
	Title       string
	Description string
	Status      domain.EventStatus
	StartTime   time.Time
	EndTime     time.Time
	InviteeIDs  []int64
	SourceIDs   []int64
}

// mergeStep is either an existing event passing through unchanged or a draft
// superseding two sources. Exactly one field is set.
type mergeStep struct {
	Keep  *domain.Event
	Merge *mergeDraft
}

// mergePlan is the outcome of one consolidation scan over a user's events.
type mergePlan struct {
	Steps      []mergeStep
	Superseded []int64
}

// buildMergePlan runs the pairwise overlap scan over events sorted ascending
// by start time. For each event not yet superseded it merges with the first
// later event whose start lies strictly before its end; the scan then resumes
// after that partner, so chains of three or more overlapping events collapse
// only pairwise per pass. Events without a complete time range never enter
// the scan and pass through at the end.
func buildMergePlan(eventList []domain.Event) mergePlan {
	var timed, untimed []domain.Event
	for i := range eventList {
		if eventList[i].HasTimeRange() {
			timed = append(timed, eventList[i])
		} else {
			untimed = append(untimed, eventList[i])
		}
	}

	var plan mergePlan
	i := 0
	for i < len(timed) {
		cur := &timed[i]
		partner := -1
		for j := i + 1; j < len(timed); j++ {
			if cur.Overlaps(&timed[j]) {
				partner = j
				break
			}
		}
		if partner < 0 {
			plan.Steps = append(plan.Steps, mergeStep{Keep: cur})
			i++
			continue
		}

		other := &timed[partner]
		draft := &mergeDraft{
			Title:       strings.TrimSpace(cur.Title),
			Description: cur.Description,
			Status:      cur.Status,
			StartTime:   minInstant(*cur.StartTime, *other.StartTime),
			EndTime:     maxInstant(*cur.EndTime, *other.EndTime),
			InviteeIDs:  unionInviteeIDs(cur, other),
			SourceIDs:   []int64{cur.ID, other.ID},
		}
		if draft.Title == "" {
			draft.Title = mergedTitlePlaceholder
		}
		if draft.Status == "" {
			draft.Status = domain.EventStatusTodo
		}
		plan.Steps = append(plan.Steps, mergeStep{Merge: draft})
		plan.Superseded = append(plan.Superseded, cur.ID, other.ID)
		i = partner + 1
	}

	for i := range untimed {
		plan.Steps = append(plan.Steps, mergeStep{Keep: &untimed[i]})
	}
	return plan
}

// unionInviteeIDs dedupes invitee ids across both sources, keeping the
// earlier event's order first.
func unionInviteeIDs(a, b *domain.Event) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0, len(a.Invitees)+len(b.Invitees))
	for _, ev := range []*domain.Event{a, b} {
		for _, id := range ev.InviteeIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

func minInstant(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func maxInstant(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
