package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/calendar-service/internal/domain"
	"github.com/spec-kit/calendar-service/internal/events"
	"github.com/spec-kit/calendar-service/internal/observability"
	"github.com/spec-kit/calendar-service/internal/repository"
	"github.com/spec-kit/calendar-service/pkg/util"
)

// EventService coordinates event workflows, including the consolidation pass
// that merges a user's temporally overlapping events.
type EventService struct {
	events     repository.EventRepository
	users      repository.UserRepository
	tx         repository.TxRunner
	locker     MergeLocker
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// EventDependencies bundles collaborators for the event service.
type EventDependencies struct {
	EventRepo  repository.EventRepository
	UserRepo   repository.UserRepository
	Tx         repository.TxRunner
	Locker     MergeLocker
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// EventCreateInput describes event creation payload.
type EventCreateInput struct {
	Title       string
	Description string
	Status      domain.EventStatus
	StartTime   *time.Time
	EndTime     *time.Time
	InviteeIDs  []int64
}

// NewEventService constructs the service.
func NewEventService(deps EventDependencies) *EventService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	locker := deps.Locker
	if locker == nil {
		locker = NewMemoryMergeLocker(0)
	}
	return &EventService{
		events:     deps.EventRepo,
		users:      deps.UserRepo,
		tx:         deps.Tx,
		locker:     locker,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// ListEvents returns all events.
func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	list, err := s.events.List(ctx)
	if err != nil {
		return nil, util.NewStoreFailure("list events", err)
	}
	if list == nil {
		list = []domain.Event{}
	}
	return list, nil
}

// GetEvent fetches a single event by id.
func (s *EventService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("event", map[string]any{"event_id": id})
		}
		return nil, util.NewStoreFailure("get event", err)
	}
	return event, nil
}

// CreateEvent creates an event and attaches resolvable invitees.
func (s *EventService) CreateEvent(ctx context.Context, input EventCreateInput) (*domain.Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, util.NewValidationError("title required", nil)
	}
	status := input.Status
	if status == "" {
		status = domain.EventStatusTodo
	}
	if !status.IsValid() {
		return nil, util.NewValidationError("invalid status", map[string]any{"status": status})
	}

	inviteeIDs, err := s.resolveInviteeIDs(ctx, s.users, input.InviteeIDs)
	if err != nil {
		return nil, err
	}

	event := &domain.Event{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
	}
	if err := s.events.Create(ctx, event, inviteeIDs); err != nil {
		return nil, util.NewStoreFailure("create event", err)
	}

	s.publish(ctx, events.Notification{
		Type:      events.NotificationEventCreated,
		SubjectID: event.ID,
		Payload: events.EventCreatedPayload{
			Title:      event.Title,
			InviteeIDs: inviteeIDs,
		},
	})
	return event, nil
}

// DeleteEvent removes an event and its invitee references.
func (s *EventService) DeleteEvent(ctx context.Context, id int64) error {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("event", map[string]any{"event_id": id})
		}
		return util.NewStoreFailure("delete event", err)
	}

	s.publish(ctx, events.Notification{
		Type:      events.NotificationEventDeleted,
		SubjectID: id,
		Payload:   events.EventDeletedPayload{Title: event.Title},
	})
	return nil
}

// MergeAll consolidates the given user's events: overlapping pairs are
// replaced by a combined event spanning both time ranges with the union of
// both invitee sets, and the originals are deleted. The pass is pairwise per
// call; re-running against the result is always safe and eventually reaches a
// fixed point with no overlaps. Returns the surviving and newly created
// events in production order.
func (s *EventService) MergeAll(ctx context.Context, userID int64) ([]domain.Event, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, util.NewStoreFailure("resolve user", err)
	}

	release, err := s.locker.Acquire(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrMergeLocked) {
			return nil, util.NewConflict("merge already in progress", map[string]any{"user_id": userID})
		}
		return nil, util.NewInternalError(err)
	}
	defer release()

	var (
		result        []domain.Event
		createdIDs    []int64
		supersededIDs []int64
	)
	err = s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		eventRepo := s.events.WithTx(tx)
		userRepo := s.users.WithTx(tx)

		list, err := eventRepo.ListByInvitee(ctx, userID)
		if err != nil {
			return util.NewStoreFailure("list events by invitee", err)
		}
		if len(list) == 0 {
			result = []domain.Event{}
			return nil
		}

		plan := buildMergePlan(list)

		// Deletes run first: array_remove strips every occurrence of a ref
		// string, and a merged event spanning exactly one source shares that
		// source's ref. The merged ref must be appended after the prune.
		for _, id := range plan.Superseded {
			if err := eventRepo.Delete(ctx, id); err != nil {
				return util.NewStoreFailure(fmt.Sprintf("delete superseded event %d", id), err)
			}
		}

		out := make([]domain.Event, 0, len(plan.Steps))
		for _, step := range plan.Steps {
			if step.Keep != nil {
				out = append(out, *step.Keep)
				continue
			}

			draft := step.Merge
			inviteeIDs, err := s.resolveInviteeIDs(ctx, userRepo, draft.InviteeIDs)
			if err != nil {
				return err
			}
			merged := &domain.Event{
				Title:       draft.Title,
				Description: draft.Description,
				Status:      draft.Status,
				StartTime:   &draft.StartTime,
				EndTime:     &draft.EndTime,
			}
			if err := eventRepo.Create(ctx, merged, inviteeIDs); err != nil {
				return util.NewStoreFailure(fmt.Sprintf("create merged event for sources %v", draft.SourceIDs), err)
			}
			createdIDs = append(createdIDs, merged.ID)
			out = append(out, *merged)
		}

		supersededIDs = plan.Superseded
		result = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordMerge(userID, len(createdIDs), len(supersededIDs))
	if len(createdIDs) > 0 {
		s.logger.Info("events consolidated",
			zap.Int64("user_id", userID),
			zap.Int64s("created", createdIDs),
			zap.Int64s("superseded", supersededIDs))
		s.publish(ctx, events.Notification{
			Type:      events.NotificationEventsMerged,
			SubjectID: userID,
			Payload: events.EventsMergedPayload{
				UserID:        userID,
				CreatedIDs:    createdIDs,
				SupersededIDs: supersededIDs,
			},
		})
	}
	return result, nil
}

// resolveInviteeIDs drops invitee ids that do not resolve to existing users,
// logging the dropped ids. Order of the surviving ids is preserved.
func (s *EventService) resolveInviteeIDs(ctx context.Context, users repository.UserRepository, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	found, err := users.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, util.NewStoreFailure("resolve invitees", err)
	}
	known := make(map[int64]struct{}, len(found))
	for _, u := range found {
		known[u.ID] = struct{}{}
	}

	resolved := make([]int64, 0, len(ids))
	var dropped []int64
	for _, id := range ids {
		if _, ok := known[id]; ok {
			resolved = append(resolved, id)
		} else {
			dropped = append(dropped, id)
		}
	}
	if len(dropped) > 0 {
		s.logger.Warn("dropping unresolvable invitees", zap.Int64s("user_ids", dropped))
	}
	return resolved, nil
}

func (s *EventService) publish(ctx context.Context, notification events.Notification) {
	if s.dispatcher == nil {
		return
	}
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.Timestamp.IsZero() {
		notification.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, notification)
}
