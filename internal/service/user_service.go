package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/calendar-service/internal/domain"
	"github.com/spec-kit/calendar-service/internal/events"
	"github.com/spec-kit/calendar-service/internal/repository"
	"github.com/spec-kit/calendar-service/pkg/util"
)

// UserService coordinates user workflows.
type UserService struct {
	users      repository.UserRepository
	events     repository.EventRepository
	merger     *EventService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo     repository.UserRepository
	EventRepo    repository.EventRepository
	EventService *EventService
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// UserUpdateInput describes mutable user fields.
type UserUpdateInput struct {
	Name *string
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		events:     deps.EventRepo,
		merger:     deps.EventService,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ListUsers returns all users.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	list, err := s.users.List(ctx)
	if err != nil {
		return nil, util.NewStoreFailure("list users", err)
	}
	if list == nil {
		list = []domain.User{}
	}
	return list, nil
}

// GetUser fetches a single user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, util.NewStoreFailure("get user", err)
	}
	return user, nil
}

// CreateUser registers a new user.
func (s *UserService) CreateUser(ctx context.Context, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, util.NewValidationError("name required", nil)
	}

	user := &domain.User{Name: name, EventRefs: []string{}}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, util.NewStoreFailure("create user", err)
	}

	s.publish(ctx, events.Notification{
		Type:      events.NotificationUserCreated,
		SubjectID: user.ID,
		Payload:   events.UserCreatedPayload{Name: user.Name},
	})
	return user, nil
}

// UpdateUser applies partial updates to a user.
func (s *UserService) UpdateUser(ctx context.Context, id int64, input UserUpdateInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, util.NewValidationError("name cannot be empty", nil)
		}
		user.Name = name
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, util.NewStoreFailure("update user", err)
	}
	return user, nil
}

// DeleteUser removes a user; invitee rows cascade away in the store.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("user", map[string]any{"user_id": id})
		}
		return util.NewStoreFailure("delete user", err)
	}

	s.publish(ctx, events.Notification{
		Type:      events.NotificationUserDeleted,
		SubjectID: id,
		Payload:   events.UserDeletedPayload{},
	})
	return nil
}

// EventCount reports how many events the user is invited to.
func (s *UserService) EventCount(ctx context.Context, userID int64) (int, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return 0, err
	}
	count, err := s.events.CountByInvitee(ctx, userID)
	if err != nil {
		return 0, util.NewStoreFailure("count events by invitee", err)
	}
	return count, nil
}

// MergeEventsAndAssign consolidates the user's events and stores the merged
// events' reference strings on the user record for display.
func (s *UserService) MergeEventsAndAssign(ctx context.Context, userID int64) (*domain.User, error) {
	merged, err := s.merger.MergeAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(merged))
	for i := range merged {
		refs = append(refs, merged[i].Ref())
	}
	user.EventRefs = refs

	if err := s.users.Update(ctx, user); err != nil {
		return nil, util.NewStoreFailure("assign merged event refs", err)
	}
	return user, nil
}

func (s *UserService) publish(ctx context.Context, notification events.Notification) {
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
