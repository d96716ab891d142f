package service

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/calendar-service/internal/domain"
	"github.com/spec-kit/calendar-service/internal/repository"
)

// memoryStore backs the fake repositories with shared in-memory state so
// event creation/deletion and user reference bookkeeping stay consistent,
// mirroring what the Postgres implementation does.
type memoryStore struct {
	mu        sync.Mutex
	users     map[int64]*domain.User
	events    map[int64]*domain.Event
	invitees  map[int64][]int64
	nextUser  int64
	nextEvent int64

	createErr error
	deleteErr error

	createCalls int
	deleteCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    make(map[int64]*domain.User),
		events:   make(map[int64]*domain.Event),
		invitees: make(map[int64][]int64),
	}
}

func (s *memoryStore) addUser(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	s.users[s.nextUser] = &domain.User{ID: s.nextUser, Name: name, EventRefs: []string{}}
	return s.nextUser
}

func (s *memoryStore) userCopy(id int64) (*domain.User, bool) {
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	cp := *u
	cp.EventRefs = append([]string{}, u.EventRefs...)
	return &cp, true
}

func (s *memoryStore) eventCopy(id int64) (*domain.Event, bool) {
	e, ok := s.events[id]
	if !ok {
		return nil, false
	}
	cp := *e
	cp.Invitees = nil
	for _, uid := range s.invitees[id] {
		if u, ok := s.userCopy(uid); ok {
			cp.Invitees = append(cp.Invitees, *u)
		}
	}
	return &cp, true
}

type fakeEventRepo struct {
	store *memoryStore
}

func (r *fakeEventRepo) WithTx(tx pgx.Tx) repository.EventRepository { return r }

func (r *fakeEventRepo) Create(ctx context.Context, event *domain.Event, inviteeIDs []int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}

	s.nextEvent++
	event.ID = s.nextEvent
	stored := *event
	stored.Invitees = nil
	s.events[event.ID] = &stored

	seen := map[int64]struct{}{}
	for _, uid := range inviteeIDs {
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		if _, ok := s.users[uid]; !ok {
			continue
		}
		s.invitees[event.ID] = append(s.invitees[event.ID], uid)
	}

	ref := event.Ref()
	for _, uid := range s.invitees[event.ID] {
		s.users[uid].EventRefs = append(s.users[uid].EventRefs, ref)
	}

	if cp, ok := s.eventCopy(event.ID); ok {
		event.Invitees = cp.Invitees
	}
	return nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	event, ok := s.events[id]
	if !ok {
		return pgx.ErrNoRows
	}

	// array_remove semantics: every occurrence of the ref string is stripped.
	ref := event.Ref()
	for _, uid := range s.invitees[id] {
		user := s.users[uid]
		if user == nil {
			continue
		}
		refs := user.EventRefs[:0]
		for _, existing := range user.EventRefs {
			if existing != ref {
				refs = append(refs, existing)
			}
		}
		user.EventRefs = refs
	}

	delete(s.events, id)
	delete(s.invitees, id)
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if cp, ok := s.eventCopy(id); ok {
		return cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEventRepo) List(ctx context.Context) ([]domain.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Event
	for id := range s.events {
		if cp, ok := s.eventCopy(id); ok {
			result = append(result, *cp)
		}
	}
	sortEventsByStart(result)
	return result, nil
}

func (r *fakeEventRepo) ListByInvitee(ctx context.Context, userID int64) ([]domain.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Event
	for id := range s.events {
		for _, uid := range s.invitees[id] {
			if uid == userID {
				if cp, ok := s.eventCopy(id); ok {
					result = append(result, *cp)
				}
				break
			}
		}
	}
	sortEventsByStart(result)
	return result, nil
}

func (r *fakeEventRepo) CountByInvitee(ctx context.Context, userID int64) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for id := range s.events {
		for _, uid := range s.invitees[id] {
			if uid == userID {
				count++
				break
			}
		}
	}
	return count, nil
}

func sortEventsByStart(events []domain.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		switch {
		case a.StartTime == nil && b.StartTime == nil:
			return a.ID < b.ID
		case a.StartTime == nil:
			return false
		case b.StartTime == nil:
			return true
		case a.StartTime.Equal(*b.StartTime):
			return a.ID < b.ID
		default:
			return a.StartTime.Before(*b.StartTime)
		}
	})
}

type fakeUserRepo struct {
	store *memoryStore
}

func (r *fakeUserRepo) WithTx(tx pgx.Tx) repository.UserRepository { return r }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	user.ID = s.nextUser
	cp := *user
	cp.EventRefs = append([]string{}, user.EventRefs...)
	s.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *user
	cp.EventRefs = append([]string{}, user.EventRefs...)
	s.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.users, id)
	for eventID, ids := range s.invitees {
		kept := ids[:0]
		for _, uid := range ids {
			if uid != id {
				kept = append(kept, uid)
			}
		}
		s.invitees[eventID] = kept
	}
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if cp, ok := s.userCopy(id); ok {
		return cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetManyByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []domain.User{}
	for _, id := range ids {
		if cp, ok := s.userCopy(id); ok {
			result = append(result, *cp)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := []domain.User{}
	for _, id := range ids {
		if cp, ok := s.userCopy(id); ok {
			result = append(result, *cp)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) AppendEventRef(ctx context.Context, userID int64, ref string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	user.EventRefs = append(user.EventRefs, ref)
	return nil
}

func (r *fakeUserRepo) RemoveEventRef(ctx context.Context, userID int64, ref string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	kept := user.EventRefs[:0]
	for _, existing := range user.EventRefs {
		if existing != ref {
			kept = append(kept, existing)
		}
	}
	user.EventRefs = kept
	return nil
}

// fakeTxRunner invokes the function directly; the fakes have no transaction
// semantics and WithTx(nil) returns the repository unchanged.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}
