package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/calendar-service/internal/config"
)

// ErrMergeLocked is returned when a merge lock cannot be acquired in time.
var ErrMergeLocked = errors.New("merge already in progress for user")

// MergeLocker serializes consolidation passes for the same user. Passes for
// different users are independent and may run concurrently.
type MergeLocker interface {
	// Acquire blocks until the per-user lock is held, ctx is done, or the
	// configured wait elapses. The returned func releases the lock.
	Acquire(ctx context.Context, userID int64) (func(), error)
}

type memoryMergeLocker struct {
	mu    sync.Mutex
	slots map[int64]chan struct{}
	wait  time.Duration
}

// NewMemoryMergeLocker returns an in-process locker keyed by user id.
func NewMemoryMergeLocker(wait time.Duration) MergeLocker {
	return &memoryMergeLocker{
		slots: make(map[int64]chan struct{}),
		wait:  wait,
	}
}

func (l *memoryMergeLocker) slot(userID int64) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[userID]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[userID] = slot
	}
	return slot
}

func (l *memoryMergeLocker) Acquire(ctx context.Context, userID int64) (func(), error) {
	slot := l.slot(userID)

	var timeout <-chan time.Time
	if l.wait > 0 {
		timer := time.NewTimer(l.wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, ErrMergeLocked
	}
}

type redisMergeLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	wait   time.Duration
}

// NewRedisMergeLocker returns a locker backed by a redis SET NX lease, so
// concurrent service replicas also serialize merges for the same user.
func NewRedisMergeLocker(client *redis.Client, cfg config.MergeConfig) MergeLocker {
	return &redisMergeLocker{
		client: client,
		ttl:    cfg.LockTTL(),
		retry:  cfg.LockRetry(),
		wait:   cfg.LockWait(),
	}
}

func (l *redisMergeLocker) Acquire(ctx context.Context, userID int64) (func(), error) {
	key := fmt.Sprintf("calendar:merge:lock:%d", userID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrMergeLocked
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

// release deletes the key only if this holder still owns it; a lease that
// expired and was re-acquired by another pass is left alone.
func (l *redisMergeLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	current, err := l.client.Get(ctx, key).Result()
	if err != nil || current != token {
		return
	}
	_ = l.client.Del(ctx, key).Err()
}
