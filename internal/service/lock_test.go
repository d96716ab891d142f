package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryMergeLockerBlocksSameUser(t *testing.T) {
	locker := NewMemoryMergeLocker(30 * time.Millisecond)

	release, err := locker.Acquire(context.Background(), 1)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, err := locker.Acquire(context.Background(), 1); !errors.Is(err, ErrMergeLocked) {
		t.Fatalf("expected ErrMergeLocked, got %v", err)
	}

	release()

	release2, err := locker.Acquire(context.Background(), 1)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestMemoryMergeLockerIndependentUsers(t *testing.T) {
	locker := NewMemoryMergeLocker(30 * time.Millisecond)

	release1, err := locker.Acquire(context.Background(), 1)
	if err != nil {
		t.Fatalf("acquire user 1: %v", err)
	}
	defer release1()

	release2, err := locker.Acquire(context.Background(), 2)
	if err != nil {
		t.Fatalf("acquire user 2 should not block: %v", err)
	}
	release2()
}

func TestMemoryMergeLockerHonorsContext(t *testing.T) {
	locker := NewMemoryMergeLocker(time.Minute)

	release, err := locker.Acquire(context.Background(), 1)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := locker.Acquire(ctx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
