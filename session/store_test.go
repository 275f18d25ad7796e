package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb), mr
}

func TestSession_Lifecycle(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, 7, time.Hour)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	userID, err := store.Lookup(ctx, id)
	if err != nil || userID != 7 {
		t.Fatalf("Lookup() = %d, %v", userID, err)
	}

	if err := store.Revoke(ctx, id); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if _, err := store.Lookup(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() after revoke error = %v", err)
	}
	if err := store.Revoke(ctx, id); err != nil {
		t.Errorf("second Revoke() error = %v", err)
	}
}

func TestSession_Expires(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	id, _ := store.Create(ctx, 7, time.Minute)
	mr.FastForward(2 * time.Minute)
	if _, err := store.Lookup(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() after ttl error = %v", err)
	}
	if _, err := store.Lookup(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(\"\") error = %v", err)
	}
}

func TestResetWindow_ConsumedOnce(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	id, err := store.OpenResetWindow(ctx, 3, "abc123", time.Minute)
	if err != nil {
		t.Fatalf("OpenResetWindow() error = %v", err)
	}

	userID, fp, err := store.ConsumeResetWindow(ctx, id)
	if err != nil {
		t.Fatalf("ConsumeResetWindow() error = %v", err)
	}
	if userID != 3 || fp != "abc123" {
		t.Errorf("ConsumeResetWindow() = %d, %q", userID, fp)
	}

	if _, _, err := store.ConsumeResetWindow(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second ConsumeResetWindow() error = %v", err)
	}
}

func TestResetWindow_Expires(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	id, _ := store.OpenResetWindow(ctx, 3, "abc123", time.Minute)
	mr.FastForward(time.Minute + time.Second)
	if _, _, err := store.ConsumeResetWindow(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired window error = %v", err)
	}
}
