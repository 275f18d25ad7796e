// Package session keeps login sessions and one-shot password reset windows
// in redis.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionPrefix = "foodonline:session:"
	resetPrefix   = "foodonline:reset:"
)

// ErrNotFound means the session or reset window is unknown, expired or used.
var ErrNotFound = errors.New("session not found")

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Create registers a new login session for userID and returns its id.
func (s *Store) Create(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionPrefix+id, userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// Lookup returns the user owning session id.
func (s *Store) Lookup(ctx context.Context, id string) (uint, error) {
	if id == "" {
		return 0, ErrNotFound
	}
	val, err := s.rdb.Get(ctx, sessionPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup session: %w", err)
	}
	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse session owner %q: %w", val, err)
	}
	return uint(userID), nil
}

// Revoke ends a session. Revoking an unknown session is not an error.
func (s *Store) Revoke(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// OpenResetWindow authorizes exactly one password change for userID. The
// fingerprint is stored so the change can be refused if the account moved on.
func (s *Store) OpenResetWindow(ctx context.Context, userID uint, fingerprint string, ttl time.Duration) (string, error) {
	id := uuid.NewString()
	val := strconv.FormatUint(uint64(userID), 10) + ":" + fingerprint
	if err := s.rdb.Set(ctx, resetPrefix+id, val, ttl).Err(); err != nil {
		return "", fmt.Errorf("open reset window: %w", err)
	}
	return id, nil
}

// ConsumeResetWindow atomically reads and deletes a reset window.
func (s *Store) ConsumeResetWindow(ctx context.Context, id string) (uint, string, error) {
	if id == "" {
		return 0, "", ErrNotFound
	}
	val, err := s.rdb.GetDel(ctx, resetPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return 0, "", ErrNotFound
	}
	if err != nil {
		return 0, "", fmt.Errorf("consume reset window: %w", err)
	}
	rawID, fingerprint, ok := strings.Cut(val, ":")
	if !ok {
		return 0, "", fmt.Errorf("malformed reset window %q", id)
	}
	userID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("parse reset window owner: %w", err)
	}
	return uint(userID), fingerprint, nil
}
