package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingClosePrefix = "ticket:close:pending:"
	pendingCloseTTL    = 30 * time.Second
)

// ErrNoPendingClose is returned when no close request exists for the channel
// or the confirmation window has elapsed.
var ErrNoPendingClose = errors.New("no pending close request or it has expired")

// PendingCloseStore holds close requests awaiting confirmation. A request is
// keyed by channel and expires after 30 seconds; confirming consumes it.
type PendingCloseStore interface {
	Put(ctx context.Context, channelID, requestedBy string) error
	Take(ctx context.Context, channelID string) (string, error)
	Cancel(ctx context.Context, channelID string) error
}

// RedisPendingCloseStore keeps pending close requests in Redis so expiry
// survives restarts.
type RedisPendingCloseStore struct {
	client *redis.Client
}

func NewRedisPendingCloseStore(client *redis.Client) *RedisPendingCloseStore {
	return &RedisPendingCloseStore{client: client}
}

func (s *RedisPendingCloseStore) Put(ctx context.Context, channelID, requestedBy string) error {
	key := pendingClosePrefix + channelID
	if err := s.client.Set(ctx, key, requestedBy, pendingCloseTTL).Err(); err != nil {
		return fmt.Errorf("failed to store pending close: %w", err)
	}
	return nil
}

// Take returns the requester and consumes the pending request. GETDEL is
// atomic, so two concurrent confirms cannot both succeed.
func (s *RedisPendingCloseStore) Take(ctx context.Context, channelID string) (string, error) {
	key := pendingClosePrefix + channelID
	val, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrNoPendingClose
		}
		return "", fmt.Errorf("failed to get pending close: %w", err)
	}
	return val, nil
}

func (s *RedisPendingCloseStore) Cancel(ctx context.Context, channelID string) error {
	return s.client.Del(ctx, pendingClosePrefix+channelID).Err()
}
