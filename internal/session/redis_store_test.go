package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/desivolt/muzdesk/internal/domain"
)

// unreachableStore points at a port nothing listens on.
func unreachableStore(t *testing.T) Store {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "muzdesk:session:")
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	store := NewRedisStore(nil, "muzdesk:session:").(*redisStore)
	if got := store.key("abc"); got != "muzdesk:session:abc" {
		t.Errorf("key = %q, want muzdesk:session:abc", got)
	}
}

func TestRedisStore_SaveRejectsExpiredSession(t *testing.T) {
	store := unreachableStore(t)
	sess := &domain.Session{ID: "s1", Username: "elec1", ExpiresAt: time.Now().Add(-time.Minute)}

	err := store.Save(context.Background(), sess)
	if err == nil || err.Error() != "session already expired" {
		t.Errorf("expected expiry error before contacting redis, got %v", err)
	}
}

func TestRedisStore_UnreachableIsNotNotFound(t *testing.T) {
	store := unreachableStore(t)

	_, err := store.Get(context.Background(), "s1")
	if err == nil {
		t.Fatal("expected an error from an unreachable redis")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("connection failures must not read as a missing session")
	}
}
