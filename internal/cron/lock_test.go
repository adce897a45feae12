package cron

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryStore struct {
	data map[string]string
}

func (m *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestRedisLockSingleHolder(t *testing.T) {
	store := &memoryStore{data: map[string]string{}}
	ctx := context.Background()
	first, err := NewRedisLock(store, "fl:lock:cron", "replica-a", 0)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	second, _ := NewRedisLock(store, "fl:lock:cron", "replica-b", time.Minute)

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("expected first acquire to win, ok=%v err=%v", ok, err)
	}
	if !strings.HasPrefix(store.data["fl:lock:cron"], "replica-a:") {
		t.Fatalf("expected holder prefix, got %q", store.data["fl:lock:cron"])
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatal("second replica must not acquire a held lock")
	}

	if err := second.Release(ctx); err != nil {
		t.Fatalf("release by non-holder: %v", err)
	}
	if _, held := store.data["fl:lock:cron"]; !held {
		t.Fatal("non-holder release must not delete the lock")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, held := store.data["fl:lock:cron"]; held {
		t.Fatal("expected lock to be released")
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("expected second replica to acquire after release")
	}
}

func TestRedisLockReleaseAfterExpiry(t *testing.T) {
	store := &memoryStore{data: map[string]string{}}
	lock, _ := NewRedisLock(store, "fl:lock:cron", "", time.Minute)
	if ok, _ := lock.Acquire(context.Background()); !ok {
		t.Fatal("expected acquire")
	}
	delete(store.data, "fl:lock:cron")
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release of expired lock should be a no-op, got %v", err)
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", "", time.Minute); err == nil {
		t.Fatal("expected error without client")
	}
	if _, err := NewRedisLock(&memoryStore{}, "", "", time.Minute); err == nil {
		t.Fatal("expected error without key")
	}
}
