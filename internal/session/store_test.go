package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb), mr
}

func TestRedisStore_SetGetDelete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "abc", 42, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := mr.Get("session:abc"); got != "42" {
		t.Errorf("stored value = %q, want 42", got)
	}

	id, ok, err := store.Get(ctx, "abc")
	if err != nil || !ok || id != 42 {
		t.Fatalf("Get = %d, %v, %v; want 42, true", id, ok, err)
	}

	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "abc"); ok {
		t.Error("session still present after Delete")
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	store.Set(ctx, "short", 7, time.Minute)
	mr.FastForward(2 * time.Minute)

	if _, ok, err := store.Get(ctx, "short"); ok || err != nil {
		t.Fatalf("expired session: ok=%v err=%v", ok, err)
	}
}

func TestRedisStore_UnknownAndEmptyToken(t *testing.T) {
	store, _ := newTestStore(t)
	for _, token := range []string{"", "missing"} {
		if _, ok, err := store.Get(context.Background(), token); ok || err != nil {
			t.Errorf("Get(%q): ok=%v err=%v", token, ok, err)
		}
	}
}

func TestRedisStore_Unavailable(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, _, err := store.Get(context.Background(), "abc")
	if !errors.Is(err, apperrors.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
