package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tymelesstyre/storefront/internal/core/domain"
)

type mockCmdable struct {
	data    map[string]string
	failErr error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	if m.failErr != nil {
		return redis.NewStatusResult("", m.failErr)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	if m.failErr != nil {
		return redis.NewStringResult("", m.failErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if m.failErr != nil {
		return redis.NewStatusResult("", m.failErr)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	store := &Store{client: mock, prefix: "storefront"}

	if _, ok, err := store.Get(ctx, "authToken"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "authToken", "tok-1"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, exists := mock.data["storefront:authToken"]; !exists {
		t.Fatalf("expected prefixed key, got %v", mock.data)
	}

	v, ok, err := store.Get(ctx, "authToken")
	if err != nil || !ok || v != "tok-1" {
		t.Fatalf("unexpected get result v=%q ok=%v err=%v", v, ok, err)
	}

	if err := store.Remove(ctx, "authToken"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := store.Remove(ctx, "authToken"); err != nil {
		t.Fatalf("second remove failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "authToken"); ok {
		t.Fatalf("expected key to be removed")
	}
}

func TestStore_WrapsFailures(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	refused := errors.New("connection refused")
	mock.failErr = refused
	store := &Store{client: mock}

	_, _, getErr := store.Get(ctx, "user")
	errs := []error{
		getErr,
		store.Set(ctx, "user", "{}"),
		store.Ping(ctx),
	}
	for i, err := range errs {
		if !errors.Is(err, domain.ErrStorage) {
			t.Fatalf("call %d: expected ErrStorage, got %v", i, err)
		}
		if !errors.Is(err, refused) {
			t.Fatalf("call %d: backend error lost from chain: %v", i, err)
		}
	}
}

func TestOpen_Unreachable(t *testing.T) {
	_, err := Open(context.Background(), Options{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestStore_CloseWithoutOwnedClient(t *testing.T) {
	if err := (&Store{client: newMockCmdable()}).Close(); err != nil {
		t.Fatalf("close should be a no-op, got %v", err)
	}
}

func TestStore_KeyWithoutPrefix(t *testing.T) {
	store := &Store{}
	if got := store.key("cartItems"); got != "cartItems" {
		t.Fatalf("unexpected key %s", got)
	}
}
