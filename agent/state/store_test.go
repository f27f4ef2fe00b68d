package state

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Load(ctx, "s1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}

	st := New()
	st.AppendUser("hello")
	if err := store.Save(ctx, "s1", st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Messages) != 1 || loaded.Messages[0].Content != "hello" {
		t.Fatalf("unexpected loaded state %+v", loaded)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreRejectsBadInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Save(ctx, "  ", New()); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if err := store.Save(ctx, "s1", nil); !errors.Is(err, ErrNilState) {
		t.Fatalf("expected ErrNilState, got %v", err)
	}
	if _, err := store.Load(ctx, ""); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

// fakeRedis implements just enough of the Upstash REST protocol: a single
// POST endpoint receiving ["GET"|"SET"|"DEL", key, ...] arrays.
type fakeRedis struct {
	values map[string]string
	cmds   [][]any
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]string)}
}

func (f *fakeRedis) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header %q", got)
		}

		var cmd []any
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			t.Errorf("decode command: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.cmds = append(f.cmds, cmd)

		name, _ := cmd[0].(string)
		key, _ := cmd[1].(string)
		switch name {
		case "GET":
			val, ok := f.values[key]
			if !ok {
				_, _ = w.Write([]byte(`{"result":null}`))
				return
			}
			payload, _ := json.Marshal(map[string]string{"result": val})
			_, _ = w.Write(payload)
		case "SET":
			f.values[key], _ = cmd[2].(string)
			_, _ = w.Write([]byte(`{"result":"OK"}`))
		case "DEL":
			delete(f.values, key)
			_, _ = w.Write([]byte(`{"result":1}`))
		default:
			t.Errorf("unexpected command %q", name)
		}
	}
}

func newTestUpstashStore(t *testing.T, redis *fakeRedis, opts ...StoreOption) *UpstashRedisStore {
	t.Helper()
	srv := httptest.NewServer(redis.handler(t))
	t.Cleanup(srv.Close)

	store, err := NewUpstashRedisStore(UpstashRedisConfig{
		URL:     srv.URL,
		Token:   "test-token",
		Timeout: 2 * time.Second,
	}, opts...)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore failed: %v", err)
	}
	return store
}

func TestUpstashStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	redis := newFakeRedis()
	store := newTestUpstashStore(t, redis)

	if _, err := store.Load(ctx, "abc"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}

	st := New()
	st.AppendUser("show my registration")
	st.UserEmail = "alice@example.com"
	if err := store.Save(ctx, "abc", st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, ok := redis.values["regibot:session:abc"]; !ok {
		t.Fatal("expected value under the default key prefix")
	}

	loaded, err := store.Load(ctx, "abc")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.UserEmail != "alice@example.com" {
		t.Fatalf("unexpected email %q", loaded.UserEmail)
	}
	if len(loaded.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(loaded.Messages))
	}
	if loaded.UserData == nil {
		t.Fatal("UserData must be initialized after load")
	}

	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, "abc"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound after delete, got %v", err)
	}
}

func TestUpstashStoreSetsTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	redis := newFakeRedis()
	store := newTestUpstashStore(t, redis, WithTTL(90*time.Second), WithKeyPrefix("custom:"))

	if err := store.Save(ctx, "abc", New()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if len(redis.cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(redis.cmds))
	}
	cmd := redis.cmds[0]
	if len(cmd) != 5 || cmd[0] != "SET" || cmd[1] != "custom:abc" || cmd[3] != "EX" {
		t.Fatalf("unexpected SET command %v", cmd)
	}
	if secs, ok := cmd[4].(float64); !ok || secs != 90 {
		t.Fatalf("unexpected TTL argument %v", cmd[4])
	}
}

func TestUpstashStoreRejectsEmptySession(t *testing.T) {
	t.Parallel()

	store := newTestUpstashStore(t, newFakeRedis())
	if _, err := store.Load(context.Background(), "  "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestUpstashStoreConfigValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewUpstashRedisStore(UpstashRedisConfig{URL: "", Token: "x"}); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := NewUpstashRedisStore(UpstashRedisConfig{URL: "https://example.upstash.io", Token: " "}); err == nil {
		t.Fatal("expected error for missing token")
	}
}
