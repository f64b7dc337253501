package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	ctx := context.Background()

	st := NewSessionState("s1", "demo_user", time.Now())
	st.History = append(st.History, schema.UserMessage("hello"))
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	st.History = append(st.History, schema.AssistantMessage("not saved", nil))

	got, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.History) != 1 || got.History[0].Content != "hello" {
		t.Fatalf("stored history leaked caller mutation: %#v", got.History)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() after delete error = %v, want ErrStateNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store, err := NewMemoryStore(WithTTL(time.Minute), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, NewSessionState("s1", "demo_user", now)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Load(ctx, "s1"); err != nil {
		t.Fatalf("Load() before expiry error = %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() after expiry error = %v, want ErrStateNotFound", err)
	}
}

func TestMemoryStoreRejectsInvalidState(t *testing.T) {
	t.Parallel()

	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, nil); !errors.Is(err, ErrNilSessionState) {
		t.Fatalf("Save(nil) error = %v", err)
	}
	if err := store.Save(ctx, &SessionState{UserID: "u"}); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Save(empty id) error = %v", err)
	}
	if _, err := store.Load(ctx, " "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Load(empty id) error = %v", err)
	}
	if _, err := NewMemoryStore(WithTTL(-time.Second)); err == nil {
		t.Fatal("expected negative ttl to be rejected")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := Config{Backend: "upstash", TTL: time.Hour}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	cfg.Backend = "dynamo"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unsupported backend error")
	}
}
