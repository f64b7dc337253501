package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tanpawarit/mall-concierge/pkg/upstash"
)

var (
	ErrStateNotFound   = errors.New("session state not found")
	ErrNilSessionState = errors.New("session state is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

const (
	defaultStoreKeyPrefix = "concierge:session:"
	defaultStoreTTL       = 24 * time.Hour
)

// Store persists conversation sessions for the HTTP surface.
type Store interface {
	Load(ctx context.Context, sessionID string) (*SessionState, error)
	Save(ctx context.Context, st *SessionState) error
	Delete(ctx context.Context, sessionID string) error
}

// StoreOption customizes the stores in this package.
type StoreOption func(*storeOptions)

type storeOptions struct {
	keyPrefix string
	ttl       time.Duration
	now       func() time.Time
}

func WithKeyPrefix(prefix string) StoreOption {
	return func(o *storeOptions) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			o.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(o *storeOptions) {
		o.ttl = ttl
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []StoreOption) (storeOptions, error) {
	o := storeOptions{
		keyPrefix: defaultStoreKeyPrefix,
		ttl:       defaultStoreTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.ttl < 0 {
		return o, errors.New("ttl must be >= 0")
	}
	return o, nil
}

func prepareSave(st *SessionState, now time.Time) error {
	if st == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(st.SessionID) == "" {
		return ErrInvalidSession
	}
	if st.UpdatedAt.IsZero() {
		st.Touch(now)
	} else {
		st.UpdatedAt = st.UpdatedAt.UTC()
	}
	return st.Validate()
}

/* ------------------------------ MemoryStore ------------------------------ */

type memoryEntry struct {
	state     *SessionState
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Entries expire after the TTL;
// a zero TTL keeps them until deleted.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	opts    storeOptions
}

func NewMemoryStore(opts ...StoreOption) (*MemoryStore, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		opts:    o,
	}, nil
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*SessionState, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrStateNotFound
	}
	if !entry.expiresAt.IsZero() && !s.opts.now().Before(entry.expiresAt) {
		delete(s.entries, sessionID)
		return nil, ErrStateNotFound
	}
	return entry.state.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, st *SessionState) error {
	now := s.opts.now()
	if err := prepareSave(st, now); err != nil {
		return err
	}

	entry := memoryEntry{state: st.Clone()}
	if s.opts.ttl > 0 {
		entry.expiresAt = now.Add(s.opts.ttl)
	}

	s.mu.Lock()
	s.entries[st.SessionID] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

/* --------------------------- UpstashRedisStore --------------------------- */

// UpstashRedisStore persists SessionState as one JSON string per key.
type UpstashRedisStore struct {
	client *upstash.Client
	opts   storeOptions
}

func NewUpstashRedisStore(client *upstash.Client, opts ...StoreOption) (*UpstashRedisStore, error) {
	if client == nil {
		return nil, errors.New("upstash client is required")
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &UpstashRedisStore{client: client, opts: o}, nil
}

func (s *UpstashRedisStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return nil, err
	}

	encoded, err := s.client.GetString(ctx, key)
	if errors.Is(err, upstash.ErrNilResult) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}

	var st SessionState
	if err := json.Unmarshal([]byte(encoded), &st); err != nil {
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session state loaded from store: %w", err)
	}
	return &st, nil
}

func (s *UpstashRedisStore) Save(ctx context.Context, st *SessionState) error {
	if err := prepareSave(st, s.opts.now()); err != nil {
		return err
	}

	key, err := s.redisKey(st.SessionID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	return s.client.Set(ctx, key, string(payload), s.opts.ttl)
}

func (s *UpstashRedisStore) Delete(ctx context.Context, sessionID string) error {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return err
	}
	return s.client.Del(ctx, key)
}

func (s *UpstashRedisStore) redisKey(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return s.opts.keyPrefix + sessionID, nil
}
