package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrSnapshotNotFound = errors.New("account snapshot not found")

// Snapshotter persists the full account snapshot. Load returns
// ErrSnapshotNotFound when nothing has been saved yet.
type Snapshotter interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendUpstash  = "upstash"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend  string `envconfig:"BACKEND" split_words:"true" default:"file"`
	FilePath string `envconfig:"FILE_PATH" split_words:"true" default:"user_data.json"`
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case BackendFile, BackendMemory, BackendUpstash, BackendPostgres:
		return nil
	default:
		return fmt.Errorf("unsupported store backend %q", c.Backend)
	}
}

// MemorySnapshotter keeps the last saved snapshot in process.
type MemorySnapshotter struct {
	mu    sync.Mutex
	snap  Snapshot
	saves int
}

func NewMemorySnapshotter(seed Snapshot) *MemorySnapshotter {
	m := &MemorySnapshotter{}
	if seed != nil {
		m.snap = seed.clone()
	}
	return m
}

func (m *MemorySnapshotter) Load(context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, ErrSnapshotNotFound
	}
	return m.snap.clone(), nil
}

func (m *MemorySnapshotter) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.clone()
	m.saves++
	return nil
}

// Saves reports how many flushes have been received.
func (m *MemorySnapshotter) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
