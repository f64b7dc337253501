package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSnapshotter stores the snapshot as one indented JSON document.
// Writes go to a temp file in the same directory and are renamed over the
// target, so readers never observe a half-written file.
type FileSnapshotter struct {
	path string
}

func NewFileSnapshotter(path string) (*FileSnapshotter, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("snapshot file path is empty")
	}
	return &FileSnapshotter{path: path}, nil
}

func (f *FileSnapshotter) Path() string {
	return f.path
}

func (f *FileSnapshotter) Load(context.Context) (Snapshot, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("read snapshot %s: %w", f.path, err)
	}

	snap := Snapshot{}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", f.path, err)
	}
	return snap, nil
}

func (f *FileSnapshotter) Save(_ context.Context, snap Snapshot) error {
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot %s: %w", f.path, err)
	}
	return nil
}
