package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tanpawarit/mall-concierge/pkg/upstash"
)

const defaultSnapshotKey = "concierge:accounts"

// UpstashSnapshotter keeps the whole snapshot under a single Redis key.
type UpstashSnapshotter struct {
	client *upstash.Client
	key    string
}

func NewUpstashSnapshotter(client *upstash.Client, key string) (*UpstashSnapshotter, error) {
	if client == nil {
		return nil, errors.New("upstash client is required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = defaultSnapshotKey
	}
	return &UpstashSnapshotter{client: client, key: key}, nil
}

func (u *UpstashSnapshotter) Load(ctx context.Context) (Snapshot, error) {
	encoded, err := u.client.GetString(ctx, u.key)
	if err != nil {
		if errors.Is(err, upstash.ErrNilResult) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}

	snap := Snapshot{}
	if err := json.Unmarshal([]byte(encoded), &snap); err != nil {
		return nil, fmt.Errorf("decode account snapshot: %w", err)
	}
	return snap, nil
}

func (u *UpstashSnapshotter) Save(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal account snapshot: %w", err)
	}
	return u.client.Set(ctx, u.key, string(payload), 0)
}
