package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/tanpawarit/mall-concierge/pkg/upstash"
)

// fakeRedis answers GET/SET for string keys like the Upstash REST API.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func (f *fakeRedis) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var cmd []any
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key, _ := cmd[1].(string)
	switch cmd[0] {
	case "SET":
		f.data[key], _ = cmd[2].(string)
		fmt.Fprint(w, `{"result":"OK"}`)
	case "GET":
		v, ok := f.data[key]
		if !ok {
			fmt.Fprint(w, `{"result":null}`)
			return
		}
		encoded, _ := json.Marshal(v)
		fmt.Fprintf(w, `{"result":%s}`, encoded)
	default:
		fmt.Fprint(w, `{"error":"unsupported"}`)
	}
}

func TestUpstashSnapshotterRoundTrip(t *testing.T) {
	t.Parallel()

	redis := &fakeRedis{data: map[string]string{}}
	server := httptest.NewServer(redis)
	t.Cleanup(server.Close)

	client, err := upstash.NewClient(upstash.Config{URL: server.URL, Token: "token"}, upstash.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	snaps, err := NewUpstashSnapshotter(client, "")
	if err != nil {
		t.Fatalf("NewUpstashSnapshotter() error = %v", err)
	}

	ctx := context.Background()
	if _, err := snaps.Load(ctx); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}

	want := Snapshot{"demo_user": {Points: 15, Coupons: []Coupon{{Type: "Coffee", Code: "ZZZZ9999", PointsCost: 30}}}}
	if err := snaps.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, ok := redis.data[defaultSnapshotKey]; !ok {
		t.Fatalf("expected key %s to be written", defaultSnapshotKey)
	}

	got, err := snaps.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got["demo_user"].Points != 15 || got["demo_user"].Coupons[0].Code != "ZZZZ9999" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestNewUpstashSnapshotterRequiresClient(t *testing.T) {
	t.Parallel()

	if _, err := NewUpstashSnapshotter(nil, "k"); err == nil {
		t.Fatal("expected error for nil client")
	}
}
