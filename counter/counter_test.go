package counter

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/eringen/reviewengine/content"
)

type fakeSink struct {
	mu    sync.Mutex
	views map[string]int64
	fail  error
}

func (f *fakeSink) AddViews(_ context.Context, id string, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	if _, ok := f.views[id]; !ok {
		return 0, content.ErrNotFound
	}
	f.views[id] += delta
	return f.views[id], nil
}

func (f *fakeSink) get(id string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.views[id]
}

func setupViews(t *testing.T) *Views {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb, err := Connect(context.Background(), addr, os.Getenv("TEST_REDIS_PASSWORD"))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	prefix := "test_views_" + uuid.NewString()[:8] + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := rdb.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			rdb.Del(ctx, keys...)
		}
		rdb.Close()
	})
	return New(rdb, prefix)
}

func TestHitAndPending(t *testing.T) {
	v := setupViews(t)
	ctx := context.Background()

	if n, err := v.Pending(ctx, "p1"); err != nil || n != 0 {
		t.Fatalf("Pending before hits = %d, %v", n, err)
	}
	for i := 1; i <= 3; i++ {
		n, err := v.Hit(ctx, "p1")
		if err != nil {
			t.Fatalf("Hit: %v", err)
		}
		if n != int64(i) {
			t.Errorf("Hit #%d = %d", i, n)
		}
	}
	if n, _ := v.Pending(ctx, "p1"); n != 3 {
		t.Errorf("Pending = %d, want 3", n)
	}
}

func TestDrain(t *testing.T) {
	v := setupViews(t)
	ctx := context.Background()
	sink := &fakeSink{views: map[string]int64{"p1": 10, "p2": 0}}

	v.Hit(ctx, "p1")
	v.Hit(ctx, "p1")
	v.Hit(ctx, "p2")
	v.Hit(ctx, "deleted")

	n, err := v.Drain(ctx, sink)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if n != 2 {
		t.Errorf("synced = %d, want 2", n)
	}
	if got := sink.get("p1"); got != 12 {
		t.Errorf("p1 = %d, want 12", got)
	}
	if got := sink.get("p2"); got != 1 {
		t.Errorf("p2 = %d, want 1", got)
	}
	for _, id := range []string{"p1", "p2", "deleted"} {
		if left, _ := v.Pending(ctx, id); left != 0 {
			t.Errorf("%s still pending %d", id, left)
		}
	}
}

func TestDrainRestoresOnFailure(t *testing.T) {
	v := setupViews(t)
	ctx := context.Background()
	sink := &fakeSink{views: map[string]int64{"p1": 0}, fail: errors.New("store down")}

	v.Hit(ctx, "p1")
	v.Hit(ctx, "p1")
	if _, err := v.Drain(ctx, sink); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if left, _ := v.Pending(ctx, "p1"); left != 2 {
		t.Errorf("pending after failed sync = %d, want 2", left)
	}
}

func TestStartSyncFinalDrain(t *testing.T) {
	v := setupViews(t)
	sink := &fakeSink{views: map[string]int64{"p1": 0}}
	ctx, cancel := context.WithCancel(context.Background())

	done := StartSync(ctx, v, sink, time.Hour)
	v.Hit(context.Background(), "p1")
	cancel()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("StartSync did not stop")
	}
	if got := sink.get("p1"); got != 1 {
		t.Errorf("p1 = %d after shutdown drain, want 1", got)
	}
}

func TestNewDefaultPrefix(t *testing.T) {
	v := New(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "")
	if got := v.key("abc"); got != "paper_views:abc" {
		t.Errorf("key = %q", got)
	}
}
