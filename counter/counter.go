// Package counter buffers paper view counts in Redis and periodically folds
// them into the document store.
package counter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eringen/reviewengine/content"
)

// DefaultPrefix is the key prefix for pending view counts.
const DefaultPrefix = "paper_views:"

// Connect opens a Redis client and checks it with PING.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("counter: redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// Views counts paper views not yet written to the store.
type Views struct {
	rdb    *redis.Client
	prefix string
}

// New wraps rdb. An empty prefix means DefaultPrefix.
func New(rdb *redis.Client, prefix string) *Views {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Views{rdb: rdb, prefix: prefix}
}

func (v *Views) key(id string) string {
	return v.prefix + id
}

// Hit records one view of paper id and returns the pending count.
func (v *Views) Hit(ctx context.Context, id string) (int64, error) {
	n, err := v.rdb.Incr(ctx, v.key(id)).Result()
	if err != nil {
		return 0, fmt.Errorf("counter: incr %s: %w", id, err)
	}
	return n, nil
}

// Pending returns the views of id not yet synced.
func (v *Views) Pending(ctx context.Context, id string) (int64, error) {
	n, err := v.rdb.Get(ctx, v.key(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("counter: get %s: %w", id, err)
	}
	return n, nil
}

// Sink receives drained counts. *content.Papers implements it.
type Sink interface {
	AddViews(ctx context.Context, id string, delta int64) (int64, error)
}

// Drain moves every pending count into sink and reports how many papers
// were updated. Counts are taken with GETDEL, so views arriving during a
// drain start a fresh counter. A count the sink fails to take is put back;
// counts for papers that no longer exist are dropped.
func (v *Views) Drain(ctx context.Context, sink Sink) (int, error) {
	synced := 0
	iter := v.rdb.Scan(ctx, 0, v.prefix+"*", 1000).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id := strings.TrimPrefix(key, v.prefix)

		delta, err := v.rdb.GetDel(ctx, key).Int64()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			log.Printf("counter: getdel %s: %v", key, err)
			continue
		}
		if delta <= 0 {
			continue
		}

		_, err = sink.AddViews(ctx, id, delta)
		switch {
		case errors.Is(err, content.ErrNotFound):
			continue
		case err != nil:
			log.Printf("counter: add %d views to %s: %v", delta, id, err)
			if rerr := v.rdb.IncrBy(ctx, key, delta).Err(); rerr != nil {
				log.Printf("counter: restore %s: %v", key, rerr)
			}
			continue
		}
		synced++
	}
	return synced, iter.Err()
}

// StartSync drains v into sink every interval until ctx is cancelled. The
// returned channel is closed once the final drain has finished.
func StartSync(ctx context.Context, v *Views, sink Sink, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = time.Minute
	}
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				// One last pass so a shutdown does not lose the tail.
				final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if _, err := v.Drain(final, sink); err != nil {
					log.Printf("views sync error: %v", err)
				}
				cancel()
				return
			case <-ticker.C:
				if _, err := v.Drain(ctx, sink); err != nil {
					log.Printf("views sync error: %v", err)
				}
			}
		}
	}()
	return done
}
