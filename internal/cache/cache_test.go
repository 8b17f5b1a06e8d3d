package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

type payload struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewInMemory(zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open in-memory cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGetOrComputeComputesOnce(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	calls := 0
	compute := func(ctx context.Context) (payload, error) {
		calls++
		return payload{Name: "alice", Score: 41}, nil
	}

	first, err := GetOrCompute(ctx, c, "player:1", time.Minute, compute)
	if err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}
	second, err := GetOrCompute(ctx, c, "player:1", time.Minute, compute)
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("hit differs from computed value (-first +second):\n%s", diff)
	}
}

func TestGetOrComputeDisabledPassthrough(t *testing.T) {
	c := NewDisabled(zerolog.Nop())
	ctx := context.Background()

	calls := 0
	for i := 0; i < 3; i++ {
		v, err := GetOrCompute(ctx, c, "player:1", time.Minute, func(ctx context.Context) (payload, error) {
			calls++
			return payload{Name: "bob", Score: int64(calls)}, nil
		})
		if err != nil {
			t.Fatalf("lookup %d failed: %v", i, err)
		}
		if v.Name != "bob" {
			t.Errorf("lookup %d returned %+v", i, v)
		}
	}
	if calls != 3 {
		t.Errorf("compute ran %d times with cache disabled, want 3", calls)
	}
}

func TestGetOrComputeNeverCachesErrors(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	boom := errors.New("transient failure")

	fail := true
	compute := func(ctx context.Context) (payload, error) {
		if fail {
			return payload{}, boom
		}
		return payload{Name: "carol", Score: 7}, nil
	}

	if _, err := GetOrCompute(ctx, c, "player:2", time.Minute, compute); !errors.Is(err, boom) {
		t.Fatalf("got %v, want compute error", err)
	}

	fail = false
	v, err := GetOrCompute(ctx, c, "player:2", time.Minute, compute)
	if err != nil {
		t.Fatalf("recovery lookup failed: %v", err)
	}
	if v.Name != "carol" {
		t.Errorf("failed result was cached: %+v", v)
	}
}

func TestGetOrComputeCorruptEntryRecomputes(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.set("player:3", []byte("{not json"), time.Minute)

	v, err := GetOrCompute(ctx, c, "player:3", time.Minute, func(ctx context.Context) (payload, error) {
		return payload{Name: "dana", Score: 3}, nil
	})
	if err != nil {
		t.Fatalf("lookup over corrupt entry failed: %v", err)
	}
	if v.Name != "dana" {
		t.Errorf("got %+v, want recomputed value", v)
	}

	// The corrupt bytes were overwritten by the fresh value.
	calls := 0
	if _, err := GetOrCompute(ctx, c, "player:3", time.Minute, func(ctx context.Context) (payload, error) {
		calls++
		return payload{}, nil
	}); err != nil {
		t.Fatalf("followup lookup failed: %v", err)
	}
	if calls != 0 {
		t.Errorf("compute ran after recompute should have repaired the entry")
	}
}

func TestDeletePrefix(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	seed := func(key string) {
		if _, err := GetOrCompute(ctx, c, key, time.Minute, func(ctx context.Context) (payload, error) {
			return payload{Name: key}, nil
		}); err != nil {
			t.Fatalf("seeding %q failed: %v", key, err)
		}
	}
	seed("leaders:1:0")
	seed("leaders:1:1")
	seed("map:name:surf_mesa")

	c.DeletePrefix("leaders:")

	calls := 0
	counting := func(ctx context.Context) (payload, error) {
		calls++
		return payload{}, nil
	}
	for _, key := range []string{"leaders:1:0", "leaders:1:1"} {
		if _, err := GetOrCompute(ctx, c, key, time.Minute, counting); err != nil {
			t.Fatalf("lookup %q failed: %v", key, err)
		}
	}
	if calls != 2 {
		t.Errorf("expected both leaders entries dropped, compute ran %d times", calls)
	}

	calls = 0
	if _, err := GetOrCompute(ctx, c, "map:name:surf_mesa", time.Minute, counting); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if calls != 0 {
		t.Errorf("unrelated prefix was dropped")
	}
}
