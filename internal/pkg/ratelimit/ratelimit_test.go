package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryAllowsBurstThenBlocks(t *testing.T) {
	l := NewMemory(1, 2, time.Minute)
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow(ctx, "10.0.0.1"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, "10.0.0.1"); ok {
		t.Fatalf("third request should be blocked")
	}
	if ok, _ := l.Allow(ctx, "10.0.0.2"); !ok {
		t.Fatalf("other clients keep their own bucket")
	}
}

func TestMemoryRefillsOverTime(t *testing.T) {
	l := NewMemory(60, 1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	l.Allow(ctx, "ip")
	if ok, _ := l.Allow(ctx, "ip"); ok {
		t.Fatalf("bucket should be empty")
	}
	now = now.Add(1100 * time.Millisecond)
	if ok, _ := l.Allow(ctx, "ip"); !ok {
		t.Fatalf("bucket should refill after a second at 60/min")
	}
}

func TestMemoryEvictsIdleKeys(t *testing.T) {
	l := NewMemory(10, 1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.lastSweep = now

	ctx := context.Background()
	l.Allow(ctx, "a")
	l.Allow(ctx, "b")
	now = now.Add(2 * time.Minute)
	l.Allow(ctx, "c")

	if got := l.Size(); got != 1 {
		t.Fatalf("tracked keys = %d, want 1", got)
	}
}

func TestMemorySweepsAtMostOncePerTTL(t *testing.T) {
	l := NewMemory(10, 1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.lastSweep = now

	ctx := context.Background()
	l.Allow(ctx, "a")
	now = now.Add(61 * time.Second)
	l.Allow(ctx, "b")
	if got := l.Size(); got != 1 {
		t.Fatalf("after first sweep tracked keys = %d, want 1", got)
	}

	// "b" goes idle, but the next sweep is not due until a full ttl later.
	now = now.Add(30 * time.Second)
	l.Allow(ctx, "c")
	if got := l.Size(); got != 2 {
		t.Fatalf("before next sweep tracked keys = %d, want 2", got)
	}

	now = now.Add(31 * time.Second)
	l.Allow(ctx, "d")
	if got := l.Size(); got != 2 {
		t.Fatalf("after second sweep tracked keys = %d, want 2 (c, d)", got)
	}
}
