package cache

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewInMemory()
	c.now = func() time.Time { return now }

	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Fatalf("missing key reported present")
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get: got=%q ok=%v err=%v", got, ok, err)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expired key reported present")
	}
}

func TestInMemoryNoTTLAndDel(t *testing.T) {
	ctx := context.Background()
	c := NewInMemory()
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if err := c.Del(ctx, "a", "nope"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatalf("deleted key reported present")
	}
	if v, ok, _ := c.Get(ctx, "b"); !ok || string(v) != "2" {
		t.Fatalf("kept key: got=%q ok=%v", v, ok)
	}
}

func TestInMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewInMemory()
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller buffer: got=%q", got)
	}
}
