package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestNoopReportCacheAlwaysMisses(t *testing.T) {
	var c ReportCache = NoopReportCache{}
	ctx := context.Background()

	if err := c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out map[string]int
	hit, err := c.Get(ctx, "k", &out)
	if err != nil || hit {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}
}

func TestRedisReportCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("MASAPOS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set MASAPOS_TEST_REDIS_ADDR to run redis integration test")
	}

	ctx := context.Background()
	c := NewRedisReportCache(addr, "", 0)
	t.Cleanup(func() { _ = c.Close() })
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	prefix := "masapos-test:" + time.Now().Format("150405.000000") + ":"
	if err := c.Set(ctx, prefix+"a", []string{"x"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got []string
	hit, err := c.Get(ctx, prefix+"a", &got)
	if err != nil || !hit || len(got) != 1 || got[0] != "x" {
		t.Fatalf("expected hit with payload, got hit=%v err=%v val=%v", hit, err, got)
	}

	if err := c.DeletePrefix(ctx, prefix); err != nil {
		t.Fatalf("delete prefix: %v", err)
	}
	hit, err = c.Get(ctx, prefix+"a", &got)
	if err != nil || hit {
		t.Fatalf("expected miss after prefix delete, got hit=%v err=%v", hit, err)
	}
}
