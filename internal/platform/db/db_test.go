package db

import (
	"testing"
	"time"
)

func TestPoolOptionsDefaults(t *testing.T) {
	got := PoolOptions{}.withDefaults()
	if got.MaxOpenConns != 10 || got.MaxIdleConns != 10 || got.ConnMaxLifetime != 30*time.Minute {
		t.Fatalf("unexpected defaults: %+v", got)
	}

	got = PoolOptions{MaxOpenConns: 4}.withDefaults()
	if got.MaxIdleConns != 4 {
		t.Fatalf("idle conns should follow open conns, got %d", got.MaxIdleConns)
	}
}
