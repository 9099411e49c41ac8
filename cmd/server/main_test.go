package main

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestRunReturnsRedisFailure(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	t.Setenv("DATABASE_URL", "")
	t.Setenv("SEED_PATH", "../../data/seeds/network.yaml")
	t.Setenv("REDIS_ADDR", addr)
	t.Setenv("PORT", "0")
	t.Setenv("LOG_LEVEL", "error")

	err = run()
	if err == nil {
		t.Fatal("expected error for unreachable redis")
	}
	if !strings.Contains(err.Error(), "redis ping") {
		t.Fatalf("err = %v, want redis ping failure", err)
	}
}

func TestRunReturnsConfigError(t *testing.T) {
	t.Setenv("MAX_COMMIT_ATTEMPTS", "zero")
	if err := run(); err == nil {
		t.Fatal("expected config error")
	}
}
