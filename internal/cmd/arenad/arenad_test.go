package arenad

import (
	"context"
	"flag"
	"path/filepath"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("arenad", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != ":8092" {
		t.Fatalf("addr = %q, want :8092", cfg.Addr)
	}
	if cfg.MetricsAddr != ":9092" {
		t.Fatalf("metrics addr = %q, want :9092", cfg.MetricsAddr)
	}
	if cfg.DBPath != "data/arena.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("FUSION_ARENA_ADDR", "127.0.0.1:7000")
	fs := flag.NewFlagSet("arenad", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-no-metrics", "-db-path", "", "-log-level", "debug"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "127.0.0.1:7000" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.MetricsAddr != "" || cfg.DBPath != "" || cfg.Logging.Level != "debug" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{
		Addr:   "127.0.0.1:0",
		DBPath: filepath.Join(t.TempDir(), "arena.db"),
	}
	cfg.Logging.Level = "error"
	cfg.Logging.Outputs = []string{filepath.Join(t.TempDir(), "arenad.log")}
	if err := Run(ctx, cfg); err != nil {
		t.Fatalf("run: %v", err)
	}
}
