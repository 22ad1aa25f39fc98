// Package arenad parses arenad flags and runs the arena gRPC service.
package arenad

import (
	"context"
	"flag"

	"go.uber.org/zap"

	entrypoint "github.com/louisbranch/fusionarena/internal/platform/cmd"
	"github.com/louisbranch/fusionarena/internal/platform/discovery"
	"github.com/louisbranch/fusionarena/internal/platform/logging"
	"github.com/louisbranch/fusionarena/internal/services/arena/app"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/battle"
)

// Config holds arenad configuration.
type Config struct {
	Addr        string `env:"FUSION_ARENA_ADDR"`
	MetricsAddr string `env:"FUSION_ARENA_METRICS_ADDR"`
	DBPath      string `env:"FUSION_ARENA_DB_PATH" envDefault:"data/arena.db"`
	NoMetrics   bool   `env:"FUSION_ARENA_NO_METRICS"`
	Logging     logging.Config
	Timing      battle.Timing
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Addr == "" {
		cfg.Addr = discovery.DefaultListenAddr(discovery.ServiceArena)
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = discovery.DefaultListenAddr(discovery.ServiceArenaMetrics)
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "gRPC listen address")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus listen address")
	fs.BoolVar(&cfg.NoMetrics, "no-metrics", cfg.NoMetrics, "disable the metrics endpoint")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "archive SQLite path, empty to disable archiving")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "diagnostic log level")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.NoMetrics {
		cfg.MetricsAddr = ""
	}
	return cfg, nil
}

// Run serves until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceArenad, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		srv, err := app.New(app.Config{
			Addr:        cfg.Addr,
			MetricsAddr: cfg.MetricsAddr,
			DBPath:      cfg.DBPath,
			Timing:      cfg.Timing,
		}, logger.Named("arenad"))
		if err != nil {
			return err
		}
		logger.Info("arenad starting", zap.String("db_path", cfg.DBPath))
		return srv.Serve(ctx)
	})
}
