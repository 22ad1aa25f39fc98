// Package app wires the arena gRPC server, its archive and its metrics
// endpoint.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/fusionarena/internal/platform/timeouts"
	arenagrpc "github.com/louisbranch/fusionarena/internal/services/arena/api/grpc/arena"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/battle"
	"github.com/louisbranch/fusionarena/internal/services/arena/observability/metrics"
	"github.com/louisbranch/fusionarena/internal/services/arena/storage"
	"github.com/louisbranch/fusionarena/internal/services/arena/storage/sqlite"
)

// Config controls the arena server.
type Config struct {
	// Addr is the gRPC listen address.
	Addr string
	// MetricsAddr is the Prometheus listen address. Empty disables it.
	MetricsAddr string
	// DBPath is the archive database. Empty disables archiving.
	DBPath string
	// Timing overrides the action durations when non-zero.
	Timing battle.Timing
}

// Server is a running arena service.
type Server struct {
	logger      *zap.Logger
	grpcServer  *grpc.Server
	health      *health.Server
	listener    net.Listener
	metricsHTTP *http.Server
	metricsLis  net.Listener
	store       *sqlite.Store
}

// New binds the listeners and opens the archive. Serve starts handling
// requests.
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("arena address is required")
	}

	s := &Server{logger: logger}
	var archive storage.BattleStore
	if path := strings.TrimSpace(cfg.DBPath); path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create archive dir: %w", err)
			}
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		s.store = store
		archive = store
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var opts []battle.Option
	if cfg.Timing != (battle.Timing{}) {
		opts = append(opts, battle.WithTiming(cfg.Timing))
	}
	service := arenagrpc.NewService(archive, metrics.New(registry), logger, opts...)

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		s.closeStore()
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	s.listener = lis

	if addr := strings.TrimSpace(cfg.MetricsAddr); addr != "" {
		metricsLis, err := net.Listen("tcp", addr)
		if err != nil {
			_ = lis.Close()
			s.closeStore()
			return nil, fmt.Errorf("listen on %s: %w", addr, err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
		s.metricsLis = metricsLis
		s.metricsHTTP = &http.Server{Handler: mux, ReadHeaderTimeout: timeouts.ReadHeader}
	}

	s.grpcServer = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	arenagrpc.RegisterBattleServiceServer(s.grpcServer, service)
	s.health = health.NewServer()
	grpc_health_v1.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(arenagrpc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return s, nil
}

// Addr is the bound gRPC address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// MetricsAddr is the bound metrics address, or nil when disabled.
func (s *Server) MetricsAddr() net.Addr {
	if s.metricsLis == nil {
		return nil
	}
	return s.metricsLis.Addr()
}

// Serve handles requests until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	errs := make(chan error, 2)
	go func() {
		err := s.grpcServer.Serve(s.listener)
		if errors.Is(err, grpc.ErrServerStopped) {
			err = nil
		}
		errs <- err
	}()
	running := 1
	if s.metricsHTTP != nil {
		running++
		go func() {
			err := s.metricsHTTP.Serve(s.metricsLis)
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			errs <- err
		}()
		s.logger.Info("metrics listening", zap.Stringer("addr", s.metricsLis.Addr()))
	}
	s.logger.Info("arena listening", zap.Stringer("addr", s.listener.Addr()))

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errs:
		running--
	}

	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	if s.metricsHTTP != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		if err := s.metricsHTTP.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("metrics shutdown", zap.Error(err))
		}
		cancel()
	}
	for ; running > 0; running-- {
		if err := <-errs; err != nil && serveErr == nil {
			serveErr = err
		}
	}
	if serveErr != nil {
		return fmt.Errorf("serve arena: %w", serveErr)
	}
	return nil
}

func (s *Server) closeStore() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("close archive", zap.Error(err))
	}
	s.store = nil
}
