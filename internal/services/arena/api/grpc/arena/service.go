// Package arena exposes battle simulation over gRPC.
package arena

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
	"github.com/louisbranch/fusionarena/internal/platform/errors/i18n"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/battle"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/scenario"
	"github.com/louisbranch/fusionarena/internal/services/arena/observability/metrics"
	"github.com/louisbranch/fusionarena/internal/services/arena/storage"
)

// Service implements arena.v1.BattleService.
type Service struct {
	store   storage.BattleStore
	metrics *metrics.Metrics
	logger  *zap.Logger
	locale  string
	opts    []battle.Option
}

var _ BattleServiceServer = (*Service)(nil)

// NewService creates a battle service. store and m may be nil; without a
// store, archiving and run id verification are unavailable. opts apply to
// every simulation after the scenario's own.
func NewService(store storage.BattleStore, m *metrics.Metrics, logger *zap.Logger, opts ...battle.Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, metrics: m, logger: logger, locale: i18n.BaseLocale, opts: opts}
}

func (s *Service) simulate(sc scenario.Scenario) (*scenario.Result, error) {
	opts := append([]battle.Option{battle.WithLogger(s.logger.With(zap.String("scenario", sc.Name)))}, s.opts...)
	return sc.Simulate(opts...)
}

// Simulate runs the scenario in the "scenario" field. With "archive" set
// the result is saved and its run id returned; with "include_log" set the
// applied actions are returned as envelopes.
func (s *Service) Simulate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "simulate request is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	fields := in.GetFields()
	sc, err := s.decodeScenario(fields)
	if err != nil {
		return nil, err
	}
	archive := fields["archive"].GetBoolValue()
	if archive && s.store == nil {
		return nil, status.Error(codes.FailedPrecondition, "battle archive is not configured")
	}

	res, err := s.simulate(sc)
	if err != nil {
		s.metrics.ObserveFailure(string(apperrors.CodeOf(err)))
		return nil, s.toStatus(err)
	}
	sim := res.Simulation
	s.metrics.ObserveBattle(sim.Winner().String(), sim.Log().Len(), sim.Duration())
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("arena.scenario", sc.Name),
		attribute.String("arena.winner", sim.Winner().String()),
		attribute.Int("arena.turns", res.Turns),
		attribute.String("arena.hash", res.Hash),
	)

	out := map[string]any{
		"name":      sc.Name,
		"battle_id": float64(sim.ID()),
		"seed":      float64(sim.Seed()),
		"winner":    sim.Winner().String(),
		"turns":     float64(res.Turns),
		"duration":  sim.Duration(),
		"hash":      res.Hash,
		"actions":   float64(sim.Log().Len()),
	}
	if fields["include_log"].GetBoolValue() {
		entries, err := envelopes(sim)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode log: %v", err)
		}
		out["log"] = entries
	}
	if archive {
		record, err := storage.NewRecord(sc.Name, sim)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "build record: %v", err)
		}
		saved, err := s.store.SaveBattle(ctx, record)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "save battle: %v", err)
		}
		out["run_id"] = saved.RunID
	}
	s.logger.Info("battle simulated",
		zap.String("scenario", sc.Name),
		zap.String("winner", sim.Winner().String()),
		zap.Int("turns", res.Turns),
		zap.String("hash", res.Hash),
	)

	resp, err := structpb.NewStruct(out)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return resp, nil
}

// Verify checks "hash" either against an archived "run_id" or by
// re-simulating the given "scenario".
func (s *Service) Verify(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "verify request is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	fields := in.GetFields()
	hash := strings.TrimSpace(fields["hash"].GetStringValue())
	if hash == "" {
		return nil, status.Error(codes.InvalidArgument, "hash is required")
	}

	if runID := strings.TrimSpace(fields["run_id"].GetStringValue()); runID != "" {
		if s.store == nil {
			return nil, status.Error(codes.FailedPrecondition, "battle archive is not configured")
		}
		if err := s.store.VerifyBattle(ctx, runID, hash); err != nil {
			return nil, s.toStatus(err)
		}
		return verified(hash)
	}

	sc, err := s.decodeScenario(fields)
	if err != nil {
		return nil, err
	}
	res, err := s.simulate(sc)
	if err != nil {
		return nil, s.toStatus(err)
	}
	if res.Hash != hash {
		return nil, s.toStatus(storage.HashMismatch(sc.Name, res.Hash, hash))
	}
	return verified(hash)
}

func (s *Service) decodeScenario(fields map[string]*structpb.Value) (scenario.Scenario, error) {
	raw := fields["scenario"].GetStructValue()
	if raw == nil {
		return scenario.Scenario{}, status.Error(codes.InvalidArgument, "scenario is required")
	}
	sc, err := scenario.Decode(raw.AsMap())
	if err != nil {
		return scenario.Scenario{}, s.toStatus(err)
	}
	return sc, nil
}

// toStatus maps domain errors to gRPC statuses carrying a localized
// message.
func (s *Service) toStatus(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.ToGRPCStatus(s.locale, apperrors.UserMessage(s.locale, err))
	}
	s.logger.Error("arena request failed", zap.Error(err))
	return status.Error(codes.Internal, err.Error())
}

func verified(hash string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"ok": true, "hash": hash})
}

func envelopes(sim *battle.Simulation) ([]any, error) {
	data, err := json.Marshal(sim.Log().Envelopes())
	if err != nil {
		return nil, err
	}
	var out []any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode envelopes: %w", err)
	}
	return out, nil
}
