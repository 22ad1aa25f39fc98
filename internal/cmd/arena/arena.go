// Package arena parses arena command flags and runs scenario files.
package arena

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	otelapi "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"google.golang.org/protobuf/types/known/structpb"

	entrypoint "github.com/louisbranch/fusionarena/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/fusionarena/internal/platform/grpc"
	"github.com/louisbranch/fusionarena/internal/platform/logging"
	"github.com/louisbranch/fusionarena/internal/platform/timeouts"
	arenagrpc "github.com/louisbranch/fusionarena/internal/services/arena/api/grpc/arena"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/battle"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/scenario"
	"github.com/louisbranch/fusionarena/internal/services/arena/storage"
	"github.com/louisbranch/fusionarena/internal/services/arena/storage/sqlite"
)

// Config holds arena command configuration.
type Config struct {
	Scenario    string        `env:"FUSION_ARENA_SCENARIO_FILE"`
	DBPath      string        `env:"FUSION_ARENA_DB_PATH"`
	Remote      string        `env:"FUSION_ARENA_REMOTE_ADDR"`
	Lang        string        `env:"FUSION_ARENA_LANG" envDefault:"en"`
	PrintLog    bool          `env:"FUSION_ARENA_PRINT_LOG"`
	Timeout     time.Duration `env:"FUSION_ARENA_TIMEOUT"`
	Logging     logging.Config
	Timing      battle.Timing
	DialTimeout time.Duration `env:"FUSION_ARENA_DIAL_TIMEOUT"`
}

// ParseConfig parses environment and flags into a Config. A positional
// argument overrides the scenario path.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to a .yaml, .yml or .lua scenario")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "archive the result in this SQLite database")
	fs.StringVar(&cfg.Remote, "remote", cfg.Remote, "simulate on the arena service at this address")
	fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "language tag for the summary")
	fs.BoolVar(&cfg.PrintLog, "print-log", cfg.PrintLog, "print every applied action as a JSON line")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout for a remote simulation")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "timeout for connecting to the arena service")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "diagnostic log level")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		cfg.Scenario = fs.Arg(0)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeouts.Request
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = timeouts.Connect
	}
	return cfg, nil
}

// Summary is the outcome printed after a run.
type Summary struct {
	Name     string
	BattleID uint64
	Seed     int64
	Winner   string
	Turns    int
	Duration float64
	Actions  int
	Hash     string
	RunID    string
}

// Run simulates the configured scenario and prints a summary to out.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if strings.TrimSpace(cfg.Scenario) == "" {
		return errors.New("scenario path is required")
	}
	logger, err := logging.NewWriter(cfg.Logging, errOut)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceArena, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		var (
			summary Summary
			err     error
		)
		if strings.TrimSpace(cfg.Remote) != "" {
			summary, err = runRemote(ctx, cfg, logger, out)
		} else {
			summary, err = runLocal(ctx, cfg, logger, out)
		}
		if err != nil {
			return err
		}
		printSummary(out, cfg.Lang, summary)
		return nil
	})
}

func runLocal(ctx context.Context, cfg Config, logger *zap.Logger, out io.Writer) (Summary, error) {
	_, span := otelapi.Tracer(entrypoint.ServiceArena).Start(ctx, "arena.simulate")
	defer span.End()

	opts := []battle.Option{battle.WithLogger(logger)}
	if cfg.Timing != (battle.Timing{}) {
		opts = append(opts, battle.WithTiming(cfg.Timing))
	}
	sc, res, err := scenario.SimulateFile(cfg.Scenario, opts...)
	if res == nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Summary{}, err
	}
	if err != nil {
		logger.Warn("battle stopped early", zap.Error(err))
	}
	sim := res.Simulation
	span.SetAttributes(
		attribute.String("arena.scenario", sc.Name),
		attribute.String("arena.winner", sim.Winner().String()),
		attribute.Int("arena.turns", res.Turns),
		attribute.String("arena.hash", res.Hash),
	)
	if cfg.PrintLog {
		if err := printLog(out, sim.Log().Envelopes()); err != nil {
			return Summary{}, err
		}
	}

	summary := Summary{
		Name:     sc.Name,
		BattleID: sim.ID(),
		Seed:     sim.Seed(),
		Winner:   sim.Winner().String(),
		Turns:    res.Turns,
		Duration: sim.Duration(),
		Actions:  sim.Log().Len(),
		Hash:     res.Hash,
	}
	if strings.TrimSpace(cfg.DBPath) != "" {
		runID, err := archive(ctx, cfg.DBPath, sc.Name, sim)
		if err != nil {
			return Summary{}, err
		}
		summary.RunID = runID
	}
	return summary, nil
}

func archive(ctx context.Context, path, name string, sim *battle.Simulation) (string, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create archive dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer store.Close()

	record, err := storage.NewRecord(name, sim)
	if err != nil {
		return "", err
	}
	saved, err := store.SaveBattle(ctx, record)
	if err != nil {
		return "", err
	}
	return saved.RunID, nil
}

func runRemote(ctx context.Context, cfg Config, logger *zap.Logger, out io.Writer) (Summary, error) {
	sc, err := scenario.LoadFile(cfg.Scenario)
	if err != nil {
		return Summary{}, err
	}
	data, err := sc.Map()
	if err != nil {
		return Summary{}, err
	}
	req, err := structpb.NewStruct(map[string]any{
		"scenario":    data,
		"archive":     strings.TrimSpace(cfg.DBPath) != "",
		"include_log": cfg.PrintLog,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("encode request: %w", err)
	}

	conn, err := platformgrpc.Connect(ctx, cfg.Remote, cfg.DialTimeout, logger, platformgrpc.ClientOptions()...)
	if err != nil {
		return Summary{}, fmt.Errorf("connect to arena: %w", err)
	}
	defer conn.Close()

	callCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	resp, err := arenagrpc.NewClient(conn).Simulate(callCtx, req)
	if err != nil {
		return Summary{}, fmt.Errorf("remote simulate: %w", err)
	}
	fields := resp.GetFields()
	if cfg.PrintLog {
		if err := printLog(out, fields["log"].GetListValue().AsSlice()); err != nil {
			return Summary{}, err
		}
	}
	return Summary{
		Name:     fields["name"].GetStringValue(),
		BattleID: uint64(fields["battle_id"].GetNumberValue()),
		Seed:     int64(fields["seed"].GetNumberValue()),
		Winner:   fields["winner"].GetStringValue(),
		Turns:    int(fields["turns"].GetNumberValue()),
		Duration: fields["duration"].GetNumberValue(),
		Actions:  int(fields["actions"].GetNumberValue()),
		Hash:     fields["hash"].GetStringValue(),
		RunID:    fields["run_id"].GetStringValue(),
	}, nil
}

func printLog[T any](out io.Writer, entries []T) error {
	enc := json.NewEncoder(out)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("print log: %w", err)
		}
	}
	return nil
}

func printSummary(out io.Writer, lang string, s Summary) {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	p.Fprintf(out, "%s: winner %s after %d turns\n", s.Name, s.Winner, s.Turns)
	p.Fprintf(out, "battle %d, seed %d, %d actions over %.2f seconds\n", s.BattleID, s.Seed, s.Actions, s.Duration)
	p.Fprintf(out, "hash %s\n", s.Hash)
	if s.RunID != "" {
		p.Fprintf(out, "archived as %s\n", s.RunID)
	}
}
