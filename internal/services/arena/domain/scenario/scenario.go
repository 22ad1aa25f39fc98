// Package scenario loads battle setups from YAML or Lua files and runs
// them to completion.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/battle"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/team"
)

// Scenario is a complete battle setup.
type Scenario struct {
	Name       string             `yaml:"name" json:"name" mapstructure:"name"`
	BattleID   uint64             `yaml:"battle_id,omitempty" json:"battle_id,omitempty" mapstructure:"battle_id"`
	Seed       *int64             `yaml:"seed,omitempty" json:"seed,omitempty" mapstructure:"seed"`
	MaxTurns   int                `yaml:"max_turns,omitempty" json:"max_turns,omitempty" mapstructure:"max_turns"`
	Animations map[string]float64 `yaml:"animations,omitempty" json:"animations,omitempty" mapstructure:"animations"`
	Left       team.Team          `yaml:"left" json:"left" mapstructure:"left"`
	Right      team.Team          `yaml:"right" json:"right" mapstructure:"right"`
}

// Result is a finished simulation.
type Result struct {
	Simulation *battle.Simulation
	Turns      int
	Hash       string
}

func invalid(format string, args ...any) error {
	reason := fmt.Sprintf(format, args...)
	return apperrors.WithMetadata(apperrors.CodeScenarioInvalid, "scenario: "+reason,
		map[string]string{"reason": reason})
}

// Validate checks both teams and the scenario settings.
func (s Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return invalid("name is required")
	}
	if s.MaxTurns < 0 {
		return invalid("max_turns must not be negative")
	}
	for name, d := range s.Animations {
		if d < 0 {
			return invalid("animation %q has negative duration", name)
		}
	}
	if err := s.Left.Validate(); err != nil {
		return err
	}
	return s.Right.Validate()
}

// Options returns the simulation options the scenario implies.
func (s Scenario) Options() []battle.Option {
	opts := []battle.Option{battle.WithBattleID(s.BattleID)}
	if s.Seed != nil {
		opts = append(opts, battle.WithSeed(*s.Seed))
	}
	if len(s.Animations) > 0 {
		opts = append(opts, battle.WithCatalog(battle.Catalog(s.Animations)))
	}
	return opts
}

// Simulate builds the battle and runs it to the end. Extra options are
// applied after the scenario's own. On ErrTurnLimit the partial result is
// returned together with the error.
func (s Scenario) Simulate(opts ...battle.Option) (*Result, error) {
	sim, err := battle.New(s.Left, s.Right, append(s.Options(), opts...)...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	turns, runErr := sim.RunToEnd(s.MaxTurns)
	hash, err := sim.Log().Hash()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	res := &Result{Simulation: sim, Turns: turns, Hash: hash}
	if runErr != nil {
		return res, fmt.Errorf("scenario %s: %w", s.Name, runErr)
	}
	return res, nil
}

// LoadFile loads a scenario by extension: .yaml, .yml or .lua. A missing
// name defaults to the file's base name.
func LoadFile(path string) (Scenario, error) {
	var (
		s   Scenario
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return Scenario{}, fmt.Errorf("open scenario: %w", err)
		}
		defer f.Close()
		s, err = decodeYAML(f)
	case ".lua":
		s, err = loadLua(path)
	default:
		return Scenario{}, invalid("unsupported scenario file %q", filepath.Base(path))
	}
	if err != nil {
		return Scenario{}, err
	}
	if strings.TrimSpace(s.Name) == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// SimulateFile loads path and runs it with opts.
func SimulateFile(path string, opts ...battle.Option) (Scenario, *Result, error) {
	s, err := LoadFile(path)
	if err != nil {
		return Scenario{}, nil, err
	}
	res, err := s.Simulate(opts...)
	if err != nil && !errors.Is(err, battle.ErrTurnLimit) {
		return s, nil, err
	}
	return s, res, err
}
