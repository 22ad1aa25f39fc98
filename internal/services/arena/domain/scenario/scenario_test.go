package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/battle"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/team"
)

func TestLoadYAML(t *testing.T) {
	s, err := LoadFile(filepath.Join("testdata", "duel.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Name != "duel" || s.BattleID != 7 || s.Seed == nil || *s.Seed != 99 || s.MaxTurns != 50 {
		t.Fatalf("settings = %+v", s)
	}
	if len(s.Left.Fusions) != 2 || len(s.Right.Fusions[0].Units) != 2 {
		t.Fatalf("teams = %+v / %+v", s.Left, s.Right)
	}
	brute := s.Right.Fusions[0].Units[0]
	if brute.Reactions[0].Modifier == nil || len(brute.Reactions[0].Modifier.Args) != 2 {
		t.Fatalf("brute modifier = %+v", brute.Reactions[0].Modifier)
	}
	if s.Animations["ember"] != 0.25 {
		t.Fatalf("animations = %v", s.Animations)
	}
}

func TestLoadYAMLRejectsUnknownKeys(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("name: x\nleft: {name: A}\nright: {name: B}\nsead: 4\n"))
	if apperrors.CodeOf(err) != apperrors.CodeScenarioInvalid {
		t.Fatalf("err = %v, want scenario invalid", err)
	}
	_, err = LoadYAML(strings.NewReader(""))
	if apperrors.CodeOf(err) != apperrors.CodeScenarioInvalid {
		t.Fatalf("empty doc err = %v", err)
	}
}

func TestLoadLuaMatchesYAML(t *testing.T) {
	fromYAML, err := LoadFile(filepath.Join("testdata", "duel.yaml"))
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	fromLua, err := LoadFile(filepath.Join("testdata", "duel.lua"))
	if err != nil {
		t.Fatalf("load lua: %v", err)
	}

	a, err := fromYAML.Simulate()
	if err != nil {
		t.Fatalf("simulate yaml: %v", err)
	}
	b, err := fromLua.Simulate()
	if err != nil {
		t.Fatalf("simulate lua: %v", err)
	}
	if a.Hash != b.Hash || a.Turns != b.Turns {
		t.Fatalf("yaml %s/%d != lua %s/%d", a.Hash, a.Turns, b.Hash, b.Turns)
	}
	if !a.Simulation.Ended() {
		t.Fatal("battle did not end")
	}
	effects := 0
	for _, e := range a.Simulation.Log().Entries() {
		if pe, ok := e.Action.(battle.PlayEffect); ok && pe.Name == "ember" {
			effects++
		}
	}
	if effects != 1 {
		t.Fatalf("ember effects = %d, want 1", effects)
	}
}

func TestLoadLuaErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{name: "no return", file: "no_return.lua", want: "must return a Battle"},
		{name: "unknown team key", file: "bad_team.lua", want: "fusoins"},
		{name: "missing file", file: "absent.lua", want: "load lua"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLua(filepath.Join("testdata", tt.file))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
			if apperrors.CodeOf(err) != apperrors.CodeScenarioInvalid {
				t.Fatalf("code = %s", apperrors.CodeOf(err))
			}
		})
	}
}

func TestLoadFileDefaultsNameAndRejectsExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skirmish.yml")
	body := "left:\n  name: A\n  fusions: [{slot: 0, units: [{name: a, pwr: 1, hp: 1}]}]\nright:\n  name: B\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Name != "skirmish" {
		t.Fatalf("name = %q, want file base name", s.Name)
	}

	if _, err := LoadFile(filepath.Join(dir, "skirmish.toml")); apperrors.CodeOf(err) != apperrors.CodeScenarioInvalid {
		t.Fatalf("toml err = %v", err)
	}
}

func TestSimulateTurnLimit(t *testing.T) {
	pacifist := team.Team{Name: "A", Fusions: []team.Fusion{{Units: []team.Unit{{Name: "a", HP: 3}}}}}
	s := Scenario{Name: "stalemate", MaxTurns: 3, Left: pacifist, Right: pacifist}
	res, err := s.Simulate(battle.WithLogger(zap.NewNop()))
	if !errors.Is(err, battle.ErrTurnLimit) {
		t.Fatalf("err = %v, want turn limit", err)
	}
	if res == nil || res.Turns != 3 || res.Hash == "" {
		t.Fatalf("partial result = %+v", res)
	}
}

func TestSimulateFile(t *testing.T) {
	s, res, err := SimulateFile(filepath.Join("testdata", "duel.lua"), battle.WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if s.Name != "duel" || res.Simulation.Seed() != 99 {
		t.Fatalf("scenario %q seed %d", s.Name, res.Simulation.Seed())
	}
}
