package scenario

import (
	"path/filepath"
	"testing"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
)

func TestDecodeFromJSONNumbers(t *testing.T) {
	data := map[string]any{
		"name":      "remote",
		"seed":      float64(5),
		"battle_id": float64(3),
		"left": map[string]any{
			"name": "A",
			"fusions": []any{
				map[string]any{"units": []any{
					map[string]any{"name": "a", "pwr": float64(3), "hp": float64(5)},
				}},
			},
		},
		"right": map[string]any{
			"name": "B",
			"fusions": []any{
				map[string]any{"units": []any{
					map[string]any{"name": "b", "pwr": float64(2), "hp": float64(5)},
				}},
			},
		},
	}

	s, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Seed == nil || *s.Seed != 5 || s.BattleID != 3 {
		t.Fatalf("settings = %+v", s)
	}
	if s.Left.Fusions[0].Units[0].Pwr != 3 {
		t.Fatalf("left = %+v", s.Left)
	}

	res, err := s.Simulate()
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if res.Simulation.Winner().String() != "left" {
		t.Fatalf("winner = %s, want left", res.Simulation.Winner())
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{name: "empty", data: nil},
		{name: "unknown key", data: map[string]any{"name": "x", "sead": 1}},
		{name: "missing name", data: map[string]any{"left": map[string]any{"name": "A"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}

	_, err := Decode(map[string]any{"name": "x", "sead": 1})
	if apperrors.CodeOf(err) != apperrors.CodeScenarioInvalid {
		t.Fatalf("err = %v, want scenario invalid", err)
	}
}

func TestMapRoundTrip(t *testing.T) {
	s, err := LoadFile(filepath.Join("testdata", "duel.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	data, err := s.Map()
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want, err := s.Simulate()
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	got, err := back.Simulate()
	if err != nil {
		t.Fatalf("simulate decoded: %v", err)
	}
	if got.Hash != want.Hash {
		t.Fatalf("hash = %s, want %s", got.Hash, want.Hash)
	}
}
