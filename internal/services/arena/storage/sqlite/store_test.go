package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/battle"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/team"
	"github.com/louisbranch/fusionarena/internal/services/arena/storage"
)

func finishedRecord(t *testing.T) storage.BattleRecord {
	t.Helper()
	side := func(name string, pwr, hp int64) team.Team {
		return team.Team{Name: name, Fusions: []team.Fusion{{
			Units: []team.Unit{{Name: name + "-unit", Pwr: pwr, HP: hp}},
		}}}
	}
	sim, err := battle.New(side("A", 3, 5), side("B", 2, 5), battle.WithBattleID(11))
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	if _, err := sim.RunToEnd(0); err != nil {
		t.Fatalf("run: %v", err)
	}
	record, err := storage.NewRecord("exchange", sim)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	return record
}

func TestSaveAndGetBattle(t *testing.T) {
	store := openTempStore(t)
	record := finishedRecord(t)

	saved, err := store.SaveBattle(context.Background(), record)
	if err != nil {
		t.Fatalf("save battle: %v", err)
	}
	if saved.RunID == "" {
		t.Fatal("expected generated run id")
	}
	if saved.CreatedAt.IsZero() {
		t.Fatal("expected creation time")
	}

	got, err := store.GetBattle(context.Background(), saved.RunID)
	if err != nil {
		t.Fatalf("get battle: %v", err)
	}
	if got.Hash != record.Hash || got.BattleID != 11 || got.Seed != 11 {
		t.Fatalf("got = %+v, want hash %s battle 11", got, record.Hash)
	}
	if got.Winner != "left" || got.Turns != record.Turns || got.Actions != record.Actions {
		t.Fatalf("got = %+v, want %+v", got, record)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, saved.CreatedAt)
	}

	var envelopes []map[string]any
	if err := json.Unmarshal(got.Log, &envelopes); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if len(envelopes) != record.Actions {
		t.Fatalf("envelopes = %d, want %d", len(envelopes), record.Actions)
	}
}

func TestListBattlesNewestFirst(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		record := finishedRecord(t)
		record.Name = name
		record.CreatedAt = now.Add(time.Duration(i) * time.Minute)
		if _, err := store.SaveBattle(context.Background(), record); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}

	records, err := store.ListBattles(context.Background(), 2)
	if err != nil {
		t.Fatalf("list battles: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records len = %d, want 2", len(records))
	}
	if records[0].Name != "third" || records[1].Name != "second" {
		t.Fatalf("records = %q, %q", records[0].Name, records[1].Name)
	}

	if _, err := store.ListBattles(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero limit")
	}
}

func TestVerifyBattle(t *testing.T) {
	store := openTempStore(t)
	saved, err := store.SaveBattle(context.Background(), finishedRecord(t))
	if err != nil {
		t.Fatalf("save battle: %v", err)
	}

	if err := store.VerifyBattle(context.Background(), saved.RunID, saved.Hash); err != nil {
		t.Fatalf("verify matching hash: %v", err)
	}

	err = store.VerifyBattle(context.Background(), saved.RunID, "deadbeef")
	if apperrors.CodeOf(err) != apperrors.CodeHashMismatch {
		t.Fatalf("err = %v, want hash mismatch", err)
	}

	err = store.VerifyBattle(context.Background(), "missing", saved.Hash)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestSaveBattleValidation(t *testing.T) {
	store := openTempStore(t)

	if _, err := store.SaveBattle(context.Background(), storage.BattleRecord{}); err == nil {
		t.Fatal("expected validation error for empty record")
	}
	if _, err := store.SaveBattle(context.Background(), storage.BattleRecord{Name: "x"}); err == nil {
		t.Fatal("expected validation error for missing hash")
	}
}

func TestCanceledContext(t *testing.T) {
	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.GetBattle(ctx, "any"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context canceled", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arena.sqlite")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
