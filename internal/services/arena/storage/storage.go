// Package storage defines the battle archive: finished battles kept for
// later lookup and verification.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
	"github.com/louisbranch/fusionarena/internal/services/arena/domain/battle"
)

// ErrNotFound is returned for unknown run ids.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "battle record not found")

// BattleRecord is one archived battle. Log holds the applied actions as
// JSON envelopes and is opaque to the archive.
type BattleRecord struct {
	RunID     string
	BattleID  uint64
	Seed      int64
	Name      string
	Winner    string
	Turns     int
	Duration  float64
	Hash      string
	Actions   int
	Log       []byte
	CreatedAt time.Time
}

// BattleStore persists battle records.
type BattleStore interface {
	SaveBattle(ctx context.Context, record BattleRecord) (BattleRecord, error)
	GetBattle(ctx context.Context, runID string) (BattleRecord, error)
	ListBattles(ctx context.Context, limit int) ([]BattleRecord, error)
	VerifyBattle(ctx context.Context, runID, hash string) error
}

// NewRecord captures a finished simulation.
func NewRecord(name string, sim *battle.Simulation) (BattleRecord, error) {
	hash, err := sim.Log().Hash()
	if err != nil {
		return BattleRecord{}, fmt.Errorf("hash log: %w", err)
	}
	logJSON, err := json.Marshal(sim.Log().Envelopes())
	if err != nil {
		return BattleRecord{}, fmt.Errorf("encode log: %w", err)
	}
	return BattleRecord{
		BattleID: sim.ID(),
		Seed:     sim.Seed(),
		Name:     name,
		Winner:   sim.Winner().String(),
		Turns:    sim.Turn(),
		Duration: sim.Duration(),
		Hash:     hash,
		Actions:  sim.Log().Len(),
		Log:      logJSON,
	}, nil
}

// HashMismatch builds the error VerifyBattle returns when hashes differ.
func HashMismatch(runID, want, got string) error {
	return apperrors.WithMetadata(apperrors.CodeHashMismatch,
		fmt.Sprintf("run %s: hash %s does not match archived %s", runID, got, want),
		map[string]string{"run_id": runID})
}
