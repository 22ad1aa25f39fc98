package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/louisbranch/fusionarena/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/fusionarena/internal/services/arena/storage"
	"github.com/louisbranch/fusionarena/internal/services/arena/storage/sqlite/migrations"
)

// Store is the SQLite battle archive.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.BattleStore = (*Store)(nil)

// Open opens the archive at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// SaveBattle inserts record, assigning a run id and creation time when
// they are missing, and returns the stored record.
func (s *Store) SaveBattle(ctx context.Context, record storage.BattleRecord) (storage.BattleRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.BattleRecord{}, err
	}
	record.Name = strings.TrimSpace(record.Name)
	record.Hash = strings.TrimSpace(record.Hash)
	if record.Name == "" {
		return storage.BattleRecord{}, fmt.Errorf("battle name is required")
	}
	if record.Hash == "" {
		return storage.BattleRecord{}, fmt.Errorf("battle hash is required")
	}
	if strings.TrimSpace(record.RunID) == "" {
		record.RunID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.Log == nil {
		record.Log = []byte("[]")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO battles (
	run_id,
	battle_id,
	seed,
	name,
	winner,
	turns,
	duration,
	hash,
	actions,
	log,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		record.RunID,
		int64(record.BattleID),
		record.Seed,
		record.Name,
		record.Winner,
		record.Turns,
		record.Duration,
		record.Hash,
		record.Actions,
		record.Log,
		record.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return storage.BattleRecord{}, fmt.Errorf("save battle: %w", err)
	}
	record.CreatedAt = time.UnixMilli(record.CreatedAt.UTC().UnixMilli()).UTC()
	return record, nil
}

const selectBattle = `
SELECT
	run_id,
	battle_id,
	seed,
	name,
	winner,
	turns,
	duration,
	hash,
	actions,
	log,
	created_at
FROM battles
`

type scanner interface {
	Scan(dest ...any) error
}

func scanBattle(row scanner) (storage.BattleRecord, error) {
	var (
		r         storage.BattleRecord
		battleID  int64
		createdAt int64
	)
	if err := row.Scan(&r.RunID, &battleID, &r.Seed, &r.Name, &r.Winner, &r.Turns,
		&r.Duration, &r.Hash, &r.Actions, &r.Log, &createdAt); err != nil {
		return storage.BattleRecord{}, err
	}
	r.BattleID = uint64(battleID)
	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	return r, nil
}

// GetBattle returns the record for runID.
func (s *Store) GetBattle(ctx context.Context, runID string) (storage.BattleRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.BattleRecord{}, err
	}
	r, err := scanBattle(s.sqlDB.QueryRowContext(ctx, selectBattle+"WHERE run_id = ?", strings.TrimSpace(runID)))
	if errors.Is(err, sql.ErrNoRows) {
		return storage.BattleRecord{}, fmt.Errorf("run %s: %w", runID, storage.ErrNotFound)
	}
	if err != nil {
		return storage.BattleRecord{}, fmt.Errorf("get battle: %w", err)
	}
	return r, nil
}

// ListBattles lists newest-first records.
func (s *Store) ListBattles(ctx context.Context, limit int) ([]storage.BattleRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(ctx, selectBattle+"ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	defer rows.Close()

	records := make([]storage.BattleRecord, 0, limit)
	for rows.Next() {
		r, err := scanBattle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan battle: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate battles: %w", err)
	}
	return records, nil
}

// VerifyBattle checks hash against the archived hash of runID.
func (s *Store) VerifyBattle(ctx context.Context, runID, hash string) error {
	r, err := s.GetBattle(ctx, runID)
	if err != nil {
		return err
	}
	if r.Hash != strings.TrimSpace(hash) {
		return storage.HashMismatch(runID, r.Hash, hash)
	}
	return nil
}
