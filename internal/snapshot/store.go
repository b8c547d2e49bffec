// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot keeps local copies of fetched block trees in SQLite so a
// document's flattened records survive the remote page being cleared, and
// can be transformed or republished later without refetching.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/notion-math/pkg/types"
)

const (
	indexDir  = "index"
	exportDir = "exports"
	dbFile    = "snapshots.db"
)

// ErrNotFound is returned when no snapshot matches.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot describes one stored tree.
type Snapshot struct {
	ID         int64     `json:"id" yaml:"id"`
	RootID     string    `json:"root_id" yaml:"root_id"`
	TakenAt    time.Time `json:"taken_at" yaml:"taken_at"`
	Complete   bool      `json:"complete" yaml:"complete"`
	BlockCount int       `json:"block_count" yaml:"block_count"`
}

// Store manages the snapshot SQLite database.
type Store struct {
	db  *sql.DB
	dir string
	now func() time.Time
}

// NewStore opens or creates the database at dir/index/snapshots.db and
// creates the schema if it does not exist.
func NewStore(cfg types.SnapshotConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "snapshots"
	}
	dbDir := filepath.Join(dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			root_id TEXT NOT NULL,
			taken_at TEXT NOT NULL,
			complete INTEGER NOT NULL,
			block_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			block_id TEXT NOT NULL,
			type TEXT NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY (snapshot_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_root_id ON snapshots(root_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores records for rootID in order and returns the new snapshot.
// complete records whether the fetch that produced them had no gaps.
func (s *Store) Save(ctx context.Context, rootID string, records []types.FlatRecord, complete bool) (Snapshot, error) {
	snap := Snapshot{
		RootID:     rootID,
		TakenAt:    s.now().UTC().Truncate(time.Second),
		Complete:   complete,
		BlockCount: len(records),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (root_id, taken_at, complete, block_count) VALUES (?, ?, ?, ?)`,
		snap.RootID, snap.TakenAt.Format(time.RFC3339), snap.Complete, snap.BlockCount,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("inserting snapshot: %w", err)
	}
	snap.ID, err = res.LastInsertId()
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (snapshot_id, seq, block_id, type, content) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, snap.ID, i, r.ID, string(r.Type), r.Content); err != nil {
			return Snapshot{}, fmt.Errorf("inserting record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("committing snapshot: %w", err)
	}
	return snap, nil
}

// Get returns snapshot id and its records in stored order.
func (s *Store) Get(ctx context.Context, id int64) (Snapshot, []types.FlatRecord, error) {
	snap, err := s.scanSnapshot(s.db.QueryRowContext(ctx,
		`SELECT id, root_id, taken_at, complete, block_count FROM snapshots WHERE id = ?`, id))
	if err != nil {
		return Snapshot{}, nil, err
	}
	records, err := s.records(ctx, snap.ID)
	if err != nil {
		return Snapshot{}, nil, err
	}
	return snap, records, nil
}

// Latest returns the most recent snapshot of rootID and its records.
func (s *Store) Latest(ctx context.Context, rootID string) (Snapshot, []types.FlatRecord, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM snapshots WHERE root_id = ? ORDER BY id DESC LIMIT 1`, rootID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, nil, fmt.Errorf("root %s: %w", rootID, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	return s.Get(ctx, id)
}

// List returns all snapshots, newest first.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root_id, taken_at, complete, block_count FROM snapshots ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := s.scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Delete removes a snapshot and its records.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting snapshot %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("snapshot %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		snap    Snapshot
		takenAt string
	)
	err := row.Scan(&snap.ID, &snap.RootID, &takenAt, &snap.Complete, &snap.BlockCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("scanning snapshot: %w", err)
	}
	if t, parseErr := time.Parse(time.RFC3339, takenAt); parseErr == nil {
		snap.TakenAt = t
	}
	return snap, nil
}

func (s *Store) records(ctx context.Context, snapshotID int64) ([]types.FlatRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT block_id, type, content FROM records WHERE snapshot_id = ? ORDER BY seq`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	records := []types.FlatRecord{}
	for rows.Next() {
		var (
			r        types.FlatRecord
			itemType string
		)
		if err := rows.Scan(&r.ID, &itemType, &r.Content); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.Type = types.BlockType(itemType)
		records = append(records, r)
	}
	return records, rows.Err()
}
