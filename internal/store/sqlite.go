// Package store provides the durable SQLite-backed sync-state store.
// SQLite in WAL mode tolerates concurrent reconciliation workers on one
// database file.
package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/reconhq/mailrecon/pkg/engine"
	"github.com/reconhq/mailrecon/pkg/errors"
	"github.com/reconhq/mailrecon/pkg/retry"

	_ "modernc.org/sqlite"
)

// SQLite persists engine.SyncState rows in a single table.
type SQLite struct {
	db     *sql.DB
	writes *retry.Runner
}

var _ engine.StateStore = (*SQLite)(nil)

// Open opens (or creates) the database file and initializes the schema.
func Open(path string) (*SQLite, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &SQLite{
		db: db,
		// Writes retry on transient contention (BUSY, LOCKED) under
		// concurrent workers.
		writes: retry.New(
			retry.WithMaxAttempts(5),
			retry.WithBaseDelay(10*time.Millisecond),
			retry.WithMaxDelay(500*time.Millisecond),
		),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sync_states (
		item_id     TEXT PRIMARY KEY,
		source_hash TEXT NOT NULL,
		target_hash TEXT NOT NULL,
		last_sync   TEXT NOT NULL,
		status      TEXT NOT NULL,
		conflicts   INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_sync_states_status ON sync_states(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put inserts or replaces the state for its item.
func (s *SQLite) Put(ctx context.Context, state engine.SyncState) error {
	err := s.writes.Do(ctx, "put sync state", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO sync_states (item_id, source_hash, target_hash, last_sync, status, conflicts)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(item_id) DO UPDATE SET
				source_hash = excluded.source_hash,
				target_hash = excluded.target_hash,
				last_sync   = excluded.last_sync,
				status      = excluded.status,
				conflicts   = excluded.conflicts`,
			state.ItemID,
			state.SourceHash,
			state.TargetHash,
			state.LastSync.Format(time.RFC3339Nano),
			state.Status,
			state.Conflicts,
		)
		return err
	})
	if err != nil {
		return errors.WrapStore("put", state.ItemID, err)
	}
	return nil
}

// Get returns the state for an item, or ErrNotFound.
func (s *SQLite) Get(ctx context.Context, itemID string) (engine.SyncState, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT item_id, source_hash, target_hash, last_sync, status, conflicts
		 FROM sync_states WHERE item_id = ?`, itemID)

	state, err := scanState(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return engine.SyncState{}, errors.NewNotFoundError("sync state", itemID)
		}
		return engine.SyncState{}, errors.WrapStore("get", itemID, err)
	}
	return state, nil
}

// List returns all stored states ordered by item ID.
func (s *SQLite) List(ctx context.Context) ([]engine.SyncState, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, source_hash, target_hash, last_sync, status, conflicts
		 FROM sync_states ORDER BY item_id`)
	if err != nil {
		return nil, errors.WrapStore("list", "", err)
	}
	defer rows.Close()

	var states []engine.SyncState
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, errors.WrapStore("list", "", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapStore("list", "", err)
	}
	return states, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanState(row scanner) (engine.SyncState, error) {
	var (
		state    engine.SyncState
		lastSync string
	)
	if err := row.Scan(&state.ItemID, &state.SourceHash, &state.TargetHash,
		&lastSync, &state.Status, &state.Conflicts); err != nil {
		return engine.SyncState{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, lastSync)
	if err != nil {
		return engine.SyncState{}, fmt.Errorf("parse last_sync: %w", err)
	}
	state.LastSync = utc.Time{Time: t}
	return state, nil
}
