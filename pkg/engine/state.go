package engine

import (
	"context"

	"github.com/agentstation/utc"
)

// StatusSynced is the terminal status of a successful sync.
const StatusSynced = "synced"

// SyncState is the persisted outcome of the most recent sync for one
// item.
type SyncState struct {
	ItemID     string   `yaml:"item_id" json:"item_id"`
	SourceHash string   `yaml:"source_hash" json:"source_hash"`
	TargetHash string   `yaml:"target_hash" json:"target_hash"`
	LastSync   utc.Time `yaml:"last_sync" json:"last_sync"`
	Status     string   `yaml:"status" json:"status"`
	Conflicts  int      `yaml:"conflicts" json:"conflicts"`
}

// StateStore persists per-item sync state. Implementations must be safe
// for concurrent use.
type StateStore interface {
	// Put inserts or replaces the state for its item.
	Put(ctx context.Context, state SyncState) error

	// Get returns the state for an item, or ErrNotFound.
	Get(ctx context.Context, itemID string) (SyncState, error)

	// List returns all stored states ordered by item ID.
	List(ctx context.Context) ([]SyncState, error)

	// Close releases the store's resources.
	Close() error
}
