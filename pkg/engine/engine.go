// Package engine orchestrates a reconciliation pass: change tracking,
// conflict detection and resolution, validation, and sync-state
// persistence, with per-run metrics reported to the monitor.
package engine

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reconhq/mailrecon/pkg/conflict"
	"github.com/reconhq/mailrecon/pkg/errors"
	"github.com/reconhq/mailrecon/pkg/logging"
	"github.com/reconhq/mailrecon/pkg/monitor"
	"github.com/reconhq/mailrecon/pkg/record"
	"github.com/reconhq/mailrecon/pkg/track"
	"github.com/reconhq/mailrecon/pkg/validate"
)

// lockStripes sizes the per-item mutex table. Distinct items may sync
// in parallel; calls for the same item serialize on their stripe.
const lockStripes = 32

// Engine composes the reconciliation components and owns all SyncState
// transitions.
type Engine struct {
	store     StateStore
	monitor   *monitor.Monitor
	tracker   *track.Tracker
	detector  *conflict.Detector
	resolver  *conflict.Resolver
	validator *validate.Validator
	logger    zerolog.Logger
	locks     [lockStripes]sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore overrides the default in-memory state store.
func WithStore(store StateStore) Option {
	return func(e *Engine) {
		if store != nil {
			e.store = store
		}
	}
}

// WithMonitor supplies the monitor receiving sync, conflict, and error
// events.
func WithMonitor(m *monitor.Monitor) Option {
	return func(e *Engine) {
		if m != nil {
			e.monitor = m
		}
	}
}

// WithValidator overrides the default record validator.
func WithValidator(v *validate.Validator) Option {
	return func(e *Engine) {
		if v != nil {
			e.validator = v
		}
	}
}

// WithResolver overrides the default conflict resolver.
func WithResolver(r *conflict.Resolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.resolver = r
		}
	}
}

// WithDetector overrides the default conflict detector.
func WithDetector(d *conflict.Detector) Option {
	return func(e *Engine) {
		if d != nil {
			e.detector = d
		}
	}
}

// WithLogger routes the engine's structured output.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an Engine with default components and an in-memory state
// store.
func New(opts ...Option) *Engine {
	e := &Engine{
		store:     newMemoryStore(),
		monitor:   monitor.New(),
		tracker:   track.NewTracker(),
		detector:  conflict.NewDetector(),
		resolver:  conflict.NewResolver(),
		validator: validate.New(),
		logger:    *logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SyncResult reports one completed reconciliation pass. Source is
// returned unchanged; Target carries the resolved field values.
type SyncResult struct {
	RunID     string              `yaml:"run_id" json:"run_id"`
	ItemID    string              `yaml:"item_id" json:"item_id"`
	Source    record.Record       `yaml:"source" json:"source"`
	Target    record.Record       `yaml:"target" json:"target"`
	Conflicts []conflict.Conflict `yaml:"conflicts" json:"conflicts"`
	Duration  time.Duration       `yaml:"duration" json:"duration"`
	Strategy  conflict.Strategy   `yaml:"strategy" json:"strategy"`
}

// Sync reconciles a source record against a target record under the
// given resolution strategy. For the manual strategy, manualChoices
// supplies the per-field decision; a conflicting field without one is a
// hard failure. Resolved values are applied to a copy of the target;
// the inputs are never mutated. Validation failures are logged and
// counted but never abort the pass.
func (e *Engine) Sync(ctx context.Context, source, target record.Record, strategy conflict.Strategy, manualChoices map[string]record.Value) (*SyncResult, error) {
	if _, err := conflict.ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}

	itemID := source.ID()
	if itemID == "" {
		itemID = target.ID()
	}

	lock := e.lockFor(itemID)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()
	result := &SyncResult{
		RunID:    uuid.NewString(),
		ItemID:   itemID,
		Source:   source,
		Target:   target.Clone(),
		Strategy: strategy,
	}

	changes := e.tracker.Track(source, result.Target)
	conflicts := e.detector.Detect(changes)
	result.Conflicts = conflicts

	for _, c := range conflicts {
		var choice record.Value
		if strategy == conflict.StrategyManual {
			choice = manualChoices[c.Change.Field]
		}

		resolved, err := e.resolver.Resolve(c, strategy, choice)
		if err != nil {
			e.monitor.TrackError(err)
			return nil, err
		}
		result.Target[c.Change.Field] = resolved
		e.monitor.TrackConflict(c)
	}

	if !e.validator.Validate(source) {
		e.trackValidationFailure("source", itemID)
	}
	if !e.validator.Validate(result.Target) {
		e.trackValidationFailure("target", itemID)
	}

	if itemID != "" {
		state := SyncState{
			ItemID:     itemID,
			SourceHash: e.validator.Checksum(source),
			TargetHash: e.validator.Checksum(result.Target),
			LastSync:   utc.Now(),
			Status:     StatusSynced,
			Conflicts:  len(conflicts),
		}
		if err := e.store.Put(ctx, state); err != nil {
			wrapped := errors.WrapStore("put", itemID, err)
			e.monitor.TrackError(wrapped)
			return nil, wrapped
		}
	}

	result.Duration = time.Since(started)
	e.monitor.TrackSync("sync_completed", map[string]any{
		"run_id":    result.RunID,
		"item_id":   itemID,
		"conflicts": len(conflicts),
		"strategy":  string(strategy),
	})

	e.logger.Info().
		Str("run_id", result.RunID).
		Str("item_id", itemID).
		Int("conflicts", len(conflicts)).
		Dur("duration", result.Duration).
		Msg("sync completed")

	return result, nil
}

// Recover inspects the stored state for an item after a failed run and
// reports whether recovery is possible. Diagnostic only; no state is
// modified.
func (e *Engine) Recover(ctx context.Context, itemID string) bool {
	state, err := e.store.Get(ctx, itemID)
	if err != nil {
		if errors.IsNotFound(err) {
			e.logger.Warn().Str("item_id", itemID).Msg("no sync state to recover from")
		} else {
			e.logger.Error().Err(err).Str("item_id", itemID).Msg("state lookup failed")
			e.monitor.TrackError(err)
		}
		return false
	}

	e.logger.Info().
		Str("item_id", itemID).
		Str("status", state.Status).
		Time("last_sync", state.LastSync.Time).
		Int("conflicts", state.Conflicts).
		Msg("recovery possible from last synced state")
	return true
}

// StateOf returns the stored state for one item.
func (e *Engine) StateOf(ctx context.Context, itemID string) (SyncState, error) {
	return e.store.Get(ctx, itemID)
}

// States returns all stored states.
func (e *Engine) States(ctx context.Context) ([]SyncState, error) {
	return e.store.List(ctx)
}

// Monitor exposes the engine's monitor for metrics and log inspection.
func (e *Engine) Monitor() *monitor.Monitor {
	return e.monitor
}

// Resolutions returns the resolver's append-only history.
func (e *Engine) Resolutions() []conflict.ResolutionRecord {
	return e.resolver.History()
}

// Close releases the underlying state store.
func (e *Engine) Close() error {
	return e.store.Close()
}

func (e *Engine) trackValidationFailure(side, itemID string) {
	err := errors.NewValidationError(side, itemID, "record failed validation")
	e.logger.Warn().Str("side", side).Str("item_id", itemID).Msg("record failed validation")
	e.monitor.TrackError(err)
}

// lockFor maps an item ID onto its mutex stripe.
func (e *Engine) lockFor(itemID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(itemID))
	return &e.locks[h.Sum32()%lockStripes]
}
