// Package mailrecon reconciles mail-archive records against CRM
// activity records: duplicate suppression before insert, field-level
// change tracking, strategy-driven conflict resolution, and durable
// per-item sync state.
package mailrecon

import (
	"context"
	"fmt"

	"github.com/reconhq/mailrecon/pkg/conflict"
	"github.com/reconhq/mailrecon/pkg/dedupe"
	"github.com/reconhq/mailrecon/pkg/engine"
	"github.com/reconhq/mailrecon/pkg/monitor"
	"github.com/reconhq/mailrecon/pkg/record"
)

// Reconciler is the top-level entry point combining duplicate detection
// and record synchronization behind one configured instance.
type Reconciler interface {
	// FindDuplicates reports whether the candidate already exists among
	// the pre-fetched target records.
	FindDuplicates(candidate record.MailRecord, existing []record.MailRecord) *dedupe.Report

	// Sync reconciles a source record against a target record under the
	// given resolution strategy.
	Sync(ctx context.Context, source, target record.Record, strategy conflict.Strategy, manualChoices map[string]record.Value) (*engine.SyncResult, error)

	// Recover reports whether a failed run for the item can resume from
	// its last persisted state.
	Recover(ctx context.Context, itemID string) bool

	// StateOf returns the persisted sync state for one item.
	StateOf(ctx context.Context, itemID string) (engine.SyncState, error)

	// States returns all persisted sync states.
	States(ctx context.Context) ([]engine.SyncState, error)

	// Metrics returns a snapshot of the run counters.
	Metrics() monitor.Metrics

	// Close releases the underlying state store.
	Close() error
}

// reconciler is the internal implementation of the Reconciler
// interface.
type reconciler struct {
	config   *config
	engine   *engine.Engine
	detector *dedupe.Detector
	monitor  *monitor.Monitor
}

// New creates a Reconciler with the given options.
func New(opts ...Option) (Reconciler, error) {
	c := defaultConfig()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	mon := monitor.New(c.monitorOptions()...)

	engineOpts := append(c.engineOptions(), engine.WithMonitor(mon))
	r := &reconciler{
		config:   c,
		engine:   engine.New(engineOpts...),
		detector: dedupe.New(c.detectorOptions()...),
		monitor:  mon,
	}
	return r, nil
}

func (r *reconciler) FindDuplicates(candidate record.MailRecord, existing []record.MailRecord) *dedupe.Report {
	return r.detector.FindDuplicates(candidate, existing)
}

func (r *reconciler) Sync(ctx context.Context, source, target record.Record, strategy conflict.Strategy, manualChoices map[string]record.Value) (*engine.SyncResult, error) {
	return r.engine.Sync(ctx, source, target, strategy, manualChoices)
}

func (r *reconciler) Recover(ctx context.Context, itemID string) bool {
	return r.engine.Recover(ctx, itemID)
}

func (r *reconciler) StateOf(ctx context.Context, itemID string) (engine.SyncState, error) {
	return r.engine.StateOf(ctx, itemID)
}

func (r *reconciler) States(ctx context.Context) ([]engine.SyncState, error) {
	return r.engine.States(ctx)
}

func (r *reconciler) Metrics() monitor.Metrics {
	return r.monitor.Metrics()
}

func (r *reconciler) Close() error {
	return r.engine.Close()
}
