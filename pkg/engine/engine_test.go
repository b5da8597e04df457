package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconhq/mailrecon/pkg/conflict"
	"github.com/reconhq/mailrecon/pkg/errors"
	"github.com/reconhq/mailrecon/pkg/logging"
	"github.com/reconhq/mailrecon/pkg/monitor"
	"github.com/reconhq/mailrecon/pkg/record"
)

func newTestEngine(opts ...Option) *Engine {
	base := []Option{
		WithLogger(logging.Nop),
		WithMonitor(monitor.New(monitor.WithLogger(logging.Nop))),
	}
	return New(append(base, opts...)...)
}

func validRecord(overrides map[string]record.Value) record.Record {
	r := record.Record{
		"id":    "contact-1",
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
	}
	for k, v := range overrides {
		r[k] = v
	}
	return r
}

func TestSyncResolvesConflictsWithSourceWins(t *testing.T) {
	e := newTestEngine()
	defer e.Close()

	source := validRecord(map[string]record.Value{"name": "Ada K. Lovelace"})
	target := validRecord(nil)

	result, err := e.Sync(context.Background(), source, target, conflict.StrategyLastWriteWins, nil)
	require.NoError(t, err)

	assert.Equal(t, "contact-1", result.ItemID)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "name", result.Conflicts[0].Change.Field)
	assert.Equal(t, "Ada K. Lovelace", result.Target["name"])

	// Inputs stay untouched.
	assert.Equal(t, "Ada Lovelace", target["name"])
	assert.Equal(t, "Ada K. Lovelace", source["name"])

	state, err := e.StateOf(context.Background(), "contact-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSynced, state.Status)
	assert.Equal(t, 1, state.Conflicts)
	assert.NotEmpty(t, state.SourceHash)
	assert.Equal(t, state.SourceHash, state.TargetHash)

	metrics := e.Monitor().Metrics()
	assert.Equal(t, int64(1), metrics.SyncCount)
	assert.Equal(t, int64(1), metrics.ConflictCount)
}

func TestSyncIsIdempotentForIdenticalRecords(t *testing.T) {
	e := newTestEngine()
	defer e.Close()

	source := validRecord(nil)
	target := validRecord(nil)

	first, err := e.Sync(context.Background(), source, target, conflict.StrategyLastWriteWins, nil)
	require.NoError(t, err)
	assert.Empty(t, first.Conflicts)

	second, err := e.Sync(context.Background(), source, first.Target, conflict.StrategyLastWriteWins, nil)
	require.NoError(t, err)
	assert.Empty(t, second.Conflicts)
	assert.True(t, source.Equal(second.Target))
}

func TestSyncManualStrategyUsesChoices(t *testing.T) {
	e := newTestEngine()
	defer e.Close()

	source := validRecord(map[string]record.Value{"email": "ada@new.example.com"})
	target := validRecord(nil)

	result, err := e.Sync(context.Background(), source, target, conflict.StrategyManual,
		map[string]record.Value{"email": "ada@chosen.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ada@chosen.example.com", result.Target["email"])
}

func TestSyncManualStrategyMissingChoiceFails(t *testing.T) {
	e := newTestEngine()
	defer e.Close()

	source := validRecord(map[string]record.Value{"email": "ada@new.example.com"})
	target := validRecord(nil)

	_, err := e.Sync(context.Background(), source, target, conflict.StrategyManual, nil)
	require.Error(t, err)
	assert.True(t, errors.IsMissingManualChoice(err))
	assert.Equal(t, int64(1), e.Monitor().Metrics().ErrorCount)

	// Nothing was persisted for the failed run.
	_, err = e.StateOf(context.Background(), "contact-1")
	assert.True(t, errors.IsNotFound(err))
}

func TestSyncRejectsUnknownStrategy(t *testing.T) {
	e := newTestEngine()
	defer e.Close()

	_, err := e.Sync(context.Background(), validRecord(nil), validRecord(nil), "newest_wins", nil)
	require.Error(t, err)
	assert.True(t, errors.IsUnsupportedStrategy(err))
}

func TestSyncValidationFailureDoesNotAbort(t *testing.T) {
	e := newTestEngine()
	defer e.Close()

	source := record.Record{"id": "item-9", "name": "No Email"}
	target := record.Record{"id": "item-9"}

	result, err := e.Sync(context.Background(), source, target, conflict.StrategyLastWriteWins, nil)
	require.NoError(t, err)
	assert.Equal(t, "No Email", result.Target["name"])

	// Both sides failed validation.
	assert.Equal(t, int64(2), e.Monitor().Metrics().ErrorCount)
	assert.Equal(t, int64(1), e.Monitor().Metrics().SyncCount)
}

func TestSyncFallsBackToTargetID(t *testing.T) {
	e := newTestEngine()
	defer e.Close()

	source := record.Record{"name": "Nameless", "email": "n@example.com"}
	target := validRecord(map[string]record.Value{"id": "target-7"})

	result, err := e.Sync(context.Background(), source, target, conflict.StrategyMerge, nil)
	require.NoError(t, err)
	assert.Equal(t, "target-7", result.ItemID)

	_, err = e.StateOf(context.Background(), "target-7")
	assert.NoError(t, err)
}

func TestSyncMergeStrategyJoinsStrings(t *testing.T) {
	e := newTestEngine()
	defer e.Close()

	source := validRecord(map[string]record.Value{"name": "Ada"})
	target := validRecord(map[string]record.Value{"name": "Lovelace"})

	result, err := e.Sync(context.Background(), source, target, conflict.StrategyMerge, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada / Lovelace", result.Target["name"])
}

func TestRecover(t *testing.T) {
	e := newTestEngine()
	defer e.Close()

	assert.False(t, e.Recover(context.Background(), "never-synced"))

	_, err := e.Sync(context.Background(), validRecord(nil), validRecord(nil), conflict.StrategyLastWriteWins, nil)
	require.NoError(t, err)
	assert.True(t, e.Recover(context.Background(), "contact-1"))
}

func TestConcurrentSyncsDistinctItems(t *testing.T) {
	e := newTestEngine()
	defer e.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%26))
			source := record.Record{"id": id, "name": "N " + id, "email": id + "@example.com"}
			_, err := e.Sync(context.Background(), source, source.Clone(), conflict.StrategyLastWriteWins, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	states, err := e.States(context.Background())
	require.NoError(t, err)
	assert.Len(t, states, 20)
	assert.Equal(t, int64(20), e.Monitor().Metrics().SyncCount)
}

func TestConcurrentSyncsSameItemSerialize(t *testing.T) {
	e := newTestEngine()
	defer e.Close()

	source := validRecord(map[string]record.Value{"name": "Ada K. Lovelace"})
	target := validRecord(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Sync(context.Background(), source, target, conflict.StrategyLastWriteWins, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Every pass resolves the target to the source, so the overwritten
	// state must be internally consistent regardless of interleaving.
	state, err := e.StateOf(context.Background(), "contact-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSynced, state.Status)
	assert.Equal(t, 1, state.Conflicts)
	assert.Equal(t, state.SourceHash, state.TargetHash)

	states, err := e.States(context.Background())
	require.NoError(t, err)
	assert.Len(t, states, 1)
	assert.Equal(t, int64(50), e.Monitor().Metrics().SyncCount)
	assert.Equal(t, int64(50), e.Monitor().Metrics().ConflictCount)
}

func TestMemoryStoreListSorted(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Put(context.Background(), SyncState{ItemID: id, Status: StatusSynced}))
	}

	states, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.Equal(t, "a", states[0].ItemID)
	assert.Equal(t, "c", states[2].ItemID)
}
