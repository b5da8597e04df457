package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/reconhq/mailrecon/internal/store"
	"github.com/reconhq/mailrecon/pkg/conflict"
	"github.com/reconhq/mailrecon/pkg/engine"
	"github.com/reconhq/mailrecon/pkg/logging"
	"github.com/reconhq/mailrecon/pkg/monitor"
	"github.com/reconhq/mailrecon/pkg/record"
)

var (
	syncSourceFile string
	syncTargetFile string
	syncStrategy   string
	syncChoices    []string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile a source record against a target record",
	Long: `Sync loads a source and a target record from YAML files, resolves
every conflicting field under the chosen strategy, persists the
resulting sync state, and prints the reconciled target with the full
conflict list.

For the manual strategy, supply one --choose field=value per
conflicting field.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncSourceFile, "source", "", "source record file (YAML)")
	syncCmd.Flags().StringVar(&syncTargetFile, "target", "", "target record file (YAML)")
	syncCmd.Flags().StringVar(&syncStrategy, "strategy", string(conflict.StrategyLastWriteWins), "resolution strategy (last_write_wins, manual, merge)")
	syncCmd.Flags().StringArrayVar(&syncChoices, "choose", nil, "manual choice as field=value (repeatable)")
	_ = syncCmd.MarkFlagRequired("source")
	_ = syncCmd.MarkFlagRequired("target")
}

func runSync(cmd *cobra.Command, _ []string) error {
	var source, target record.Record
	if err := readYAMLFile(syncSourceFile, &source); err != nil {
		return err
	}
	if err := readYAMLFile(syncTargetFile, &target); err != nil {
		return err
	}

	strategy, err := conflict.ParseStrategy(syncStrategy)
	if err != nil {
		return err
	}

	choices, err := parseChoices(syncChoices)
	if err != nil {
		return err
	}

	stateStore, err := openStateStore()
	if err != nil {
		return err
	}

	e := engine.New(
		engine.WithStore(stateStore),
		engine.WithMonitor(monitor.New(monitor.WithLogCapacity(cfg.Monitor.LogCapacity))),
		engine.WithLogger(*logging.Default()),
	)
	defer e.Close()

	result, err := e.Sync(cmd.Context(), source, target, strategy, choices)
	if err != nil {
		return err
	}

	return writeYAML(cmd.OutOrStdout(), result)
}

// openStateStore builds the configured StateStore backend.
func openStateStore() (engine.StateStore, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.Open(cfg.Store.Path)
	default:
		return engine.NewMemoryStore(), nil
	}
}

// parseChoices turns repeated field=value flags into a choice map.
func parseChoices(pairs []string) (map[string]record.Value, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	choices := make(map[string]record.Value, len(pairs))
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --choose %q, expected field=value", pair)
		}
		choices[field] = value
	}
	return choices, nil
}

// writeYAML renders v as a YAML document.
func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = w.Write(data)
	return err
}
