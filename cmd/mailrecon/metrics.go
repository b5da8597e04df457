package main

import (
	"time"

	"github.com/agentstation/utc"
	"github.com/spf13/cobra"

	"github.com/reconhq/mailrecon/pkg/engine"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Summarize persisted sync activity",
	Long: `Metrics aggregates the persisted sync states into an operational
summary: how many items have synced, how many carried conflicts, and
the most recent sync time. Requires the sqlite store driver.`,
	RunE: runMetrics,
}

// metricsSummary is the rendered aggregate.
type metricsSummary struct {
	Items          int    `yaml:"items" json:"items"`
	ItemsSynced    int    `yaml:"items_synced" json:"items_synced"`
	WithConflicts  int    `yaml:"items_with_conflicts" json:"items_with_conflicts"`
	TotalConflicts int    `yaml:"total_conflicts" json:"total_conflicts"`
	LastSync       string `yaml:"last_sync,omitempty" json:"last_sync,omitempty"`
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	stateStore, err := openStateStore()
	if err != nil {
		return err
	}
	defer stateStore.Close()

	states, err := stateStore.List(cmd.Context())
	if err != nil {
		return err
	}

	var (
		summary metricsSummary
		latest  utc.Time
	)
	summary.Items = len(states)
	for _, state := range states {
		if state.Status == engine.StatusSynced {
			summary.ItemsSynced++
		}
		if state.Conflicts > 0 {
			summary.WithConflicts++
			summary.TotalConflicts += state.Conflicts
		}
		if state.LastSync.After(latest) {
			latest = state.LastSync
		}
	}
	if !latest.IsZero() {
		summary.LastSync = latest.Format(time.RFC3339)
	}

	return writeYAML(cmd.OutOrStdout(), summary)
}
