package main

import (
	"github.com/spf13/cobra"

	"github.com/reconhq/mailrecon/pkg/engine"
)

var stateCmd = &cobra.Command{
	Use:   "state [item-id]",
	Short: "Inspect persisted sync state",
	Long: `State lists the persisted sync states, or shows the state for one
item when an ID is given. Requires the sqlite store driver; the memory
driver does not survive across invocations.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runState,
}

func runState(cmd *cobra.Command, args []string) error {
	stateStore, err := openStateStore()
	if err != nil {
		return err
	}
	defer stateStore.Close()

	if len(args) == 1 {
		state, err := stateStore.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), state)
	}

	states, err := stateStore.List(cmd.Context())
	if err != nil {
		return err
	}
	if states == nil {
		states = []engine.SyncState{}
	}
	return writeYAML(cmd.OutOrStdout(), states)
}
