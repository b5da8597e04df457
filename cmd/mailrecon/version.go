package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var buildInfo = struct {
	version string
	commit  string
	date    string
}{
	version: "dev",
	commit:  "unknown",
	date:    "unknown",
}

func setVersion(version, commit, date string) {
	buildInfo.version = version
	buildInfo.commit = commit
	buildInfo.date = date
	rootCmd.Version = version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mailrecon %s (commit %s, built %s, %s)\n",
			buildInfo.version, buildInfo.commit, buildInfo.date, runtime.Version())
	},
}
