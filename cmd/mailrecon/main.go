// Package main provides the entry point for the mailrecon CLI tool.
package main

import (
	"os"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := Execute(version, commit, date); err != nil {
		os.Exit(1)
	}
}
