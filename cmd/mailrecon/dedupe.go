package main

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/reconhq/mailrecon/pkg/dedupe"
	"github.com/reconhq/mailrecon/pkg/logging"
	"github.com/reconhq/mailrecon/pkg/record"
)

var (
	dedupeCandidateFile string
	dedupeExistingFile  string
	dedupeWindow        time.Duration
	dedupeOwner         string
	dedupeShowStats     bool
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Check a candidate record against existing target records",
	Long: `Dedupe loads a candidate mail record and a set of existing target
records from YAML files and reports whether the candidate would be a
duplicate insert, with per-match confidence and reasons.`,
	RunE: runDedupe,
}

func init() {
	dedupeCmd.Flags().StringVar(&dedupeCandidateFile, "candidate", "", "candidate record file (YAML)")
	dedupeCmd.Flags().StringVar(&dedupeExistingFile, "existing", "", "existing records file (YAML list)")
	dedupeCmd.Flags().DurationVar(&dedupeWindow, "window", 0, "fuzzy timestamp window override")
	dedupeCmd.Flags().StringVar(&dedupeOwner, "owner", "", "mailbox owner address for recipient defaulting")
	dedupeCmd.Flags().BoolVar(&dedupeShowStats, "stats", false, "print comparison counters after the report")
	_ = dedupeCmd.MarkFlagRequired("candidate")
	_ = dedupeCmd.MarkFlagRequired("existing")
}

func runDedupe(cmd *cobra.Command, _ []string) error {
	var candidate record.MailRecord
	if err := readYAMLFile(dedupeCandidateFile, &candidate); err != nil {
		return err
	}

	var existing []record.MailRecord
	if err := readYAMLFile(dedupeExistingFile, &existing); err != nil {
		return err
	}

	opts := []dedupe.Option{dedupe.WithLogger(*logging.Default())}
	window := cfg.Detector.FuzzyWindow
	if dedupeWindow > 0 {
		window = dedupeWindow
	}
	if window > 0 {
		opts = append(opts, dedupe.WithFuzzyWindow(window))
	}
	if cfg.Detector.SubjectThreshold > 0 {
		opts = append(opts, dedupe.WithSubjectThreshold(cfg.Detector.SubjectThreshold))
	}
	if cfg.Detector.BodyThreshold > 0 {
		opts = append(opts, dedupe.WithBodyThreshold(cfg.Detector.BodyThreshold))
	}
	owner := cfg.Detector.MailboxOwner
	if dedupeOwner != "" {
		owner = dedupeOwner
	}
	if owner != "" {
		opts = append(opts, dedupe.WithMailboxOwner(owner))
	}

	detector := dedupe.New(opts...)
	report := detector.FindDuplicates(candidate, existing)

	if err := writeYAML(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if dedupeShowStats {
		return writeYAML(cmd.OutOrStdout(), detector.Stats())
	}
	return nil
}

// readYAMLFile decodes one YAML document into out.
func readYAMLFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
