// Package dedupe decides whether a candidate mail-like record already
// exists in a target collection. Independent matching strategies run in
// priority order: an identifier match short-circuits with full
// confidence, otherwise confidences from the weaker strategies that
// fired are combined by taking the maximum observed value.
package dedupe

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/reconhq/mailrecon/pkg/logging"
	"github.com/reconhq/mailrecon/pkg/record"
)

// Detector applies ranked matching strategies to candidate records.
// Safe for concurrent use across independent candidate/existing-set
// pairs: the only shared mutable state is the atomic stat counters.
type Detector struct {
	fuzzyWindow      time.Duration
	subjectThreshold float64
	bodyThreshold    float64
	mailboxOwner     string
	useIdentifier    bool
	useFingerprint   bool
	logger           zerolog.Logger
	stats            counters
}

// New creates a Detector with all strategies enabled and default
// thresholds.
func New(opts ...Option) *Detector {
	d := &Detector{
		fuzzyWindow:      DefaultFuzzyWindow,
		subjectThreshold: DefaultSubjectThreshold,
		bodyThreshold:    DefaultBodyThreshold,
		useIdentifier:    true,
		useFingerprint:   true,
		logger:           *logging.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Match is one existing record classified as a duplicate of the
// candidate, with the confidence and supporting evidence.
type Match struct {
	Record     record.MailRecord `yaml:"record" json:"record"`
	Confidence float64           `yaml:"confidence" json:"confidence"`
	Reasons    []string          `yaml:"reasons" json:"reasons"`
}

// Report aggregates the per-candidate duplicate analysis.
type Report struct {
	HasDuplicates  bool               `yaml:"has_duplicates" json:"has_duplicates"`
	DuplicateCount int                `yaml:"duplicate_count" json:"duplicate_count"`
	Duplicates     []Match            `yaml:"duplicates" json:"duplicates"`
	BestMatch      *record.MailRecord `yaml:"best_match,omitempty" json:"best_match,omitempty"`
	BestConfidence float64            `yaml:"best_confidence" json:"best_confidence"`
}

// FindDuplicates compares the candidate against every existing record
// and reports the matches classified as duplicates. The existing set is
// pre-fetched by the caller; no I/O happens here.
func (d *Detector) FindDuplicates(candidate record.MailRecord, existing []record.MailRecord) *Report {
	d.stats.totalComparisons.Add(1)

	report := &Report{Duplicates: []Match{}}
	for _, other := range existing {
		result := d.compare(candidate, other)
		if !result.isDuplicate {
			continue
		}

		report.Duplicates = append(report.Duplicates, Match{
			Record:     other,
			Confidence: result.confidence,
			Reasons:    result.reasons,
		})

		if result.confidence > report.BestConfidence {
			report.BestConfidence = result.confidence
			best := other
			report.BestMatch = &best
		}
	}

	report.DuplicateCount = len(report.Duplicates)
	report.HasDuplicates = report.DuplicateCount > 0
	if !report.HasDuplicates {
		d.stats.noMatches.Add(1)
	}

	d.logger.Debug().
		Str("subject", candidate.Subject).
		Int("existing", len(existing)).
		Int("duplicates", report.DuplicateCount).
		Float64("best_confidence", report.BestConfidence).
		Msg("duplicate detection complete")

	return report
}

// matchResult is the outcome of comparing one candidate/existing pair.
type matchResult struct {
	isDuplicate bool
	confidence  float64
	reasons     []string
}
