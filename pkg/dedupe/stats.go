package dedupe

import "sync/atomic"

// counters tracks comparison activity. Atomic so detection calls may
// run concurrently.
type counters struct {
	totalComparisons       atomic.Int64
	identifierMatches      atomic.Int64
	fingerprintMatches     atomic.Int64
	fuzzyTimestampMatches  atomic.Int64
	subjectMatches         atomic.Int64
	senderRecipientMatches atomic.Int64
	bodyMatches            atomic.Int64
	noMatches              atomic.Int64
}

// Stats is a point-in-time snapshot of the detector's comparison
// counters.
type Stats struct {
	TotalComparisons       int64 `yaml:"total_comparisons" json:"total_comparisons"`
	IdentifierMatches      int64 `yaml:"identifier_matches" json:"identifier_matches"`
	FingerprintMatches     int64 `yaml:"fingerprint_matches" json:"fingerprint_matches"`
	FuzzyTimestampMatches  int64 `yaml:"fuzzy_timestamp_matches" json:"fuzzy_timestamp_matches"`
	SubjectMatches         int64 `yaml:"subject_matches" json:"subject_matches"`
	SenderRecipientMatches int64 `yaml:"sender_recipient_matches" json:"sender_recipient_matches"`
	BodyMatches            int64 `yaml:"body_matches" json:"body_matches"`
	NoMatches              int64 `yaml:"no_matches" json:"no_matches"`
}

// Stats returns a snapshot of the comparison counters.
func (d *Detector) Stats() Stats {
	return Stats{
		TotalComparisons:       d.stats.totalComparisons.Load(),
		IdentifierMatches:      d.stats.identifierMatches.Load(),
		FingerprintMatches:     d.stats.fingerprintMatches.Load(),
		FuzzyTimestampMatches:  d.stats.fuzzyTimestampMatches.Load(),
		SubjectMatches:         d.stats.subjectMatches.Load(),
		SenderRecipientMatches: d.stats.senderRecipientMatches.Load(),
		BodyMatches:            d.stats.bodyMatches.Load(),
		NoMatches:              d.stats.noMatches.Load(),
	}
}

// ResetStats zeroes the comparison counters.
func (d *Detector) ResetStats() {
	d.stats.totalComparisons.Store(0)
	d.stats.identifierMatches.Store(0)
	d.stats.fingerprintMatches.Store(0)
	d.stats.fuzzyTimestampMatches.Store(0)
	d.stats.subjectMatches.Store(0)
	d.stats.senderRecipientMatches.Store(0)
	d.stats.bodyMatches.Store(0)
	d.stats.noMatches.Store(0)
}
