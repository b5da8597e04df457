// Package conflict classifies field-level changes as conflicts and
// resolves them with named strategies, retaining an append-only
// resolution history for audit.
package conflict

import (
	"github.com/agentstation/utc"

	"github.com/reconhq/mailrecon/pkg/track"
)

// Type classifies a conflict. The set is open: consumers iterate a list
// of conflicts and must not assume a fixed set of types.
type Type string

// TypeDataMismatch marks a plain value difference between source and target.
const TypeDataMismatch Type = "data_mismatch"

// Conflict wraps a Change that requires a resolution decision.
type Conflict struct {
	Change    track.Change `yaml:"change" json:"change"`
	Type      Type         `yaml:"type" json:"type"`
	Timestamp utc.Time     `yaml:"timestamp" json:"timestamp"`
}

// Classifier decides the conflict type for a change, or reports that the
// change is not a conflict at all.
type Classifier func(track.Change) (Type, bool)

// Detector promotes changes to conflicts.
type Detector struct {
	classify Classifier
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithClassifier overrides the default classification function.
func WithClassifier(classify Classifier) DetectorOption {
	return func(d *Detector) {
		if classify != nil {
			d.classify = classify
		}
	}
}

// NewDetector creates a Detector. The default classifier treats every
// field difference as a potential conflict of TypeDataMismatch.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		classify: func(track.Change) (Type, bool) {
			return TypeDataMismatch, true
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect classifies each change, returning the conflicts in input order.
func (d *Detector) Detect(changes []track.Change) []Conflict {
	conflicts := make([]Conflict, 0, len(changes))
	now := utc.Now()
	for _, change := range changes {
		conflictType, ok := d.classify(change)
		if !ok {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Change:    change,
			Type:      conflictType,
			Timestamp: now,
		})
	}
	return conflicts
}
