// Package track computes field-level differences between a source and a
// target record.
package track

import (
	"reflect"
	"sort"

	"github.com/agentstation/utc"

	"github.com/reconhq/mailrecon/pkg/record"
)

// Change is a single field-level difference between two records. A field
// absent on one side is reported with a nil value, not skipped.
type Change struct {
	Field       string       `yaml:"field" json:"field"`
	SourceValue record.Value `yaml:"source_value" json:"source_value"`
	TargetValue record.Value `yaml:"target_value" json:"target_value"`
	Timestamp   utc.Time     `yaml:"timestamp" json:"timestamp"`
}

// Tracker computes change lists. It is stateless and safe for
// concurrent use.
type Tracker struct{}

// NewTracker creates a new Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Track returns one Change for every field, across the union of both
// records' field names, whose values differ, ordered by field name.
// Pure function over its inputs: neither record is modified.
func (t *Tracker) Track(source, target record.Record) []Change {
	fields := make(map[string]struct{}, len(source)+len(target))
	for field := range source {
		fields[field] = struct{}{}
	}
	for field := range target {
		fields[field] = struct{}{}
	}

	now := utc.Now()
	changes := make([]Change, 0)
	for field := range fields {
		sourceValue := source[field]
		targetValue := target[field]
		if !valuesEqual(sourceValue, targetValue) {
			changes = append(changes, Change{
				Field:       field,
				SourceValue: sourceValue,
				TargetValue: targetValue,
				Timestamp:   now,
			})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Field < changes[j].Field
	})

	return changes
}

// valuesEqual compares two field values. DeepEqual keeps uncomparable
// values (slices, maps) from panicking under ==.
func valuesEqual(a, b record.Value) bool {
	return reflect.DeepEqual(a, b)
}
