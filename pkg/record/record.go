// Package record defines the data shapes flowing through the
// reconciliation pipeline: a generic field-map Record used by change
// tracking and sync, plus typed MailRecord and ContactRecord schemas
// with an explicit extension map for unknown fields.
package record

import (
	"reflect"
	"sort"
)

// FieldID is the identifier field every synchronizable record must carry.
const FieldID = "id"

// Value is a scalar record value: string, number, bool, timestamp, or nil.
type Value = any

// Record is a mapping of field name to scalar value. A record that
// participates in sync must carry a stable identifier under FieldID;
// records lacking it cannot be diffed or matched.
type Record map[string]Value

// ID returns the record's identifier, or "" when absent.
func (r Record) ID() string {
	if v, ok := r[FieldID]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Get returns the value for a field and whether it is present.
func (r Record) Get(field string) (Value, bool) {
	v, ok := r[field]
	return v, ok
}

// Fields returns the record's field names sorted for deterministic output.
func (r Record) Fields() []string {
	fields := make([]string, 0, len(r))
	for field := range r {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	clone := make(Record, len(r))
	for field, value := range r {
		clone[field] = value
	}
	return clone
}

// Equal reports strict structural equality of two records.
func (r Record) Equal(other Record) bool {
	return reflect.DeepEqual(r, other)
}
