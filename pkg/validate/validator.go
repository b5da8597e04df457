// Package validate checks record integrity during sync: required-field
// and format validation, checksum generation/verification, and strict
// consistency comparison between two record snapshots.
package validate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/reconhq/mailrecon/pkg/logging"
	"github.com/reconhq/mailrecon/pkg/record"
)

// emailPattern is the accepted email-address shape.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// defaultRequiredFields must be present on every valid entity record.
var defaultRequiredFields = []string{record.FieldID, "name", "email"}

// Validator validates records and computes content checksums.
type Validator struct {
	required []string
	logger   zerolog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithRequiredFields overrides the required-field set.
func WithRequiredFields(fields ...string) Option {
	return func(v *Validator) {
		v.required = fields
	}
}

// WithLogger sets the validator's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New creates a Validator requiring identifier, display name, and a
// primary contact address by default.
func New(opts ...Option) *Validator {
	v := &Validator{
		required: defaultRequiredFields,
		logger:   *logging.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate reports whether the record carries every required field and,
// when an email field is present, that it conforms to a standard
// address shape. Failures are logged and reported, never thrown.
func (v *Validator) Validate(r record.Record) bool {
	for _, field := range v.required {
		if _, ok := r[field]; !ok {
			v.logger.Error().Str("field", field).Msg("missing required field")
			return false
		}
	}

	if value, ok := r["email"]; ok {
		email, isText := value.(string)
		if !isText || !emailPattern.MatchString(email) {
			v.logger.Error().Interface("email", value).Msg("invalid email format")
			return false
		}
	}

	return true
}

// Checksum returns a deterministic digest over the record's fields
// sorted by field name, so equal field sets in any insertion order
// produce identical checksums.
func (v *Validator) Checksum(r record.Record) string {
	var b strings.Builder
	for i, field := range r.Fields() {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "%s=%v", field, r[field])
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum reports whether a freshly computed checksum equals a
// previously stored one.
func (v *Validator) VerifyChecksum(r record.Record, checksum string) bool {
	return v.Checksum(r) == checksum
}

// Consistent reports strict structural equality of two records.
func (v *Validator) Consistent(a, b record.Record) bool {
	return a.Equal(b)
}
