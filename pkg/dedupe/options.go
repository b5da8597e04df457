package dedupe

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults for detector thresholds.
const (
	// DefaultFuzzyWindow is the maximum distance between two parsed
	// timestamps for the fuzzy time criterion to hold.
	DefaultFuzzyWindow = 5 * time.Minute

	// DefaultSubjectThreshold is the minimum subject similarity ratio.
	DefaultSubjectThreshold = 0.85

	// DefaultBodyThreshold is the minimum body similarity ratio.
	DefaultBodyThreshold = 0.70

	// DuplicateThreshold is the minimum best confidence for a candidate
	// to be classified a duplicate.
	DuplicateThreshold = 0.75
)

// Option configures a Detector.
type Option func(*Detector)

// WithFuzzyWindow sets the fuzzy timestamp window.
func WithFuzzyWindow(window time.Duration) Option {
	return func(d *Detector) {
		if window > 0 {
			d.fuzzyWindow = window
		}
	}
}

// WithSubjectThreshold sets the minimum subject similarity ratio.
func WithSubjectThreshold(threshold float64) Option {
	return func(d *Detector) {
		d.subjectThreshold = threshold
	}
}

// WithBodyThreshold sets the minimum body similarity ratio.
func WithBodyThreshold(threshold float64) Option {
	return func(d *Detector) {
		d.bodyThreshold = threshold
	}
}

// WithMailboxOwner sets the default recipient address assumed when a
// record carries none.
func WithMailboxOwner(address string) Option {
	return func(d *Detector) {
		d.mailboxOwner = address
	}
}

// WithIdentifierMatch toggles the identifier header strategy.
func WithIdentifierMatch(enabled bool) Option {
	return func(d *Detector) {
		d.useIdentifier = enabled
	}
}

// WithFingerprintMatch toggles the content fingerprint strategy.
func WithFingerprintMatch(enabled bool) Option {
	return func(d *Detector) {
		d.useFingerprint = enabled
	}
}

// WithLogger sets the detector's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}
