package mailrecon

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/reconhq/mailrecon/pkg/dedupe"
	"github.com/reconhq/mailrecon/pkg/engine"
	"github.com/reconhq/mailrecon/pkg/monitor"
)

// Option is a function that configures a Reconciler instance.
type Option func(*config) error

// config collects the settings applied by options.
type config struct {
	store            engine.StateStore
	logger           *zerolog.Logger
	fuzzyWindow      time.Duration
	subjectThreshold float64
	bodyThreshold    float64
	mailboxOwner     string
	logCapacity      int
}

func defaultConfig() *config {
	return &config{}
}

// WithStateStore configures the sync-state backend. The default is an
// in-process memory store.
func WithStateStore(store engine.StateStore) Option {
	return func(c *config) error {
		c.store = store
		return nil
	}
}

// WithLogger routes all component output through the given logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = &logger
		return nil
	}
}

// WithFuzzyWindow configures the duplicate detector's timestamp window.
func WithFuzzyWindow(window time.Duration) Option {
	return func(c *config) error {
		c.fuzzyWindow = window
		return nil
	}
}

// WithSubjectThreshold configures the subject similarity threshold.
func WithSubjectThreshold(threshold float64) Option {
	return func(c *config) error {
		c.subjectThreshold = threshold
		return nil
	}
}

// WithBodyThreshold configures the body similarity threshold.
func WithBodyThreshold(threshold float64) Option {
	return func(c *config) error {
		c.bodyThreshold = threshold
		return nil
	}
}

// WithMailboxOwner configures the default recipient address used when a
// record carries none.
func WithMailboxOwner(owner string) Option {
	return func(c *config) error {
		c.mailboxOwner = owner
		return nil
	}
}

// WithMonitorLogCapacity bounds the monitor's in-memory event log.
func WithMonitorLogCapacity(n int) Option {
	return func(c *config) error {
		c.logCapacity = n
		return nil
	}
}

func (c *config) engineOptions() []engine.Option {
	var opts []engine.Option
	if c.store != nil {
		opts = append(opts, engine.WithStore(c.store))
	}
	if c.logger != nil {
		opts = append(opts, engine.WithLogger(*c.logger))
	}
	return opts
}

func (c *config) detectorOptions() []dedupe.Option {
	var opts []dedupe.Option
	if c.fuzzyWindow > 0 {
		opts = append(opts, dedupe.WithFuzzyWindow(c.fuzzyWindow))
	}
	if c.subjectThreshold > 0 {
		opts = append(opts, dedupe.WithSubjectThreshold(c.subjectThreshold))
	}
	if c.bodyThreshold > 0 {
		opts = append(opts, dedupe.WithBodyThreshold(c.bodyThreshold))
	}
	if c.mailboxOwner != "" {
		opts = append(opts, dedupe.WithMailboxOwner(c.mailboxOwner))
	}
	if c.logger != nil {
		opts = append(opts, dedupe.WithLogger(*c.logger))
	}
	return opts
}

func (c *config) monitorOptions() []monitor.Option {
	var opts []monitor.Option
	if c.logCapacity > 0 {
		opts = append(opts, monitor.WithLogCapacity(c.logCapacity))
	}
	if c.logger != nil {
		opts = append(opts, monitor.WithLogger(*c.logger))
	}
	return opts
}
