package conflict

import (
	"fmt"
	"sync"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/reconhq/mailrecon/pkg/errors"
	"github.com/reconhq/mailrecon/pkg/logging"
	"github.com/reconhq/mailrecon/pkg/record"
)

// Strategy names a conflict resolution policy.
type Strategy string

const (
	// StrategyLastWriteWins keeps the source value. Despite the name this
	// is a fixed side preference, not a timestamp comparison; callers
	// depending on exact behavior get the source side every time.
	StrategyLastWriteWins Strategy = "last_write_wins"

	// StrategyManual returns a caller-supplied choice.
	StrategyManual Strategy = "manual"

	// StrategyMerge concatenates two textual values, or keeps whichever
	// side is non-nil, preferring source.
	StrategyMerge Strategy = "merge"
)

// mergeSeparator joins the two sides of a textual merge.
const mergeSeparator = " / "

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategyLastWriteWins, StrategyManual, StrategyMerge:
		return Strategy(name), nil
	default:
		return "", errors.NewStrategyError(name, "", "unknown strategy name", errors.ErrUnsupportedStrategy)
	}
}

// ResolutionRecord is one immutable entry in the resolution history.
type ResolutionRecord struct {
	Conflict  Conflict     `yaml:"conflict" json:"conflict"`
	Strategy  Strategy     `yaml:"strategy" json:"strategy"`
	Result    record.Value `yaml:"result" json:"result"`
	Timestamp utc.Time     `yaml:"timestamp" json:"timestamp"`
}

// Resolver applies resolution strategies and retains the full ordered
// resolution history. Safe for concurrent use: history appends are
// serialized.
type Resolver struct {
	mu      sync.Mutex
	history []ResolutionRecord
	logger  zerolog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the resolver's logger.
func WithResolverLogger(logger zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver with an empty history.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		logger: *logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve collapses a conflict into one final value using the named
// strategy. Every successful resolution appends one ResolutionRecord to
// the history. Unknown strategies and a manual resolution without a
// caller-supplied choice fail before any side effect occurs.
func (r *Resolver) Resolve(c Conflict, strategy Strategy, userChoice record.Value) (record.Value, error) {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}

	var result record.Value
	switch strategy {
	case StrategyLastWriteWins:
		result = c.Change.SourceValue

	case StrategyManual:
		if userChoice == nil {
			return nil, errors.NewStrategyError(string(strategy), c.Change.Field,
				"no user choice supplied", errors.ErrMissingManualChoice)
		}
		result = userChoice

	case StrategyMerge:
		result = mergeValues(c.Change.SourceValue, c.Change.TargetValue)
	}

	entry := ResolutionRecord{
		Conflict:  c,
		Strategy:  strategy,
		Result:    result,
		Timestamp: utc.Now(),
	}

	r.mu.Lock()
	r.history = append(r.history, entry)
	r.mu.Unlock()

	r.logger.Debug().
		Str("field", c.Change.Field).
		Str("strategy", string(strategy)).
		Msg("conflict resolved")

	return result, nil
}

// History returns a copy of the ordered resolution history.
func (r *Resolver) History() []ResolutionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	history := make([]ResolutionRecord, len(r.history))
	copy(history, r.history)
	return history
}

// mergeValues joins two textual values with the merge separator;
// otherwise returns whichever side is non-nil, preferring source.
func mergeValues(source, target record.Value) record.Value {
	sourceText, sourceIsText := source.(string)
	targetText, targetIsText := target.(string)
	if sourceIsText && targetIsText {
		return fmt.Sprintf("%s%s%s", sourceText, mergeSeparator, targetText)
	}
	if source != nil {
		return source
	}
	return target
}
