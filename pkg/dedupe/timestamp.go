package dedupe

import (
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/reconhq/mailrecon/pkg/errors"
)

// timestampLayouts are tried in order. US slash dates take precedence
// over European ones when both could apply.
var timestampLayouts = []string{
	time.RFC3339Nano,                 // ISO-8601, fractional seconds, zone suffix
	time.RFC3339,                     // ISO-8601, zone suffix
	"2006-01-02T15:04:05.999999999",  // ISO-8601, fractional seconds, no zone
	"2006-01-02T15:04:05",            // ISO-8601, no zone
	"2006-01-02 15:04:05",            // space-separated date-time
	"01/02/2006 15:04:05",            // US slash date
	"02/01/2006 15:04:05",            // European slash date
}

// parseTimestamp accepts native timestamp values and the string formats
// mail archives and CRM exports actually produce. A value that parses
// in no accepted format fails closed: the caller's criterion must
// treat it as no match, never as an error aborting detection.
func parseTimestamp(value any) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, errors.NewParseError("timestamp", "", "no value", errors.ErrUnparsableTimestamp)
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, errors.NewParseError("timestamp", "", "nil value", errors.ErrUnparsableTimestamp)
		}
		return *v, nil
	case utc.Time:
		return v.Time, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return time.Time{}, errors.NewParseError("timestamp", v, "empty string", errors.ErrUnparsableTimestamp)
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t, nil
			}
		}
		return time.Time{}, errors.NewParseError("timestamp", v, "no accepted format matched", errors.ErrUnparsableTimestamp)
	default:
		return time.Time{}, errors.NewParseError("timestamp", "", "unsupported value type", errors.ErrUnparsableTimestamp)
	}
}
