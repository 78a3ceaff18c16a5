package sources

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp layouts accepted from the open-data API. Offsets and the "Z"
// suffix normalize to their UTC instant; a missing zone is taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

const dateLayout = "2006-01-02"

// ParseTimestamp parses an ISO-8601 timestamp. Anything that is not a
// timestamp, including a bare calendar date, fails.
func ParseTimestamp(value string) (time.Time, error) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", value)
}

// ParseDate parses a bare calendar date as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	ts, err := time.Parse(dateLayout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparsable date %q", value)
	}
	return ts, nil
}

// ParseFlexibleDate accepts either an ISO-8601 timestamp or a bare
// calendar date (midnight UTC). Feeds are inconsistent about which they
// send for completion and close dates.
func ParseFlexibleDate(value string) (time.Time, error) {
	text := strings.TrimSpace(value)
	if strings.Contains(text, "T") {
		return ParseTimestamp(text)
	}
	return ParseDate(text)
}

// optionalTime parses value with parse, degrading to nil on absence or
// failure: partial data is preferred over rejecting the whole record.
func optionalTime(value string, parse func(string) (time.Time, error)) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	ts, err := parse(value)
	if err != nil {
		return nil
	}
	return &ts
}
