package utils

import (
	"fmt"
	"strings"
	"time"
)

// StorageLayout is how timestamps are written to and read from the datetime columns.
const StorageLayout = "2006-01-02 15:04:05"

// targetAtLayouts are the accepted input forms for a task deadline, tried in order.
var targetAtLayouts = []string{
	StorageLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseTargetAt parses a deadline in any accepted layout. The result is UTC and
// truncated to whole seconds. Layouts without an offset are read as UTC.
func ParseTargetAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}

	for _, layout := range targetAtLayouts {
		t, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return NormalizeTime(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q: expected YYYY-MM-DD HH:MM:SS", value)
}

// NormalizeTime converts t to UTC at second precision.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
