// Package xmlutil provides small helpers for the canonical XML document form.
package xmlutil

import (
	"fmt"
	"time"
)

// TimeLayout is the wire format of createdate/modifydate and date values.
const TimeLayout = time.RFC3339

// FormatTime renders a timestamp in the canonical UTC wire format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a wire-format timestamp. The empty string parses to the
// zero time, so optional date fields round-trip.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
