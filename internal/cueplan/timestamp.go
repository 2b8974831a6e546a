// Package cueplan builds validated segment plans from cue sheets or
// interactively entered time ranges.
package cueplan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// InvalidTimestampError reports a string that did not match any accepted
// timestamp shape. It carries the original input for display and re-prompting.
type InvalidTimestampError struct {
	Original string
}

func (e *InvalidTimestampError) Error() string {
	return fmt.Sprintf("invalid timestamp: %q", e.Original)
}

// Accepted shapes: "hh:mm:ss", "mm:ss" and the shorthand "h:m:s" with one or
// two digits per field. Two fields are read as minutes:seconds.
var timestampShape = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::(\d{1,2}))?$`)

// NormalizeTimestamp converts a free-form timestamp string into canonical
// "hh:mm:ss" form. "mm:ss" becomes "00:mm:ss" and single-digit fields are
// zero-padded. Minutes and seconds are not range checked: "90:00" normalizes
// to "00:90:00" rather than failing.
func NormalizeTimestamp(s string) (string, error) {
	m := timestampShape.FindStringSubmatch(s)
	if m == nil {
		return "", &InvalidTimestampError{Original: s}
	}

	if m[3] == "" {
		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("00:%02d:%02d", minutes, seconds), nil
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds), nil
}

// canonicalSeconds converts an already normalized "hh:mm:ss" value to a
// second count for ordering comparisons.
func canonicalSeconds(s string) int {
	parts := strings.Split(s, ":")
	hours, _ := strconv.Atoi(parts[0])
	minutes, _ := strconv.Atoi(parts[1])
	seconds, _ := strconv.Atoi(parts[2])
	return hours*3600 + minutes*60 + seconds
}
