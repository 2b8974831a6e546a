package audio

import (
	"fmt"
	"strconv"
	"strings"
)

// timeToSeconds converts a canonical "hh:mm:ss" timestamp into seconds for
// FFmpeg's -ss/-t flags. Segment times are already normalized to this form
// before they reach the cutter, so anything else is an error. Oversized
// minute/second fields are allowed; the normalizer does not range check them.
func timeToSeconds(timestamp string) (float64, error) {
	parts := strings.Split(timestamp, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timestamp %q is not in hh:mm:ss form", timestamp)
	}

	fields := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("timestamp %q has a non-numeric field: %w", timestamp, err)
		}
		if n < 0 {
			return 0, fmt.Errorf("timestamp %q has a negative field", timestamp)
		}
		fields[i] = n
	}

	return float64(fields[0]*3600 + fields[1]*60 + fields[2]), nil
}
