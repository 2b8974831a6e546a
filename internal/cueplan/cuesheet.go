package cueplan

import (
	"regexp"
	"strings"
)

// CueEntry is one parsed cue-sheet line: a segment name and its normalized
// start time.
type CueEntry struct {
	Name  string
	Start string
}

var (
	// Anything that looks vaguely like a timestamp. Used to decide whether a
	// line is even trying to be a cue entry.
	timestampToken = regexp.MustCompile(`\d{1,2}:\d{2}`)

	// Full cue entry shape: a name followed by a trailing timestamp token.
	// Deliberately looser than the normalizer, which makes the final call on
	// whether the token is a usable timestamp.
	cueLine = regexp.MustCompile(`^(.*\S)\s+(\d{1,2}:\d{2}(?::\d{1,2})*)\s*$`)
)

// ParseCueSheet extracts (name, start) entries from free-form cue text, one
// entry per line, in file order. Lines that contain a timestamp-like token
// but do not match the full "name then trailing timestamp" shape are skipped
// silently; an entry whose start time fails normalization aborts the whole
// parse with InvalidTimestampError.
func ParseCueSheet(lines []string) ([]CueEntry, error) {
	var entries []CueEntry

	for _, line := range lines {
		if !timestampToken.MatchString(line) {
			continue
		}

		m := cueLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		start, err := NormalizeTimestamp(m[2])
		if err != nil {
			return nil, err
		}

		entries = append(entries, CueEntry{
			Name:  strings.TrimSpace(m[1]),
			Start: start,
		})
	}

	return entries, nil
}
