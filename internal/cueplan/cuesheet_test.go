package cueplan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCueSheet(t *testing.T) {
	lines := []string{
		"My Mix - recorded live",
		"",
		"Allegro 0:00",
		"some notes without a time",
		"Adagio 4:15",
		"Finale 9:02",
	}

	entries, err := ParseCueSheet(lines)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, CueEntry{Name: "Allegro", Start: "00:00:00"}, entries[0])
	assert.Equal(t, CueEntry{Name: "Adagio", Start: "00:04:15"}, entries[1])
	assert.Equal(t, CueEntry{Name: "Finale", Start: "00:09:02"}, entries[2])
}

func TestParseCueSheetSkipsPartialMatches(t *testing.T) {
	lines := []string{
		// Timestamp-like token but not at the end of the line.
		"1:30 is where the good part starts",
		// Timestamp with no name in front of it.
		"4:15",
		"   \t  ",
	}

	entries, err := ParseCueSheet(lines)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseCueSheetEmptyInput(t *testing.T) {
	entries, err := ParseCueSheet(nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseCueSheetTrimsNames(t *testing.T) {
	entries, err := ParseCueSheet([]string{"  Opening Theme \t 0:00"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Opening Theme", entries[0].Name)
}

func TestParseCueSheetInvalidStartAbortsParse(t *testing.T) {
	lines := []string{
		"Allegro 0:00",
		// Matches the loose trailing-timestamp shape but not any
		// normalizable form.
		"Adagio 1:02:03:04",
		"Finale 9:02",
	}

	entries, err := ParseCueSheet(lines)
	require.Error(t, err)
	assert.Nil(t, entries)

	var invalid *InvalidTimestampError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "1:02:03:04", invalid.Original)
}
