package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jrosser/cuecut/internal/cueplan"
	"github.com/jrosser/cuecut/internal/domain"
)

// Session reads (start, end, name) triples from a terminal-style stream and
// feeds them to the interactive plan builder.
type Session struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewSession(in io.Reader, out io.Writer) *Session {
	return &Session{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Run collects segments until the user enters a blank start time or the
// input stream ends.
func (s *Session) Run() (*domain.SegmentPlan, error) {
	fmt.Fprintln(s.out, "Enter segments one at a time. Leave the start time blank to finish.")
	return cueplan.BuildInteractive(s.next, s.reject)
}

func (s *Session) next() (cueplan.Entry, bool) {
	start, ok := s.ask("Start time (H:MM:SS or M:SS): ")
	if !ok || start == "" {
		return cueplan.Entry{}, false
	}
	if !normalizes(start) {
		// Skip the remaining prompts; the builder rejects this entry and
		// the next call starts over from the start time.
		return cueplan.Entry{Start: start}, true
	}

	end, ok := s.ask("End time: ")
	if !ok {
		return cueplan.Entry{}, false
	}
	if !normalizes(end) {
		return cueplan.Entry{Start: start, End: end}, true
	}

	name, ok := s.ask("Name (blank for a default): ")
	if !ok {
		return cueplan.Entry{}, false
	}

	return cueplan.Entry{Start: start, End: end, Name: name}, true
}

func normalizes(value string) bool {
	_, err := cueplan.NormalizeTimestamp(strings.TrimSpace(value))
	return err == nil
}

func (s *Session) reject(err error) {
	fmt.Fprintf(s.out, "%v - please re-enter this segment\n", err)
}

func (s *Session) ask(promptText string) (string, bool) {
	fmt.Fprint(s.out, promptText)
	if !s.scanner.Scan() {
		return "", false
	}
	return s.scanner.Text(), true
}
