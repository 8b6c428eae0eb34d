package pipeline

import (
	"fmt"
	"strings"
)

// Digest accumulates the human-readable event log of one run. At the end of
// the run a non-empty digest is sent as a single notification message; an
// empty run notifies nobody.
type Digest struct {
	lines []string
}

// NewDigest returns an empty digest.
func NewDigest() *Digest {
	return &Digest{}
}

// Addf appends one formatted event line.
func (d *Digest) Addf(format string, args ...any) {
	d.lines = append(d.lines, fmt.Sprintf(format, args...))
}

// Empty reports whether no events were recorded.
func (d *Digest) Empty() bool {
	return len(d.lines) == 0
}

// Lines returns the recorded events in arrival order.
func (d *Digest) Lines() []string {
	return d.lines
}

// String renders the digest as one multi-line message.
func (d *Digest) String() string {
	return strings.Join(d.lines, "\n")
}
