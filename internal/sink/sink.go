// Package sink persists normalized listing records. A sink either
// replaces a collection wholesale or appends a run's records to it.
package sink

import (
	"context"
	"fmt"

	"github.com/alpentrace/harvester/internal/listing"
)

// Mode selects how a run's records combine with what the sink already
// holds for the collection.
type Mode int

const (
	// ModeReplace discards the existing collection before writing.
	ModeReplace Mode = iota
	// ModeAppend keeps the existing collection and adds to it.
	ModeAppend
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case ModeReplace:
		return "replace"
	case ModeAppend:
		return "append"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a configuration value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "replace":
		return ModeReplace, nil
	case "append":
		return ModeAppend, nil
	default:
		return 0, fmt.Errorf("unknown sink mode %q", s)
	}
}

// Sink writes one run's normalized records under the named collection.
// Persist never fails the run as a whole for an individual record; the
// returned error reports failures that made the sink unusable.
type Sink interface {
	Persist(ctx context.Context, collection string, records []listing.Record, mode Mode) error
}
