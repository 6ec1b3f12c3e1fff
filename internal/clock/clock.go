// Package clock abstracts time for scrape dating and tests.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time { return time.Now() }

// Frozen always returns a fixed instant (useful for testing).
type Frozen struct {
	Instant time.Time
}

// Now returns the frozen instant.
func (f Frozen) Now() time.Time { return f.Instant }
