// Package id generates run identifiers.
package id

import "github.com/google/uuid"

// NewRunID returns a fresh UUID string identifying one harvest run.
func NewRunID() string {
	return uuid.NewString()
}
