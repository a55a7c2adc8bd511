package erfap

import "github.com/google/uuid"

// PipID identifies one pip execution for logging and for any caller-side
// bookkeeping that spans multiple Processors. The per-pip Caches are owned by
// their Processor and are not keyed by PipID. The spec calls out pips as the unit of a
// Processor's lifetime but does not mandate an id type; a UUID is the
// natural choice for a component whose events are logged across a
// distributed build (SPEC_FULL.md §3).
type PipID uuid.UUID

// NewPipID generates a random PipID.
func NewPipID() PipID {
	return PipID(uuid.New())
}

// String returns the canonical hyphenated UUID representation.
func (id PipID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the zero-value PipID (the nil UUID).
func (id PipID) IsZero() bool {
	return id == PipID{}
}
