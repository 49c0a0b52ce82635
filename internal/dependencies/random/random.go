package random

import "github.com/google/uuid"

// Random produces identifiers and can be mocked for testing
type Random interface {
	// UUID returns a new random identifier
	UUID() string
}

// UUIDRandom implements Random with version 4 UUIDs
type UUIDRandom struct{}

// New creates a new UUIDRandom
func New() *UUIDRandom {
	return &UUIDRandom{}
}

// UUID returns a random (version 4) UUID string
func (r *UUIDRandom) UUID() string {
	return uuid.NewString()
}
