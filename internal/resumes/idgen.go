package resumes

import "github.com/google/uuid"

// IDGenerator issues record identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues time-ordered UUIDv7 strings. google/uuid keeps v7 values
// strictly increasing within a process, so one instance never repeats itself.
type UUIDGenerator struct{}

// NewID returns a fresh identifier.
func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

var _ IDGenerator = UUIDGenerator{}
