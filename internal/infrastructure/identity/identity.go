package identity

import (
	"time"

	"github.com/google/uuid"

	"ResearchReporter/internal/ports"
)

// UUIDGenerator mints random v4 identifiers.
type UUIDGenerator struct{}

var _ ports.IDGenerator = UUIDGenerator{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SystemClock reads wall time in UTC.
type SystemClock struct{}

var _ ports.Clock = SystemClock{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
