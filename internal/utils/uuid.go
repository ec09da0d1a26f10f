package utils

import "github.com/google/uuid"

// UUIDGenerator hands out time-ordered UUIDv7 strings. Operation ids sort in
// enqueue order which keeps persisted queues easy to eyeball.
type UUIDGenerator struct{}

// NewUUIDGenerator constructs a UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a new UUIDv7, falling back to v4 if the clock source
// fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
