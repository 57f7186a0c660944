package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time to the domain. Injected so that aggregate
// construction and transaction timestamps are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewSystemClock returns a Clock backed by time.Now in UTC.
func NewSystemClock() Clock {
	return systemClock{}
}

// IDGenerator produces the identifiers the domain needs: entity ids, display
// account numbers and transaction references. Uniqueness beyond "very low
// collision probability" is enforced by storage constraints, not here.
type IDGenerator interface {
	// NewID returns a new unique entity identifier.
	NewID() string

	// NewAccountNumber returns a display account number in NNNN-NNNN-NNNN form.
	NewAccountNumber() string

	// NewReference returns a transaction reference in
	// TXN-<14-digit UTC timestamp>-<5-digit random> form.
	NewReference(now time.Time) string
}

type randomIDGenerator struct{}

// NewRandomIDGenerator returns the production IDGenerator: UUIDs for entity
// ids and crypto/rand digits for account numbers and references.
func NewRandomIDGenerator() IDGenerator {
	return randomIDGenerator{}
}

func (randomIDGenerator) NewID() string {
	return uuid.NewString()
}

func (randomIDGenerator) NewAccountNumber() string {
	return fmt.Sprintf("%04d-%04d-%04d", randomDigits(10000), randomDigits(10000), randomDigits(10000))
}

func (randomIDGenerator) NewReference(now time.Time) string {
	return fmt.Sprintf("TXN-%s-%05d", now.UTC().Format("20060102150405"), randomDigits(100000))
}

func randomDigits(max int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		// crypto/rand only fails if the platform's entropy source is broken.
		panic(fmt.Sprintf("failed to read random bytes: %v", err))
	}
	return n.Int64()
}
