package ports

import (
	"context"
	"time"
)

// BuildTimeCache records how long nodes took to build, keyed by static uid.
//
//go:generate mockgen -source=buildtime.go -destination=mocks/mock_buildtime.go -package=mocks
type BuildTimeCache interface {
	// Touch stores seconds as the latest build time of staticUID.
	Touch(ctx context.Context, staticUID string, seconds int64) error

	// LastUsage returns the time and the value of the latest Touch.
	// ok is false when nothing was recorded.
	LastUsage(ctx context.Context, staticUID string) (ts time.Time, seconds int64, ok bool, err error)

	// Close flushes and closes the store.
	Close() error
}
