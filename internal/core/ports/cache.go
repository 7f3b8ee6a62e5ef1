package ports

import "context"

// Cache is the local output cache keyed by node uid or content uid.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type Cache interface {
	// TryRestore copies the entry stored under uid into dest.
	// It returns false on a miss.
	TryRestore(ctx context.Context, uid, dest string) (bool, error)

	// Put stores files, given as absolute paths under root, under uid.
	Put(ctx context.Context, uid, root string, files []string) error

	// Has reports whether an entry exists for uid.
	Has(ctx context.Context, uid string) (bool, error)

	// ClearUID removes the entry stored under uid.
	ClearUID(ctx context.Context, uid string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error
}

// DistCache is a cache shared between machines.
type DistCache interface {
	// Has reports whether an entry exists for uid.
	Has(ctx context.Context, uid string) (bool, error)

	// TryRestore unpacks the entry stored under uid into dest.
	TryRestore(ctx context.Context, uid, dest string) (bool, error)

	// Put uploads files, given as absolute paths under root, under uid.
	Put(ctx context.Context, uid, root string, files []string) error

	// Readonly reports whether Put is disabled.
	Readonly() bool

	// Fits reports whether the outputs of a root fit the size limit of the cache.
	Fits(files []string) bool
}
