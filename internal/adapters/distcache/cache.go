// Package distcache implements the distributed output cache on top of a blob store.
// Entries are zstd compressed tar archives of the outputs of a build root.
package distcache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	"go.trai.ch/noderun/internal/adapters/archive"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/time/rate"
)

// Blobs is a key value store for archives. Get reports a missing key with domain.ErrCacheMiss.
type Blobs interface {
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// Options configure a Cache.
type Options struct {
	Prefix   string
	Readonly bool
	// MaxSize is the largest total output size that is uploaded. Zero means no limit.
	MaxSize int64
	// PutsPerSecond throttles uploads. Zero means no limit.
	PutsPerSecond float64
}

// Cache implements ports.DistCache.
type Cache struct {
	blobs   Blobs
	opts    Options
	limiter *rate.Limiter
	logger  ports.Logger
}

var _ ports.DistCache = (*Cache)(nil)

// New creates a Cache storing archives in blobs.
func New(blobs Blobs, opts Options, logger ports.Logger) *Cache {
	limit := rate.Inf
	if opts.PutsPerSecond > 0 {
		limit = rate.Limit(opts.PutsPerSecond)
	}
	return &Cache{
		blobs:   blobs,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

func (c *Cache) key(uid string) string {
	return c.opts.Prefix + uid + archive.Extension
}

// Has reports whether an archive exists for uid.
func (c *Cache) Has(ctx context.Context, uid string) (bool, error) {
	ok, err := c.blobs.Exists(ctx, c.key(uid))
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "uid", uid)
	}
	return ok, nil
}

// TryRestore unpacks the archive stored under uid into dest.
func (c *Cache) TryRestore(ctx context.Context, uid, dest string) (bool, error) {
	body, err := c.blobs.Get(ctx, c.key(uid))
	if errors.Is(err, domain.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "uid", uid)
	}
	defer func() { _ = body.Close() }()

	if err := archive.Read(body, dest); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "uid", uid)
	}
	c.logger.Debug("restored from dist cache", "uid", uid)
	return true, nil
}

// Put uploads files, absolute paths under root, as an archive under uid.
func (c *Cache) Put(ctx context.Context, uid, root string, files []string) error {
	if c.opts.Readonly {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := archive.Write(&buf, root, files); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "uid", uid)
	}
	if err := c.blobs.Put(ctx, c.key(uid), buf.Bytes()); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "uid", uid)
	}
	c.logger.Debug("stored in dist cache", "uid", uid, "bytes", buf.Len())
	return nil
}

// Readonly reports whether Put is disabled.
func (c *Cache) Readonly() bool {
	return c.opts.Readonly
}

// Fits reports whether the total size of files is within MaxSize.
// Files that cannot be read do not fit.
func (c *Cache) Fits(files []string) bool {
	if c.opts.MaxSize <= 0 {
		return true
	}
	var total int64
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return false
		}
		total += info.Size()
		if total > c.opts.MaxSize {
			return false
		}
	}
	return true
}

// Close releases the blob store.
func (c *Cache) Close() error {
	return c.blobs.Close()
}
