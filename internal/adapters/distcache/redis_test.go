package distcache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/noderun/internal/adapters/distcache"
	"go.trai.ch/noderun/internal/core/domain"
)

// redisURLEnv names a disposable redis server for the integration test.
const redisURLEnv = "NODERUN_TEST_REDIS_URL"

func TestRedisBlobs_PutRestore(t *testing.T) {
	url := os.Getenv(redisURLEnv)
	if url == "" {
		t.Skip(redisURLEnv + " is not set")
	}

	blobs, err := distcache.NewRedisBlobs(t.Context(), domain.RedisConfig{URL: url, TTL: time.Minute})
	require.NoError(t, err)
	c := distcache.New(blobs, distcache.Options{Prefix: "noderun-test:" + t.Name() + ":"}, quietLogger(t))
	t.Cleanup(func() { _ = c.Close() })

	root := t.TempDir()
	require.NoError(t, c.Put(t.Context(), "uid", root, writeOutputs(t, root, map[string]string{"a": "alpha"})))

	has, err := c.Has(t.Context(), "uid")
	require.NoError(t, err)
	assert.True(t, has)

	dest := t.TempDir()
	hit, err := c.TryRestore(t.Context(), "uid", dest)
	require.NoError(t, err)
	require.True(t, hit)
	data, err := os.ReadFile(filepath.Join(dest, "a"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	hit, err = c.TryRestore(t.Context(), "missing", t.TempDir())
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestNewRedisBlobs_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := distcache.NewRedisBlobs(t.Context(), domain.RedisConfig{URL: "redis://127.0.0.1:1/0"})
	require.ErrorContains(t, err, "redis ping")
}

func TestNewRedisBlobs_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := distcache.NewRedisBlobs(t.Context(), domain.RedisConfig{URL: "http://nope"})
	require.ErrorContains(t, err, domain.ErrConfigInvalid.Error())
}

func TestFactory_Open(t *testing.T) {
	t.Parallel()

	f := distcache.NewFactory(quietLogger(t))

	c, err := f.Open(t.Context(), domain.DistCacheConfig{Backend: domain.DistCacheNone})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = f.Open(t.Context(), domain.DistCacheConfig{Backend: "ftp"})
	require.ErrorContains(t, err, domain.ErrInvalidDistCacheBackend.Error())

	c, err = f.Open(t.Context(), domain.DistCacheConfig{
		Backend:  domain.DistCacheS3,
		Readonly: true,
		S3:       domain.S3Config{Bucket: "b", Endpoint: "127.0.0.1:1", AccessKeyID: "k", SecretAccessKey: "s"},
	})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.Readonly())
}
