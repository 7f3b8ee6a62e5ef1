package cas_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/noderun/internal/adapters/cas"
	"go.trai.ch/noderun/internal/adapters/fs"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/noderun/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newStore(t *testing.T) *cas.Store {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()

	store, err := cas.NewStore(t.TempDir(), fs.New(fs.NewWalker()), logger)
	require.NoError(t, err)
	return store
}

func writeOutputs(t *testing.T, root string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func TestStore_PutRestore(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	root := t.TempDir()
	files := writeOutputs(t, root, map[string]string{
		"obj/a.o": "object",
		"bin/app": "binary",
	})

	t.Run("put and restore", func(t *testing.T) {
		require.NoError(t, store.Put(t.Context(), "uid-1", root, files))

		has, err := store.Has(t.Context(), "uid-1")
		require.NoError(t, err)
		assert.True(t, has)

		dest := t.TempDir()
		hit, err := store.TryRestore(t.Context(), "uid-1", dest)
		require.NoError(t, err)
		require.True(t, hit)

		data, err := os.ReadFile(filepath.Join(dest, "obj", "a.o"))
		require.NoError(t, err)
		assert.Equal(t, "object", string(data))
		data, err = os.ReadFile(filepath.Join(dest, "bin", "app"))
		require.NoError(t, err)
		assert.Equal(t, "binary", string(data))
	})

	t.Run("restore missing", func(t *testing.T) {
		hit, err := store.TryRestore(t.Context(), "missing", t.TempDir())
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("second put keeps the first entry", func(t *testing.T) {
		other := t.TempDir()
		changed := writeOutputs(t, other, map[string]string{"obj/a.o": "changed"})
		require.NoError(t, store.Put(t.Context(), "uid-1", other, changed))

		dest := t.TempDir()
		_, err := store.TryRestore(t.Context(), "uid-1", dest)
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(dest, "obj", "a.o"))
		require.NoError(t, err)
		assert.Equal(t, "object", string(data))
	})

	t.Run("clear uid", func(t *testing.T) {
		require.NoError(t, store.ClearUID(t.Context(), "uid-1"))
		has, err := store.Has(t.Context(), "uid-1")
		require.NoError(t, err)
		assert.False(t, has)
	})
}

func TestStore_PutEmpty(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	require.NoError(t, store.Put(t.Context(), "empty", t.TempDir(), nil))

	hit, err := store.TryRestore(t.Context(), "empty", t.TempDir())
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestStore_PutRejectsFilesOutsideRoot(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	outside := writeOutputs(t, t.TempDir(), map[string]string{"x": "x"})

	err := store.Put(t.Context(), "uid", t.TempDir(), outside)
	require.ErrorContains(t, err, domain.ErrCacheWriteFailed.Error())

	has, err := store.Has(t.Context(), "uid")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStore_CorruptManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	store, err := cas.NewStore(dir, fs.New(fs.NewWalker()), logger)
	require.NoError(t, err)
	require.NoError(t, store.Put(t.Context(), "uid", t.TempDir(), nil))

	manifests, err := filepath.Glob(filepath.Join(dir, "*", "*", "manifest.json"))
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	//nolint:gosec // 0644 is fine for test
	require.NoError(t, os.WriteFile(manifests[0], []byte("{ invalid json"), 0o644))

	_, err = store.TryRestore(t.Context(), "uid", t.TempDir())
	require.ErrorContains(t, err, domain.ErrCacheReadFailed.Error())
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	root := t.TempDir()
	require.NoError(t, store.Put(t.Context(), "a", root, writeOutputs(t, root, map[string]string{"a": "a"})))
	require.NoError(t, store.Put(t.Context(), "b", t.TempDir(), nil))

	require.NoError(t, store.Clear(t.Context()))

	for _, uid := range []string{"a", "b"} {
		has, err := store.Has(t.Context(), uid)
		require.NoError(t, err)
		assert.False(t, has, uid)
	}
	require.NoError(t, store.Put(t.Context(), "c", t.TempDir(), nil))
}
