package buildtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/noderun/internal/adapters/buildtime"
	"go.trai.ch/noderun/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()
	return logger
}

func TestStore_TouchLastUsage(t *testing.T) {
	t.Parallel()

	s, err := buildtime.Open("", true, quietLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, _, ok, err := s.LastUsage(t.Context(), "static-a")
	require.NoError(t, err)
	assert.False(t, ok)

	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, s.Touch(t.Context(), "static-a", 12))
	require.NoError(t, s.Touch(t.Context(), "static-a", 7))

	ts, seconds, ok, err := s.LastUsage(t.Context(), "static-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), seconds)
	assert.True(t, ts.After(before), ts)
}

func TestStore_Persists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := buildtime.Open(dir, false, quietLogger(t))
	require.NoError(t, err)
	require.NoError(t, s.Touch(t.Context(), "static-b", 42))
	require.NoError(t, s.Close())

	s, err = buildtime.Open(dir, false, quietLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, seconds, ok, err := s.LastUsage(t.Context(), "static-b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), seconds)
}
