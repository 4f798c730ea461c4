package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsHashDir(t *testing.T) {
	require.True(t, isHashDir("a1b2c3d4"))
	require.True(t, isHashDir("00000000"))
	require.False(t, isHashDir("a1b2c3"))    // too short
	require.False(t, isHashDir("a1b2c3d4e")) // too long
	require.False(t, isHashDir("g1b2c3d4"))  // not hex
	require.False(t, isHashDir(".lock"))
}

func TestRuntimeInfoStable(t *testing.T) {
	short1, full1, srcCount, err := runtimeInfo()
	require.NoError(t, err)
	require.Len(t, short1, 8)
	require.Len(t, full1, 64)
	require.Equal(t, full1[:8], short1)
	require.Greater(t, srcCount, 0)

	short2, full2, _, err := runtimeInfo()
	require.NoError(t, err)
	require.Equal(t, short1, short2)
	require.Equal(t, full1, full2)
}

func TestExtractRuntime(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rt")
	require.NoError(t, extractRuntime(dir))

	srcs, err := filepath.Glob(filepath.Join(dir, "*.c"))
	require.NoError(t, err)
	require.NotEmpty(t, srcs)

	data, err := os.ReadFile(srcs[0])
	require.NoError(t, err)
	require.Contains(t, string(data), "start")
}

func TestCleanupOldRuntimes(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-30 * 24 * time.Hour)

	names := []string{"00000001", "00000002", "00000003", "00000004"}
	for i, name := range names {
		sub := filepath.Join(dir, name)
		require.NoError(t, os.Mkdir(sub, 0755))
		// stagger mtimes so the sort order is deterministic
		mtime := old.Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(sub, mtime, mtime))
	}
	// non-hash entries must never be touched
	lockFile := filepath.Join(dir, ".lock")
	require.NoError(t, os.WriteFile(lockFile, nil, 0644))

	cleanupOldRuntimes(dir, 2, 7*24*60*60)

	require.NoDirExists(t, filepath.Join(dir, "00000001"))
	require.NoDirExists(t, filepath.Join(dir, "00000002"))
	require.DirExists(t, filepath.Join(dir, "00000003"))
	require.DirExists(t, filepath.Join(dir, "00000004"))
	require.FileExists(t, lockFile)
}

func TestCleanupKeepsRecentDirs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0000000a", "0000000b", "0000000c"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0755))
	}

	// fresh directories survive even beyond the keep count
	cleanupOldRuntimes(dir, 2, 7*24*60*60)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestDefaultCacheDirEnvOverride(t *testing.T) {
	t.Setenv("MINICCACHE", "/tmp/minic-cache-test")
	require.Equal(t, "/tmp/minic-cache-test", defaultCacheDir())
}
