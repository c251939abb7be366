package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"followrank/pkg/frontier"
	"followrank/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *logger.TestLogger, string) {
	t.Helper()
	dir := t.TempDir()
	log := logger.NewTestLogger()
	mgr := NewManager(filepath.Join(dir, "RestartStatusFile.txt"), filepath.Join(dir, "SeedSet.txt"), log)
	return mgr, log, dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	f := frontier.New(
		frontier.Entry{Level: 1, AccountID: 300},
		frontier.Entry{Level: 0, AccountID: 100},
		frontier.Entry{Level: 2, AccountID: 300},
	)
	require.NoError(t, mgr.Save(f))
	assert.True(t, mgr.Exists())

	content, err := os.ReadFile(mgr.Path())
	require.NoError(t, err)
	assert.Equal(t, "1, 300\n0, 100\n2, 300\n", string(content))

	loaded, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, f.Entries(), loaded.Entries())
}

func TestLoadMissingCheckpoint(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	f, err := mgr.Load()
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.False(t, mgr.Exists())
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	mgr, log, _ := newTestManager(t)
	writeFile(t, mgr.Path(), "0, 100\ngarbage\n\n1, x\n1, 200\n")

	f, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, []frontier.Entry{
		{Level: 0, AccountID: 100},
		{Level: 1, AccountID: 200},
	}, f.Entries())
	assert.Len(t, log.GetMessagesByLevel("WARN"), 2)
}

func TestStartingSet(t *testing.T) {
	t.Run("seeds when no checkpoint", func(t *testing.T) {
		mgr, _, dir := newTestManager(t)
		writeFile(t, filepath.Join(dir, "SeedSet.txt"), "100\n\n  200  \nabc\n")

		f, source, err := mgr.StartingSet()
		require.NoError(t, err)
		assert.Equal(t, SourceSeeds, source)
		assert.Equal(t, []frontier.Entry{
			{Level: 0, AccountID: 100},
			{Level: 0, AccountID: 200},
		}, f.Entries())
	})

	t.Run("seeds when checkpoint is empty", func(t *testing.T) {
		mgr, _, dir := newTestManager(t)
		writeFile(t, filepath.Join(dir, "SeedSet.txt"), "100\n")
		writeFile(t, mgr.Path(), "\n")

		f, source, err := mgr.StartingSet()
		require.NoError(t, err)
		assert.Equal(t, SourceSeeds, source)
		assert.Equal(t, 1, f.Len())
	})

	t.Run("checkpoint takes priority", func(t *testing.T) {
		mgr, _, dir := newTestManager(t)
		writeFile(t, filepath.Join(dir, "SeedSet.txt"), "100\n")
		writeFile(t, mgr.Path(), "1, 200\n1, 300\n")

		f, source, err := mgr.StartingSet()
		require.NoError(t, err)
		assert.Equal(t, SourceCheckpoint, source)
		assert.Equal(t, []frontier.Entry{
			{Level: 1, AccountID: 200},
			{Level: 1, AccountID: 300},
		}, f.Entries())
	})

	t.Run("missing seed file is an error", func(t *testing.T) {
		mgr, _, _ := newTestManager(t)

		_, _, err := mgr.StartingSet()
		assert.Error(t, err)
	})

	t.Run("unreadable checkpoint is an error", func(t *testing.T) {
		mgr, _, dir := newTestManager(t)
		writeFile(t, filepath.Join(dir, "SeedSet.txt"), "100\n")
		require.NoError(t, os.Mkdir(mgr.Path(), 0755))

		_, _, err := mgr.StartingSet()
		assert.Error(t, err)
	})
}

func TestDelete(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	require.NoError(t, mgr.Save(frontier.New(frontier.Entry{AccountID: 1})))

	require.NoError(t, mgr.Delete())
	assert.False(t, mgr.Exists())

	// deleting twice is fine
	require.NoError(t, mgr.Delete())
}
