package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "followers")

	manager, err := NewManager(tempDir)
	require.NoError(t, err)
	assert.DirExists(t, tempDir)
	assert.Zero(t, manager.CrawledCount())
	assert.False(t, manager.Exists(100))

	require.NoError(t, manager.SaveFollowers(100, []int64{200, 300}))

	content, err := os.ReadFile(filepath.Join(tempDir, "100.txt"))
	require.NoError(t, err)
	assert.Equal(t, "200\n300\n", string(content))
	assert.NoFileExists(t, filepath.Join(tempDir, "100.txt.tmp"))

	assert.True(t, manager.Exists(100))
	followers, err := manager.LoadFollowers(100)
	require.NoError(t, err)
	assert.Equal(t, []int64{200, 300}, followers)
}

func TestSaveEmptyFollowers(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, manager.SaveFollowers(300, nil))
	assert.True(t, manager.Exists(300))

	followers, err := manager.LoadFollowers(300)
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestExistingFilesAreIndexed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "7.txt"), []byte("8\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.txt"), []byte("1\n"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "9.txt"), 0755))

	manager, err := NewManager(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, manager.CrawledCount())
	assert.True(t, manager.Exists(7))
	assert.False(t, manager.Exists(9))

	// files written behind the manager's back are still honored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "11.txt"), nil, 0644))
	assert.True(t, manager.Exists(11))
}

func TestAccounts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"300.txt", "100.txt", "20.txt", "x.txt", "5.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	manager, err := NewManager(dir)
	require.NoError(t, err)

	ids, err := manager.Accounts()
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 100, 300}, ids)
}

func TestLoadFollowersErrors(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	require.NoError(t, err)

	_, err = manager.LoadFollowers(404)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "5.txt"), []byte("1\n\n  2 \nnope\n"), 0644))
	_, err = manager.LoadFollowers(5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
}

func TestLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lines.txt")

	require.NoError(t, WriteLines(path, []string{"a", "", "c"}))
	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "c"}, lines)

	require.NoError(t, WriteLines(path, nil))
	lines, err = ReadLines(path)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
