package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	s, err := Open(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, 0, s.Len())
}

func TestScanRebuildsSetFromFilenames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deadbeef01.jpg"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cafebabe02.png"), []byte("x"), 0644))
	// non-asset files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "UPPER.jpg"), []byte("x"), 0644))

	s, err := Open(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("deadbeef01"))
	assert.True(t, s.Contains("cafebabe02"))
	assert.False(t, s.Contains("notes"))
}

func TestScanDropsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "deadbeef01.jpg")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	s, err := Open(dir)
	require.NoError(t, err)

	assert.False(t, s.Contains("deadbeef01"))
	_, err = os.Stat(empty)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveAddsToSet(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	path, n, err := s.Save("deadbeef01", "jpg", strings.NewReader("imagebytes"))
	require.NoError(t, err)

	assert.Equal(t, int64(10), n)
	assert.True(t, s.Contains("deadbeef01"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "imagebytes", string(data))

	// no temp file left behind
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveRejectsEmptyBody(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Save("deadbeef01", "jpg", strings.NewReader(""))
	require.Error(t, err)
	assert.False(t, s.Contains("deadbeef01"))
}

func TestFilesSorted(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Save("ffffffff01", "jpg", strings.NewReader("b"))
	require.NoError(t, err)
	_, _, err = s.Save("aaaaaaaa01", "jpg", strings.NewReader("a"))
	require.NoError(t, err)

	files := s.Files()
	require.Len(t, files, 2)
	assert.True(t, strings.HasSuffix(files[0], "aaaaaaaa01.jpg"))
	assert.True(t, strings.HasSuffix(files[1], "ffffffff01.jpg"))
}

func TestRerunLeavesExistingFilesUntouched(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "deadbeef01.jpg")
	require.NoError(t, os.WriteFile(existing, []byte("original"), 0644))

	before, err := os.Stat(existing)
	require.NoError(t, err)

	s, err := Open(dir)
	require.NoError(t, err)
	assert.True(t, s.Contains("deadbeef01"))

	after, err := os.Stat(existing)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
	assert.Equal(t, before.Size(), after.Size())
}
