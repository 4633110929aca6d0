package io

import (
	"errors"
	goio "io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	dest := filepath.Join(dir, "a.rpak")

	err := WriteFileAtomic(dest, 0o640, func(w goio.Writer) error {
		_, err := w.Write([]byte("container"))
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "container", string(data))

	stat, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), stat.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileAtomicFailureKeepsDestination(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "a.rpak")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	boom := errors.New("boom")
	err := WriteFileAtomic(dest, 0o644, func(w goio.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be removed")
}

func TestFileReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	fr := NewFileReader(path)
	assert.True(t, fr.Exists())
	assert.Equal(t, int64(10), fr.Size())
	assert.Equal(t, path, fr.Path())

	_, err := fr.ReadAll()
	assert.Error(t, err, "reads before Open fail")

	require.NoError(t, fr.Open())
	defer fr.Close()

	out := make([]byte, 4)
	require.NoError(t, fr.ReadAt(out, 3, 4))
	assert.Equal(t, "3456", string(out))

	assert.Error(t, fr.ReadAt(make([]byte, 4), 8, 4))

	all, err := fr.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(all))
}

func TestFileReaderMissing(t *testing.T) {
	fr := NewFileReader(filepath.Join(t.TempDir(), "missing"))
	assert.False(t, fr.Exists())
	assert.Zero(t, fr.Size())

	dir := NewFileReader(t.TempDir())
	assert.False(t, dir.Exists(), "directories are not sources")
}

func TestCommitRollsBackEarlierFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.rpak")
	second := filepath.Join(dir, "a.starpak")
	require.NoError(t, os.WriteFile(first, []byte("old"), 0o644))

	write := func(content string) func(w goio.Writer) error {
		return func(w goio.Writer) error {
			_, err := w.Write([]byte(content))
			return err
		}
	}

	a, err := Stage(first, 0o644, write("new container"))
	require.NoError(t, err)
	b, err := Stage(second, 0o644, write("new starpak"))
	require.NoError(t, err)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data), "staging leaves destinations alone")

	// destination turns into a directory between staging and commit
	require.NoError(t, os.MkdirAll(filepath.Join(second, "x"), 0o755))

	require.Error(t, Commit(a, b))

	data, err = os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "only the previous file and the directory remain")
}

func TestCommitReplacesAll(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.rpak")
	second := filepath.Join(dir, "a.starpak")
	require.NoError(t, os.WriteFile(first, []byte("old"), 0o644))

	a, err := Stage(first, 0o644, func(w goio.Writer) error {
		_, err := w.Write([]byte("1"))
		return err
	})
	require.NoError(t, err)
	b, err := Stage(second, 0o644, func(w goio.Writer) error {
		_, err := w.Write([]byte("2"))
		return err
	})
	require.NoError(t, err)

	require.NoError(t, Commit(a, b))

	for path, expected := range map[string]string{first: "1", second: "2"} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, expected, string(data))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStageRefusesDirectory(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "x"), 0o755))

	_, err := Stage(dest, 0o644, func(w goio.Writer) error { return nil })
	assert.Error(t, err)
}
