package fileio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "containers.index")
	require.NoError(t, WriteFile(path, []byte("first")))
	require.NoError(t, WriteFile(path, []byte("second")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestWriteFileMissingDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "file")
	assert.Error(t, WriteFile(path, []byte("x")))
}

func TestCopyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blob")
	data := bytes.Repeat([]byte{0xab}, 100_000)
	n, err := CopyFile(context.Background(), path, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestCopyFileKeepsOldContentOnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "blob")
	require.NoError(t, WriteFile(path, []byte("old")))

	boom := errors.New("boom")
	src := io.MultiReader(strings.NewReader("partial"), failingReader{boom})
	_, err := CopyFile(context.Background(), path, src)
	require.ErrorIs(t, err, boom)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file is removed")
}

func TestCopyFileCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "blob")
	_, err := CopyFile(ctx, path, strings.NewReader("data"))
	require.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCountingReader(t *testing.T) {
	t.Parallel()

	cr := &countingReader{ctx: context.Background(), r: strings.NewReader("hello world")}
	out, err := io.ReadAll(cr)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(out))
	assert.Equal(t, int64(11), cr.n)
	assert.NoError(t, cr.err)
}
