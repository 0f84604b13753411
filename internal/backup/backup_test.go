package backup

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/connstore/internal/testutil"
)

func populate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "containers.index", []byte{6, 0, 0, 0, 0, 0, 0, 0})
	sub := filepath.Join(dir, "0a1b2c3d4e5f60718293a4b5c6d7e8f9")
	testutil.WriteFile(t, sub, "container.1", []byte("manifest"))
	testutil.WriteFile(t, sub, "a1b2c3d4e5f64789abcdef012345678", []byte{1, 2, 3})
	return dir
}

func TestSnapshotContents(t *testing.T) {
	t.Parallel()

	dir := populate(t)
	var buf bytes.Buffer
	stats, err := Snapshot(context.Background(), dir, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, int64(8+8+3), stats.Bytes)

	dec, err := zstd.NewReader(&buf)
	require.NoError(t, err)
	defer dec.Close()

	var names []string
	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"0a1b2c3d4e5f60718293a4b5c6d7e8f9/",
		"0a1b2c3d4e5f60718293a4b5c6d7e8f9/a1b2c3d4e5f64789abcdef012345678",
		"0a1b2c3d4e5f60718293a4b5c6d7e8f9/container.1",
		"containers.index",
	}, names)
}

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()

	src := populate(t)
	var buf bytes.Buffer
	_, err := Snapshot(context.Background(), src, &buf)
	require.NoError(t, err)

	dst := t.TempDir()
	stats, err := Restore(context.Background(), &buf, dst)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Files)

	got, err := os.ReadFile(filepath.Join(dst, "0a1b2c3d4e5f60718293a4b5c6d7e8f9", "container.1"))
	require.NoError(t, err)
	assert.Equal(t, "manifest", string(got))
}

func TestSnapshotCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Snapshot(ctx, populate(t), io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRestoreRejectsEscape(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	tw := tar.NewWriter(enc)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../evil", Mode: 0o600, Size: 1, Typeflag: tar.TypeReg}))
	_, err = tw.Write([]byte{1})
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, enc.Close())

	_, err = Restore(context.Background(), &buf, t.TempDir())
	assert.ErrorContains(t, err, "escapes")
}
