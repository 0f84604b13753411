package records

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Microsoft/go-winio/pkg/guid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/connstore/internal/cstype"
	"github.com/meigma/connstore/internal/testutil"
	"github.com/meigma/connstore/internal/wire"
)

const (
	atomStr = "11223344-5566-7788-99aa-bbccddeeff00"
	fileStr = "a1b2c3d4-e5f6-4789-8abc-def012345678"
)

func mustGUID(tb testing.TB, s string) guid.GUID {
	tb.Helper()
	g, err := guid.FromString(s)
	require.NoError(tb, err)
	return g
}

func TestRecordMatchesFixture(t *testing.T) {
	t.Parallel()

	data := testutil.BuildManifest(t, Version, testutil.ManifestRecord{
		Name: "blob_0", AtomID: atomStr, FileID: fileStr,
	})
	m, err := LoadManifest(data)
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())

	rec := m.Records[0]
	assert.Equal(t, "blob_0", rec.Name)
	assert.Equal(t, mustGUID(t, atomStr), rec.AtomID)
	assert.Equal(t, mustGUID(t, fileStr), rec.FileID)

	out, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, out)
	assert.Len(t, out, 8+RecordSize)
}

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	names := []string{
		"",
		"blob_0",
		"セーブデータ",
		"emoji 🎮",
		strings.Repeat("n", NameFieldSize/2),
	}
	for _, name := range names {
		rec, err := NewRecord(name, guid.GUID{}, guid.GUID{})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, rec.Encode(wire.NewEncoder(&buf)))
		require.Equal(t, RecordSize, buf.Len(), "name %q", name)

		out, err := DecodeRecord(wire.NewDecoder(&buf))
		require.NoError(t, err)
		assert.Equal(t, rec, out, "name %q", name)
	}
}

func TestRecordNameTooLong(t *testing.T) {
	t.Parallel()

	rec := Record{Name: strings.Repeat("n", NameFieldSize/2+1)}
	var buf bytes.Buffer
	err := rec.Encode(wire.NewEncoder(&buf))
	require.ErrorIs(t, err, cstype.ErrNameTooLong)
	assert.ErrorIs(t, err, cstype.ErrFormat)
	assert.Zero(t, buf.Len())
}

func TestRecordNameStopsAtNul(t *testing.T) {
	t.Parallel()

	var b testutil.Builder
	name := make([]byte, NameFieldSize)
	copy(name, []byte{'a', 0, 'b', 0, 0, 0, 'c', 0, 'd', 0})
	b.Raw(name).GUID(atomStr).GUID(fileStr)

	rec, err := DecodeRecord(wire.NewDecoder(bytes.NewReader(b.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, "ab", rec.Name)

	t.Run("leading nul is empty", func(t *testing.T) {
		t.Parallel()
		var b testutil.Builder
		field := make([]byte, NameFieldSize)
		field[2] = 'x'
		b.Raw(field).GUID(atomStr).GUID(fileStr)
		rec, err := DecodeRecord(wire.NewDecoder(bytes.NewReader(b.Bytes())))
		require.NoError(t, err)
		assert.Empty(t, rec.Name)
	})

	t.Run("high byte only unit is not a terminator", func(t *testing.T) {
		t.Parallel()
		var b testutil.Builder
		field := make([]byte, NameFieldSize)
		copy(field, []byte{0x00, 0x01, 'z', 0})
		b.Raw(field).GUID(atomStr).GUID(fileStr)
		rec, err := DecodeRecord(wire.NewDecoder(bytes.NewReader(b.Bytes())))
		require.NoError(t, err)
		assert.Equal(t, "Āz", rec.Name)
	})
}

func TestNewRecordIdentifiers(t *testing.T) {
	t.Parallel()

	rec, err := NewRecord("a", guid.GUID{}, guid.GUID{})
	require.NoError(t, err)
	assert.NotEqual(t, guid.GUID{}, rec.FileID)
	assert.Equal(t, rec.FileID, rec.AtomID)

	file := mustGUID(t, fileStr)
	rec, err = NewRecord("a", guid.GUID{}, file)
	require.NoError(t, err)
	assert.Equal(t, file, rec.FileID)
	assert.Equal(t, file, rec.AtomID)

	atom := mustGUID(t, atomStr)
	rec, err = NewRecord("a", atom, file)
	require.NoError(t, err)
	assert.Equal(t, atom, rec.AtomID)
	assert.Equal(t, file, rec.FileID)
}

func TestManifestVersion(t *testing.T) {
	t.Parallel()

	for _, v := range []uint32{0, 3, 5} {
		_, err := LoadManifest(testutil.BuildManifest(t, v))
		require.ErrorIs(t, err, cstype.ErrInvalidVersion, "version %d", v)
	}

	m, err := LoadManifest(testutil.BuildManifest(t, Version))
	require.NoError(t, err)
	assert.Zero(t, m.Len())
}

func TestManifestTruncated(t *testing.T) {
	t.Parallel()

	data := testutil.BuildManifest(t, Version,
		testutil.ManifestRecord{Name: "a", AtomID: atomStr, FileID: fileStr},
		testutil.ManifestRecord{Name: "b", AtomID: atomStr, FileID: fileStr},
	)
	_, err := LoadManifest(data[:len(data)-1])
	require.ErrorIs(t, err, cstype.ErrTruncated)
	assert.Contains(t, err.Error(), "record 1")
}

func TestManifestAddLookupRemove(t *testing.T) {
	t.Parallel()

	var m Manifest
	a, err := m.Add("a")
	require.NoError(t, err)
	b, err := m.Add("b")
	require.NoError(t, err)
	assert.NotEqual(t, a.FileID, b.FileID)

	_, err = m.Add("a")
	require.ErrorIs(t, err, cstype.ErrBlobExists)
	assert.ErrorIs(t, err, cstype.ErrStateViolation)
	assert.Equal(t, 2, m.Len())

	_, err = m.Add(strings.Repeat("n", NameFieldSize/2+1))
	require.ErrorIs(t, err, cstype.ErrNameTooLong)
	_, err = m.Add(strings.Repeat("🎮", NameFieldSize/4+1))
	require.ErrorIs(t, err, cstype.ErrNameTooLong)
	assert.Equal(t, 2, m.Len())

	got, ok := m.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, b, got)
	_, ok = m.Lookup("c")
	assert.False(t, ok)

	removed, err := m.Remove("a")
	require.NoError(t, err)
	assert.Equal(t, a, removed)
	assert.Equal(t, []Record{b}, m.Records)

	_, err = m.Remove("a")
	require.ErrorIs(t, err, cstype.ErrBlobNotFound)
	assert.ErrorIs(t, err, cstype.ErrNotFound)
}

func TestManifestLookupFirstMatch(t *testing.T) {
	t.Parallel()

	data := testutil.BuildManifest(t, Version,
		testutil.ManifestRecord{Name: "dup", AtomID: atomStr, FileID: fileStr},
		testutil.ManifestRecord{Name: "dup", AtomID: fileStr, FileID: atomStr},
	)
	m, err := LoadManifest(data)
	require.NoError(t, err)

	rec, ok := m.Lookup("dup")
	require.True(t, ok)
	assert.Equal(t, mustGUID(t, fileStr), rec.FileID)
}

func TestManifestEncodeUsesLiveCount(t *testing.T) {
	t.Parallel()

	var m Manifest
	for _, name := range []string{"x", "y", "z"} {
		_, err := m.Add(name)
		require.NoError(t, err)
	}
	_, err := m.Remove("y")
	require.NoError(t, err)

	data, err := m.Bytes()
	require.NoError(t, err)
	assert.Len(t, data, 8+2*RecordSize)

	out, err := LoadManifest(data)
	require.NoError(t, err)
	assert.Equal(t, m.Records, out.Records)
}

func TestFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "container.1", FileName(1))
	assert.Equal(t, "container.255", FileName(255))
}
