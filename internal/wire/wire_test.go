package wire

import (
	"bytes"
	"testing"

	"github.com/Microsoft/go-winio/pkg/guid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/connstore/internal/cstype"
)

func TestStringRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		units int
	}{
		{"empty", "", 0},
		{"ascii", "save.dat", 8},
		{"accented", "sauvegardé", 10},
		{"astral", "slot 🎮", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, NewEncoder(&buf).String(tt.in, Unbounded))
			assert.Equal(t, 4+2*tt.units, buf.Len())
			assert.Equal(t, tt.units, UTF16Len(tt.in))

			d := NewDecoder(&buf)
			got, err := d.String(Unbounded)
			require.NoError(t, err)
			assert.Equal(t, tt.in, got)
			assert.Equal(t, int64(4+2*tt.units), d.Offset())
		})
	}
}

func TestStringLimits(t *testing.T) {
	t.Parallel()

	t.Run("encode over max", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		err := NewEncoder(&buf).String("abcdef", 5)
		require.ErrorIs(t, err, cstype.ErrStringTooLong)
		assert.Zero(t, buf.Len(), "nothing written on failure")
	})

	t.Run("decode over max", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, NewEncoder(&buf).String("abcdef", Unbounded))
		_, err := NewDecoder(&buf).String(5)
		require.ErrorIs(t, err, cstype.ErrStringTooLong)
		assert.ErrorIs(t, err, cstype.ErrFormat)
	})

	t.Run("negative length", func(t *testing.T) {
		t.Parallel()
		raw := []byte{0xff, 0xff, 0xff, 0xff}
		_, err := NewDecoder(bytes.NewReader(raw)).String(Unbounded)
		require.ErrorIs(t, err, cstype.ErrCorruptLength)
	})

	t.Run("length past end", func(t *testing.T) {
		t.Parallel()
		raw := []byte{0x00, 0x00, 0x00, 0x40, 'a', 0}
		_, err := NewDecoder(bytes.NewReader(raw)).String(Unbounded)
		require.ErrorIs(t, err, cstype.ErrTruncated)
	})
}

func TestGUIDWindowsByteOrder(t *testing.T) {
	t.Parallel()

	g, err := guid.FromString("00112233-4455-6677-8899-aabbccddeeff")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).GUID(g))
	want := []byte{
		0x33, 0x22, 0x11, 0x00, 0x55, 0x44, 0x77, 0x66,
		0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
	}
	assert.Equal(t, want, buf.Bytes())

	got, err := NewDecoder(&buf).GUID()
	require.NoError(t, err)
	assert.Equal(t, g, got)
}

func TestPrimitives(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := NewEncoder(&buf)
	require.NoError(t, e.Uint8(7))
	require.NoError(t, e.Uint32(0xdeadbeef))
	require.NoError(t, e.Int64(-2))
	require.NoError(t, e.FileTime(cstype.FileTime(133_000_000_000_000_000)))
	require.NoError(t, e.Bytes([]byte{1, 2, 3}))
	assert.Equal(t, 1+4+8+8+3, buf.Len())

	d := NewDecoder(&buf)
	u8, err := d.Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), u8)
	u32, err := d.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), u32)
	i64, err := d.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(-2), i64)
	ft, err := d.FileTime()
	require.NoError(t, err)
	assert.Equal(t, cstype.FileTime(133_000_000_000_000_000), ft)
	raw, err := d.Bytes(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, raw)

	_, err = d.Uint8()
	assert.ErrorIs(t, err, cstype.ErrTruncated)
}

type sample struct {
	A uint32
	B uint32
	C uint32
}

func sampleLayout() Layout[sample] {
	u32 := func(name string, lo, hi uint32, field func(*sample) *uint32) Field[sample] {
		return Field[sample]{
			Name: name, MinVersion: lo, MaxVersion: hi,
			Decode: func(d *Decoder, s *sample) (err error) {
				*field(s), err = d.Uint32()
				return err
			},
			Encode: func(e *Encoder, s *sample) error { return e.Uint32(*field(s)) },
		}
	}
	return Layout[sample]{
		u32("a", 0, AnyVersion, func(s *sample) *uint32 { return &s.A }),
		u32("b", 2, 3, func(s *sample) *uint32 { return &s.B }),
		u32("c", 3, AnyVersion, func(s *sample) *uint32 { return &s.C }),
	}
}

func TestLayoutGating(t *testing.T) {
	t.Parallel()

	l := sampleLayout()
	tests := []struct {
		version uint32
		fields  []string
	}{
		{1, []string{"a"}},
		{2, []string{"a", "b"}},
		{3, []string{"a", "b", "c"}},
		{4, []string{"a", "c"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.fields, l.Fields(tt.version), "version %d", tt.version)

		in := sample{A: 1, B: 2, C: 3}
		var buf bytes.Buffer
		require.NoError(t, l.Encode(NewEncoder(&buf), tt.version, &in))
		assert.Equal(t, 4*len(tt.fields), buf.Len(), "version %d", tt.version)

		var out sample
		require.NoError(t, l.Decode(NewDecoder(&buf), tt.version, &out))
		for _, name := range tt.fields {
			switch name {
			case "a":
				assert.Equal(t, in.A, out.A)
			case "b":
				assert.Equal(t, in.B, out.B)
			case "c":
				assert.Equal(t, in.C, out.C)
			}
		}
	}
}

func TestLayoutDecodeErrorNamesField(t *testing.T) {
	t.Parallel()

	var out sample
	err := sampleLayout().Decode(NewDecoder(bytes.NewReader([]byte{1, 0, 0, 0})), 3, &out)
	require.ErrorIs(t, err, cstype.ErrTruncated)
	assert.Contains(t, err.Error(), "decode b")
}
