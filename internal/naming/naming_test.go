package naming

import (
	"testing"

	"github.com/Microsoft/go-winio/pkg/guid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/connstore/internal/cstype"
)

func TestName(t *testing.T) {
	t.Parallel()

	id, err := guid.FromString("0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9")
	require.NoError(t, err)

	win := Windows.Name(id)
	xbox := Xbox.Name(id)
	assert.Equal(t, "0a1b2c3d4e5f60718293a4b5c6d7e8f9", win)
	assert.Equal(t, "{0A1B2C3D-4E5F-6071-8293-A4B5C6D7E8F9}", xbox)
	assert.NotEqual(t, win, xbox)

	for _, f := range []Format{Windows, Xbox} {
		got, err := f.Parse(f.Name(id))
		require.NoError(t, err, f.String())
		assert.Equal(t, id, got, f.String())
	}
}

func TestNameRandomRoundTrip(t *testing.T) {
	t.Parallel()

	for range 32 {
		id, err := guid.NewV4()
		require.NoError(t, err)
		for _, f := range []Format{Windows, Xbox} {
			got, err := f.Parse(f.Name(id))
			require.NoError(t, err)
			assert.Equal(t, id, got)
		}
	}
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		name   string
	}{
		{Windows, ""},
		{Windows, "0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9"},
		{Windows, "0a1b2c3d4e5f60718293a4b5c6d7e8fz"},
		{Xbox, "0A1B2C3D-4E5F-6071-8293-A4B5C6D7E8F9"},
		{Xbox, "(0A1B2C3D-4E5F-6071-8293-A4B5C6D7E8F9)"},
		{Xbox, "{0A1B2C3D4E5F60718293A4B5C6D7E8F9}"},
	}
	for _, tt := range tests {
		_, err := tt.format.Parse(tt.name)
		assert.ErrorIs(t, err, cstype.ErrFormat, "%s %q", tt.format, tt.name)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{
		"windows": Windows,
		"PC":      Windows,
		"Xbox":    Xbox,
		" xbox ":  Xbox,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("switch")
	require.Error(t, err)

	assert.Equal(t, "windows", Windows.String())
	assert.Equal(t, "xbox", Xbox.String())
	assert.Equal(t, "format(7)", Format(7).String())
}
