package sizing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOverflow = errors.New("overflow")

func TestToUint32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      int64
		want    uint32
		wantErr bool
	}{
		{0, 0, false},
		{42, 42, false},
		{math.MaxUint32, math.MaxUint32, false},
		{math.MaxUint32 + 1, 0, true},
		{-1, 0, true},
	}
	for _, tt := range tests {
		got, err := ToUint32(tt.in, errOverflow)
		if tt.wantErr {
			require.ErrorIs(t, err, errOverflow, "input %d", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestToInt32(t *testing.T) {
	t.Parallel()

	got, err := ToInt32(255, errOverflow)
	require.NoError(t, err)
	assert.Equal(t, int32(255), got)

	_, err = ToInt32(math.MaxInt32+1, errOverflow)
	assert.ErrorIs(t, err, errOverflow)
}

func TestToInt(t *testing.T) {
	t.Parallel()

	got, err := ToInt(math.MaxUint32, errOverflow)
	require.NoError(t, err)
	assert.Equal(t, math.MaxUint32, got)
}
