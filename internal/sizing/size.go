// Package sizing provides checked integer conversions for on-disk fields.
package sizing

import "math"

// ToUint32 converts a non-negative int64 to uint32, returning overflowErr if
// it doesn't fit.
func ToUint32(size int64, overflowErr error) (uint32, error) {
	if size < 0 || size > math.MaxUint32 {
		return 0, overflowErr
	}
	return uint32(size), nil
}

// ToInt32 converts an int to int32, returning overflowErr if it doesn't fit.
func ToInt32(n int, overflowErr error) (int32, error) {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, overflowErr
	}
	return int32(n), nil //nolint:gosec // checked above
}

// ToInt converts a uint32 count to int, returning overflowErr if it doesn't fit.
func ToInt(n uint32, overflowErr error) (int, error) {
	if uint64(n) > uint64(math.MaxInt) {
		return 0, overflowErr
	}
	return int(n), nil
}
