// Package fileio replaces files atomically.
//
// Writes go to a temporary file in the target directory which is synced and
// renamed over the target, so a failed write leaves the previous content in
// place.
package fileio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/natefinch/atomic"
)

// WriteFile atomically replaces path with data.
func WriteFile(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// CopyFile atomically replaces path with the content of r and returns the
// number of bytes written. Cancellation of ctx is checked between reads.
func CopyFile(ctx context.Context, path string, r io.Reader) (int64, error) {
	cr := &countingReader{ctx: ctx, r: r}
	err := atomic.WriteFile(path, cr)
	// The atomic package flattens errors to text; report the source error.
	if cr.err != nil {
		return 0, fmt.Errorf("write %s: %w", path, cr.err)
	}
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return cr.n, nil
}

// countingReader counts bytes read from an underlying reader and stops with
// the context error once its context is done. The first non-EOF error is
// kept in err.
type countingReader struct {
	ctx context.Context //nolint:containedctx // scoped to a single copy
	r   io.Reader
	n   int64
	err error
}

func (c *countingReader) Read(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if err := c.ctx.Err(); err != nil {
		c.err = err
		return 0, err
	}
	n, err := c.r.Read(p)
	c.n += int64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		c.err = err
	}
	return n, err
}
