package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Microsoft/go-winio/pkg/guid"

	"github.com/meigma/connstore/internal/cstype"
	"github.com/meigma/connstore/internal/sizing"
)

// Encoder writes little-endian primitives to an io.Writer.
type Encoder struct {
	w   io.Writer
	buf [16]byte
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) write(b []byte) error {
	_, err := e.w.Write(b)
	return err
}

// Uint8 writes one byte.
func (e *Encoder) Uint8(v uint8) error {
	e.buf[0] = v
	return e.write(e.buf[:1])
}

// Uint32 writes a little-endian uint32.
func (e *Encoder) Uint32(v uint32) error {
	binary.LittleEndian.PutUint32(e.buf[:4], v)
	return e.write(e.buf[:4])
}

// Int32 writes a little-endian int32.
func (e *Encoder) Int32(v int32) error {
	return e.Uint32(uint32(v)) //nolint:gosec // two's complement reinterpretation
}

// Int64 writes a little-endian int64.
func (e *Encoder) Int64(v int64) error {
	binary.LittleEndian.PutUint64(e.buf[:8], uint64(v)) //nolint:gosec // two's complement reinterpretation
	return e.write(e.buf[:8])
}

// Bytes writes b verbatim.
func (e *Encoder) Bytes(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return e.write(b)
}

// GUID writes g as 16 bytes in Windows byte order.
func (e *Encoder) GUID(g guid.GUID) error {
	b := g.ToWindowsArray()
	return e.write(b[:])
}

// FileTime writes an 8-byte FILETIME.
func (e *Encoder) FileTime(ft cstype.FileTime) error {
	return e.Int64(int64(ft))
}

// String writes s as a length-prefixed UTF-16LE string. maxLen is the
// maximum number of code units allowed, or Unbounded.
func (e *Encoder) String(s string, maxLen int) error {
	raw, err := EncodeUTF16(s)
	if err != nil {
		return err
	}
	units := len(raw) / 2
	if maxLen >= 0 && units > maxLen {
		return fmt.Errorf("%w: max length %d, got %d", cstype.ErrStringTooLong, maxLen, units)
	}
	n, err := sizing.ToInt32(units, cstype.ErrCorruptLength)
	if err != nil {
		return err
	}
	if err := e.Int32(n); err != nil {
		return err
	}
	return e.Bytes(raw)
}
