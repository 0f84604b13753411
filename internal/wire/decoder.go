package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Microsoft/go-winio/pkg/guid"

	"github.com/meigma/connstore/internal/cstype"
)

// Unbounded disables the maximum length check of String.
const Unbounded = -1

// Decoder reads little-endian primitives from an io.Reader.
type Decoder struct {
	r   io.Reader
	buf [16]byte
	n   int64
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int64 { return d.n }

func (d *Decoder) fill(n int) ([]byte, error) {
	b := d.buf[:n]
	read, err := io.ReadFull(d.r, b)
	d.n += int64(read)
	if err != nil {
		return nil, truncated(err)
	}
	return b, nil
}

// Uint8 reads one byte.
func (d *Decoder) Uint8() (uint8, error) {
	b, err := d.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint32 reads a little-endian uint32.
func (d *Decoder) Uint32() (uint32, error) {
	b, err := d.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Int32 reads a little-endian int32.
func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err //nolint:gosec // two's complement reinterpretation
}

// Int64 reads a little-endian int64.
func (d *Decoder) Int64() (int64, error) {
	b, err := d.fill(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil //nolint:gosec // two's complement reinterpretation
}

// Bytes reads exactly n bytes into a new slice.
//
// The slice grows with the data actually read, so a corrupt length fails with
// ErrTruncated instead of allocating the claimed size up front.
func (d *Decoder) Bytes(n int64) ([]byte, error) {
	if n < 0 {
		return nil, cstype.ErrCorruptLength
	}
	var buf bytes.Buffer
	read, err := io.CopyN(&buf, d.r, n)
	d.n += read
	if err != nil {
		return nil, truncated(err)
	}
	return buf.Bytes(), nil
}

// GUID reads 16 bytes in Windows byte order.
func (d *Decoder) GUID() (guid.GUID, error) {
	b, err := d.fill(16)
	if err != nil {
		return guid.GUID{}, err
	}
	return guid.FromWindowsArray([16]byte(b)), nil
}

// FileTime reads an 8-byte FILETIME.
func (d *Decoder) FileTime() (cstype.FileTime, error) {
	v, err := d.Int64()
	return cstype.FileTime(v), err
}

// String reads a length-prefixed UTF-16LE string. maxLen is the maximum
// number of code units accepted, or Unbounded.
func (d *Decoder) String(maxLen int) (string, error) {
	n, err := d.Int32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("%w: string length %d", cstype.ErrCorruptLength, n)
	}
	if maxLen >= 0 && int(n) > maxLen {
		return "", fmt.Errorf("%w: max length %d, got %d", cstype.ErrStringTooLong, maxLen, n)
	}
	if n == 0 {
		return "", nil
	}
	raw, err := d.Bytes(int64(n) * 2)
	if err != nil {
		return "", err
	}
	return DecodeUTF16(raw)
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return cstype.ErrTruncated
	}
	return err
}
