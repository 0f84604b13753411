// Package testutil assembles containers.index and manifest bytes by hand.
//
// The builders write the documented byte layout directly with encoding/binary
// and unicode/utf16 so codec tests compare against an independent rendering.
package testutil

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf16"
)

// Builder appends little-endian fields to a buffer.
type Builder struct {
	buf bytes.Buffer
}

// U8 appends one byte.
func (b *Builder) U8(v uint8) *Builder {
	b.buf.WriteByte(v)
	return b
}

// U32 appends a little-endian uint32.
func (b *Builder) U32(v uint32) *Builder {
	_ = binary.Write(&b.buf, binary.LittleEndian, v) //nolint:errcheck // bytes.Buffer writes never fail
	return b
}

// I64 appends a little-endian int64.
func (b *Builder) I64(v int64) *Builder {
	_ = binary.Write(&b.buf, binary.LittleEndian, v) //nolint:errcheck // bytes.Buffer writes never fail
	return b
}

// Str appends a length-prefixed UTF-16LE string.
func (b *Builder) Str(s string) *Builder {
	units := utf16.Encode([]rune(s))
	b.U32(uint32(len(units))) //nolint:gosec // test strings are short
	for _, u := range units {
		_ = binary.Write(&b.buf, binary.LittleEndian, u) //nolint:errcheck // bytes.Buffer writes never fail
	}
	return b
}

// GUID appends a canonical GUID string in Windows byte order.
func (b *Builder) GUID(s string) *Builder {
	b.buf.Write(WindowsGUIDBytes(s))
	return b
}

// Raw appends p verbatim.
func (b *Builder) Raw(p []byte) *Builder {
	b.buf.Write(p)
	return b
}

// Bytes returns the assembled bytes.
func (b *Builder) Bytes() []byte {
	return bytes.Clone(b.buf.Bytes())
}

// WindowsGUIDBytes converts "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" to the
// 16-byte layout with the first three groups little-endian.
func WindowsGUIDBytes(s string) []byte {
	raw, err := hex.DecodeString(strings.ReplaceAll(s, "-", ""))
	if err != nil || len(raw) != 16 {
		panic("testutil: bad GUID " + s)
	}
	out := make([]byte, 16)
	copy(out, raw)
	out[0], out[1], out[2], out[3] = raw[3], raw[2], raw[1], raw[0]
	out[4], out[5] = raw[5], raw[4]
	out[6], out[7] = raw[7], raw[6]
	return out
}

// IndexHeader describes a containers.index header.
type IndexHeader struct {
	Version      uint32
	Name         string
	AppID        string
	LastModified int64
	Flags        uint32
	RootID       string
	Reserved     []byte
}

// IndexEntry describes one containers.index entry.
type IndexEntry struct {
	FileName     string
	EntryName    string
	ETag         string
	BlobID       uint8
	State        uint32
	ContainerID  string
	LastModified int64
	Type         uint32
	Reserved     uint32
	FileSize     int64
}

// BuildIndex assembles a containers.index for h.Version.
func BuildIndex(tb testing.TB, h IndexHeader, entries ...IndexEntry) []byte {
	tb.Helper()

	var b Builder
	buildHeader(&b, h, len(entries))
	for _, e := range entries {
		b.Str(e.FileName)
		if h.Version >= 12 {
			b.Str(e.EntryName)
		}
		b.Str(e.ETag)
		b.U8(e.BlobID)
		b.U32(e.State)
		b.GUID(e.ContainerID)
		b.I64(e.LastModified)
		b.U32(e.Type)
		b.U32(e.Reserved)
		if h.Version > 10 {
			b.I64(e.FileSize)
		} else {
			b.U32(uint32(e.FileSize)) //nolint:gosec // fixtures keep sizes in range
		}
	}
	return b.Bytes()
}

func buildHeader(b *Builder, h IndexHeader, count int) {
	b.U32(h.Version)
	b.U32(uint32(count)) //nolint:gosec // fixtures are small
	if h.Version < 7 {
		return
	}
	b.Str(h.Name)
	b.Str(h.AppID)
	if h.Version <= 8 {
		return
	}
	b.I64(h.LastModified)
	if h.Version == 9 {
		var uploaded uint8
		if h.Flags == 1 {
			uploaded = 1
		}
		b.U8(uploaded)
		return
	}
	b.U32(h.Flags)
	if h.Version >= 13 {
		b.Str(h.RootID)
	}
	if h.Version >= 14 {
		reserved := h.Reserved
		if reserved == nil {
			reserved = make([]byte, 8)
		}
		b.Raw(reserved)
	}
}

// ManifestRecord describes one blob record.
type ManifestRecord struct {
	Name   string
	AtomID string
	FileID string
}

// BuildManifest assembles a blob manifest with the given version field.
func BuildManifest(tb testing.TB, version uint32, records ...ManifestRecord) []byte {
	tb.Helper()

	var b Builder
	b.U32(version)
	b.U32(uint32(len(records))) //nolint:gosec // fixtures are small
	for _, r := range records {
		name := make([]byte, 128)
		for i, u := range utf16.Encode([]rune(r.Name)) {
			binary.LittleEndian.PutUint16(name[i*2:], u)
		}
		b.Raw(name)
		b.GUID(r.AtomID)
		b.GUID(r.FileID)
	}
	return b.Bytes()
}

// WriteFile writes data to dir/name, creating dir as needed.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()

	if err := os.MkdirAll(dir, 0o750); err != nil {
		tb.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}
