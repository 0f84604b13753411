package index

import (
	"fmt"
	"time"

	"github.com/Microsoft/go-winio/pkg/guid"

	"github.com/meigma/connstore/internal/cstype"
	"github.com/meigma/connstore/internal/sizing"
	"github.com/meigma/connstore/internal/wire"
)

// Field length limits in UTF-16 code units.
const (
	MaxFileNameLen  = 255
	MaxEntryNameLen = 127
	MaxETagLen      = 256
)

// DefaultBlobID is the manifest suffix given to new entries.
const DefaultBlobID = 1

// Entry describes one container in the index.
type Entry struct {
	FileName string
	// EntryName is only stored from version 12; older indexes leave it empty.
	EntryName string
	ETag      string

	// BlobID is the suffix of the container's manifest file name.
	BlobID uint8
	State  cstype.EntryState

	ContainerID  guid.GUID
	LastModified cstype.FileTime

	// Type and Reserved are not interpreted and are round-tripped as read.
	Type     uint32
	Reserved uint32

	// FileSize is stored as 32 bits up to version 10 and 64 bits after.
	FileSize int64
}

// NewEntry returns an entry for a container that does not exist on disk yet.
func NewEntry(fileName, entryName string, id guid.GUID, now time.Time) Entry {
	return Entry{
		FileName:     fileName,
		EntryName:    entryName,
		BlobID:       DefaultBlobID,
		State:        cstype.StateCreated,
		ContainerID:  id,
		LastModified: cstype.FileTimeFromTime(now),
	}
}

// CheckNames reports ErrStringTooLong when fileName or entryName exceeds its
// field limit.
func CheckNames(fileName, entryName string) error {
	if n := wire.UTF16Len(fileName); n > MaxFileNameLen {
		return fmt.Errorf("%w: file name has %d units, max %d", cstype.ErrStringTooLong, n, MaxFileNameLen)
	}
	if n := wire.UTF16Len(entryName); n > MaxEntryNameLen {
		return fmt.Errorf("%w: entry name has %d units, max %d", cstype.ErrStringTooLong, n, MaxEntryNameLen)
	}
	return nil
}

var entryLayout = wire.Layout[Entry]{
	{
		Name: "file_name", MinVersion: 0, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, en *Entry) (err error) {
			en.FileName, err = d.String(MaxFileNameLen)
			return err
		},
		Encode: func(e *wire.Encoder, en *Entry) error { return e.String(en.FileName, MaxFileNameLen) },
	},
	{
		Name: "entry_name", MinVersion: 12, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, en *Entry) (err error) {
			en.EntryName, err = d.String(MaxEntryNameLen)
			return err
		},
		Encode: func(e *wire.Encoder, en *Entry) error { return e.String(en.EntryName, MaxEntryNameLen) },
	},
	{
		Name: "etag", MinVersion: 0, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, en *Entry) (err error) {
			en.ETag, err = d.String(MaxETagLen)
			return err
		},
		Encode: func(e *wire.Encoder, en *Entry) error { return e.String(en.ETag, MaxETagLen) },
	},
	{
		Name: "blob_id", MinVersion: 0, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, en *Entry) (err error) {
			en.BlobID, err = d.Uint8()
			return err
		},
		Encode: func(e *wire.Encoder, en *Entry) error { return e.Uint8(en.BlobID) },
	},
	{
		Name: "state", MinVersion: 0, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, en *Entry) error {
			v, err := d.Uint32()
			if err != nil {
				return err
			}
			en.State = cstype.EntryState(v)
			if en.State == cstype.StateNone {
				en.State = cstype.StateSynched
			}
			return nil
		},
		Encode: func(e *wire.Encoder, en *Entry) error { return e.Uint32(uint32(en.State)) },
	},
	{
		Name: "container_id", MinVersion: 0, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, en *Entry) (err error) {
			en.ContainerID, err = d.GUID()
			return err
		},
		Encode: func(e *wire.Encoder, en *Entry) error { return e.GUID(en.ContainerID) },
	},
	{
		Name: "last_modified", MinVersion: 0, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, en *Entry) (err error) {
			en.LastModified, err = d.FileTime()
			return err
		},
		Encode: func(e *wire.Encoder, en *Entry) error { return e.FileTime(en.LastModified) },
	},
	{
		Name: "type", MinVersion: 0, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, en *Entry) (err error) {
			en.Type, err = d.Uint32()
			return err
		},
		Encode: func(e *wire.Encoder, en *Entry) error { return e.Uint32(en.Type) },
	},
	{
		Name: "reserved", MinVersion: 0, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, en *Entry) (err error) {
			en.Reserved, err = d.Uint32()
			return err
		},
		Encode: func(e *wire.Encoder, en *Entry) error { return e.Uint32(en.Reserved) },
	},
	// Version 10 still uses the narrow size field.
	{
		Name: "file_size32", MinVersion: 0, MaxVersion: 10,
		Decode: func(d *wire.Decoder, en *Entry) error {
			v, err := d.Uint32()
			en.FileSize = int64(v)
			return err
		},
		Encode: func(e *wire.Encoder, en *Entry) error {
			v, err := sizing.ToUint32(en.FileSize, cstype.ErrSizeOverflow)
			if err != nil {
				return err
			}
			return e.Uint32(v)
		},
	},
	{
		Name: "file_size64", MinVersion: 11, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, en *Entry) (err error) {
			en.FileSize, err = d.Int64()
			return err
		},
		Encode: func(e *wire.Encoder, en *Entry) error { return e.Int64(en.FileSize) },
	},
}

// EntryFields lists the entry fields present at version, in on-disk order.
func EntryFields(version uint32) []string {
	return entryLayout.Fields(version)
}

// DecodeEntry reads one entry laid out for the given index version.
// A stored state of StateNone is returned as StateSynched.
func DecodeEntry(d *wire.Decoder, version uint32) (Entry, error) {
	var en Entry
	if err := entryLayout.Decode(d, version, &en); err != nil {
		return Entry{}, err
	}
	return en, nil
}

// Encode writes the entry laid out for the given index version.
func (en *Entry) Encode(e *wire.Encoder, version uint32) error {
	return entryLayout.Encode(e, version, en)
}
