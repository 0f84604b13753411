package index

import (
	"fmt"
	"strings"

	"github.com/Microsoft/go-winio/pkg/guid"

	"github.com/meigma/connstore/internal/cstype"
	"github.com/meigma/connstore/internal/wire"
)

// MaxVersion is the newest index format understood.
const MaxVersion = 14

// ReservedSize is the size of the opaque trailer present from version 14.
const ReservedSize = 8

const maxAppIDLen = 130

// MetaData is the root header of containers.index.
type MetaData struct {
	Version    uint32
	EntryCount int32

	// Version >= 7.
	Name  string
	AppID string

	// Version >= 9.
	LastModified cstype.FileTime
	// Version 9 stores a single byte, set only when Flags is exactly
	// FlagFullyUploaded.
	Flags cstype.SyncFlags

	// Version >= 13. The nil GUID is stored as an empty string.
	RootContainerID guid.GUID

	// Version >= 14, round-tripped verbatim. Nil encodes as zeros.
	Reserved []byte

	// rootIDText holds the on-disk spelling of RootContainerID when it is not
	// the canonical one, so unmodified headers re-encode byte for byte.
	rootIDText string
}

var metaDataLayout = wire.Layout[MetaData]{
	{
		Name: "name", MinVersion: 7, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, m *MetaData) (err error) {
			m.Name, err = d.String(wire.Unbounded)
			return err
		},
		Encode: func(e *wire.Encoder, m *MetaData) error { return e.String(m.Name, wire.Unbounded) },
	},
	{
		Name: "app_id", MinVersion: 7, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, m *MetaData) (err error) {
			m.AppID, err = d.String(maxAppIDLen)
			return err
		},
		Encode: func(e *wire.Encoder, m *MetaData) error { return e.String(m.AppID, maxAppIDLen) },
	},
	{
		Name: "last_modified", MinVersion: 9, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, m *MetaData) (err error) {
			m.LastModified, err = d.FileTime()
			return err
		},
		Encode: func(e *wire.Encoder, m *MetaData) error { return e.FileTime(m.LastModified) },
	},
	{
		Name: "uploaded", MinVersion: 9, MaxVersion: 9,
		Decode: func(d *wire.Decoder, m *MetaData) error {
			b, err := d.Uint8()
			if err != nil {
				return err
			}
			m.Flags = 0
			if b != 0 {
				m.Flags = cstype.FlagFullyUploaded
			}
			return nil
		},
		Encode: func(e *wire.Encoder, m *MetaData) error {
			if m.Flags == cstype.FlagFullyUploaded {
				return e.Uint8(1)
			}
			return e.Uint8(0)
		},
	},
	{
		Name: "flags", MinVersion: 10, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, m *MetaData) error {
			v, err := d.Uint32()
			m.Flags = cstype.SyncFlags(v)
			return err
		},
		Encode: func(e *wire.Encoder, m *MetaData) error { return e.Uint32(uint32(m.Flags)) },
	},
	{
		Name: "root_container_id", MinVersion: 13, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, m *MetaData) error {
			s, err := d.String(wire.Unbounded)
			if err != nil {
				return err
			}
			id, err := parseRootID(s)
			if err != nil {
				return err
			}
			m.RootContainerID = id
			m.rootIDText = ""
			if s != canonicalRootID(id) {
				m.rootIDText = s
			}
			return nil
		},
		Encode: func(e *wire.Encoder, m *MetaData) error { return e.String(m.rootIDString(), wire.Unbounded) },
	},
	{
		Name: "reserved", MinVersion: 14, MaxVersion: wire.AnyVersion,
		Decode: func(d *wire.Decoder, m *MetaData) (err error) {
			m.Reserved, err = d.Bytes(ReservedSize)
			return err
		},
		Encode: func(e *wire.Encoder, m *MetaData) error {
			if m.Reserved == nil {
				return e.Bytes(make([]byte, ReservedSize))
			}
			if len(m.Reserved) != ReservedSize {
				return fmt.Errorf("%w: reserved is %d bytes, want %d", cstype.ErrCorruptLength, len(m.Reserved), ReservedSize)
			}
			return e.Bytes(m.Reserved)
		},
	},
}

// MetaDataFields lists the optional header fields present at version, in
// on-disk order. Version and entry count always precede them.
func MetaDataFields(version uint32) []string {
	return metaDataLayout.Fields(version)
}

// DecodeMetaData reads a header.
func DecodeMetaData(d *wire.Decoder) (MetaData, error) {
	var m MetaData
	var err error
	if m.Version, err = d.Uint32(); err != nil {
		return MetaData{}, fmt.Errorf("decode version: %w", err)
	}
	if m.EntryCount, err = d.Int32(); err != nil {
		return MetaData{}, fmt.Errorf("decode entry count: %w", err)
	}
	if m.Version > MaxVersion {
		return MetaData{}, fmt.Errorf("%w: index version %d", cstype.ErrInvalidVersion, m.Version)
	}
	if m.EntryCount < 0 {
		return MetaData{}, fmt.Errorf("%w: entry count %d", cstype.ErrCorruptLength, m.EntryCount)
	}
	if err := metaDataLayout.Decode(d, m.Version, &m); err != nil {
		return MetaData{}, err
	}
	return m, nil
}

// Encode writes the header. Fields absent at m.Version are not written.
func (m *MetaData) Encode(e *wire.Encoder) error {
	if m.Version > MaxVersion {
		return fmt.Errorf("%w: index version %d", cstype.ErrInvalidVersion, m.Version)
	}
	if err := e.Uint32(m.Version); err != nil {
		return err
	}
	if err := e.Int32(m.EntryCount); err != nil {
		return err
	}
	return metaDataLayout.Encode(e, m.Version, m)
}

func (m *MetaData) rootIDString() string {
	if m.rootIDText != "" {
		if id, err := parseRootID(m.rootIDText); err == nil && id == m.RootContainerID {
			return m.rootIDText
		}
	}
	return canonicalRootID(m.RootContainerID)
}

func canonicalRootID(id guid.GUID) string {
	if id == (guid.GUID{}) {
		return ""
	}
	return id.String()
}

// parseRootID accepts 32 hex digits, optionally hyphenated, and the
// hyphenated form wrapped in braces or parentheses.
func parseRootID(s string) (guid.GUID, error) {
	if s == "" {
		return guid.GUID{}, nil
	}
	t := s
	if len(t) == 38 && (t[0] == '{' && t[37] == '}' || t[0] == '(' && t[37] == ')') {
		t = t[1:37]
	}
	if len(t) == 32 && !strings.Contains(t, "-") {
		t = t[:8] + "-" + t[8:12] + "-" + t[12:16] + "-" + t[16:20] + "-" + t[20:]
	}
	id, err := guid.FromString(t)
	if err != nil {
		return guid.GUID{}, fmt.Errorf("%w: root container id %q", cstype.ErrFormat, s)
	}
	return id, nil
}
