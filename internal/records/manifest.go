package records

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/Microsoft/go-winio/pkg/guid"

	"github.com/meigma/connstore/internal/cstype"
	"github.com/meigma/connstore/internal/sizing"
	"github.com/meigma/connstore/internal/wire"
)

// Version is the only manifest version in use.
const Version = 4

// FileNamePrefix prefixes the decimal manifest suffix in a container directory.
const FileNamePrefix = "container."

// FileName returns the manifest file name for the given suffix byte.
func FileName(blobID uint8) string {
	return FileNamePrefix + strconv.Itoa(int(blobID))
}

// Manifest is the ordered, name-unique list of blob records of a container.
type Manifest struct {
	Records []Record
}

// DecodeManifest reads a manifest from r.
func DecodeManifest(r io.Reader) (*Manifest, error) {
	d := wire.NewDecoder(r)
	version, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("decode version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: manifest version %d", cstype.ErrInvalidVersion, version)
	}
	count, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("decode count: %w", err)
	}
	n, err := sizing.ToInt(count, cstype.ErrCorruptLength)
	if err != nil {
		return nil, err
	}

	// Bounded so a corrupt count fails on truncation rather than allocation.
	m := &Manifest{Records: make([]Record, 0, min(n, 256))}
	for i := range n {
		rec, err := DecodeRecord(d)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		m.Records = append(m.Records, rec)
	}
	return m, nil
}

// LoadManifest parses a manifest from data.
func LoadManifest(data []byte) (*Manifest, error) {
	return DecodeManifest(bytes.NewReader(data))
}

// Encode writes the manifest with the current record count.
func (m *Manifest) Encode(w io.Writer) error {
	e := wire.NewEncoder(w)
	if err := e.Uint32(Version); err != nil {
		return err
	}
	if err := e.Uint32(uint32(len(m.Records))); err != nil { //nolint:gosec // record slices never approach 4G entries
		return err
	}
	for i := range m.Records {
		if err := m.Records[i].Encode(e); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// Bytes returns the encoded manifest.
func (m *Manifest) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(8 + len(m.Records)*RecordSize)
	if err := m.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Len returns the number of records.
func (m *Manifest) Len() int {
	return len(m.Records)
}

// Lookup returns the first record named name.
func (m *Manifest) Lookup(name string) (Record, bool) {
	for _, rec := range m.Records {
		if rec.Name == name {
			return rec, true
		}
	}
	return Record{}, false
}

// Add appends a record with fresh identifiers. It fails with ErrBlobExists
// when name is taken and ErrNameTooLong when name does not fit.
func (m *Manifest) Add(name string) (Record, error) {
	if _, ok := m.Lookup(name); ok {
		return Record{}, fmt.Errorf("%w: %q", cstype.ErrBlobExists, name)
	}
	rec, err := NewRecord(name, guid.GUID{}, guid.GUID{})
	if err != nil {
		return Record{}, err
	}
	m.Records = append(m.Records, rec)
	return rec, nil
}

// Remove deletes the first record named name and returns it. It fails with
// ErrBlobNotFound when no record matches.
func (m *Manifest) Remove(name string) (Record, error) {
	for i, rec := range m.Records {
		if rec.Name == name {
			m.Records = append(m.Records[:i:i], m.Records[i+1:]...)
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %q", cstype.ErrBlobNotFound, name)
}
