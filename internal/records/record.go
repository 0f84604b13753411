package records

import (
	"encoding/binary"
	"fmt"

	"github.com/Microsoft/go-winio/pkg/guid"

	"github.com/meigma/connstore/internal/cstype"
	"github.com/meigma/connstore/internal/wire"
)

const (
	// NameFieldSize is the width in bytes of the fixed name field.
	NameFieldSize = 128
	// RecordSize is the encoded size of one Record.
	RecordSize = NameFieldSize + 16 + 16
)

// Record describes one blob of a container.
type Record struct {
	Name string
	// AtomID is carried but not interpreted. New records mirror FileID.
	AtomID guid.GUID
	// FileID names the blob's data file.
	FileID guid.GUID
}

// CheckName reports ErrNameTooLong when name does not fit the fixed name
// field once encoded as UTF-16.
func CheckName(name string) error {
	if n := 2 * wire.UTF16Len(name); n > NameFieldSize {
		return fmt.Errorf("%w: %q is %d bytes", cstype.ErrNameTooLong, name, n)
	}
	return nil
}

// NewRecord returns a record for name. Names that do not fit fail with
// ErrNameTooLong. A nil fileID is replaced by a random
// one and a nil atomID takes the value of the file id.
func NewRecord(name string, atomID, fileID guid.GUID) (Record, error) {
	if err := CheckName(name); err != nil {
		return Record{}, err
	}
	if fileID == (guid.GUID{}) {
		id, err := guid.NewV4()
		if err != nil {
			return Record{}, fmt.Errorf("generate blob id: %w", err)
		}
		fileID = id
	}
	if atomID == (guid.GUID{}) {
		atomID = fileID
	}
	return Record{Name: name, AtomID: atomID, FileID: fileID}, nil
}

// DecodeRecord reads one fixed-size record.
//
// The name ends at the first NUL code unit; a field with no NUL is taken
// whole.
func DecodeRecord(d *wire.Decoder) (Record, error) {
	raw, err := d.Bytes(NameFieldSize)
	if err != nil {
		return Record{}, fmt.Errorf("decode name: %w", err)
	}
	n := 0
	for n < NameFieldSize && binary.LittleEndian.Uint16(raw[n:]) != 0 {
		n += 2
	}

	var rec Record
	if n > 0 {
		if rec.Name, err = wire.DecodeUTF16(raw[:n]); err != nil {
			return Record{}, fmt.Errorf("decode name: %w", err)
		}
	}
	if rec.AtomID, err = d.GUID(); err != nil {
		return Record{}, fmt.Errorf("decode atom id: %w", err)
	}
	if rec.FileID, err = d.GUID(); err != nil {
		return Record{}, fmt.Errorf("decode file id: %w", err)
	}
	return rec, nil
}

// Encode writes the record. Names longer than 128 bytes once encoded fail
// with ErrNameTooLong before anything is written.
func (r *Record) Encode(e *wire.Encoder) error {
	name, err := wire.EncodeUTF16(r.Name)
	if err != nil {
		return err
	}
	if len(name) > NameFieldSize {
		return fmt.Errorf("%w: %q is %d bytes", cstype.ErrNameTooLong, r.Name, len(name))
	}
	var field [NameFieldSize]byte
	copy(field[:], name)

	if err := e.Bytes(field[:]); err != nil {
		return err
	}
	if err := e.GUID(r.AtomID); err != nil {
		return err
	}
	return e.GUID(r.FileID)
}
