package index

import (
	"bytes"
	"fmt"
	"io"

	"github.com/meigma/connstore/internal/cstype"
	"github.com/meigma/connstore/internal/sizing"
	"github.com/meigma/connstore/internal/wire"
)

// FileName is the name of the index file in a storage directory.
const FileName = "containers.index"

// Index is a decoded containers.index: the header followed by its entries.
type Index struct {
	MetaData MetaData
	Entries  []Entry
}

// Decode reads a complete index from r.
func Decode(r io.Reader) (*Index, error) {
	d := wire.NewDecoder(r)
	meta, err := DecodeMetaData(d)
	if err != nil {
		return nil, err
	}

	// Cap the preallocation; a corrupt count fails on truncation instead.
	entries := make([]Entry, 0, min(int(meta.EntryCount), 1024))
	for i := range int(meta.EntryCount) {
		en, err := DecodeEntry(d, meta.Version)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, en)
	}
	return &Index{MetaData: meta, Entries: entries}, nil
}

// Load parses an index from data.
func Load(data []byte) (*Index, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes the index to w. The header entry count is set to the number
// of entries before writing.
func (idx *Index) Encode(w io.Writer) error {
	count, err := sizing.ToInt32(len(idx.Entries), cstype.ErrSizeOverflow)
	if err != nil {
		return err
	}
	idx.MetaData.EntryCount = count

	e := wire.NewEncoder(w)
	if err := idx.MetaData.Encode(e); err != nil {
		return err
	}
	for i := range idx.Entries {
		if err := idx.Entries[i].Encode(e, idx.MetaData.Version); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

// Bytes returns the encoded index.
func (idx *Index) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := idx.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.Entries)
}
