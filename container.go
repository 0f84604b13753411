package connstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meigma/connstore/internal/cstype"
	"github.com/meigma/connstore/internal/fileio"
	"github.com/meigma/connstore/internal/index"
	"github.com/meigma/connstore/internal/records"
)

// Container is one entry of a storage together with its directory, blob
// manifest and blob files.
type Container struct {
	st       *Storage
	entry    index.Entry
	manifest *records.Manifest

	// deletedAtLoad is set when the entry was already deleted on disk. Its
	// manifest was never read and is not written back.
	deletedAtLoad bool
}

// createContainer makes the directory for a new entry.
func createContainer(st *Storage, entry index.Entry) (*Container, error) {
	c := &Container{st: st, entry: entry, manifest: &records.Manifest{}}
	dir := c.Dir()
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrContainerExists, dir)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err := os.Mkdir(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create container directory: %w", err)
	}
	return c, nil
}

// loadContainer reads the manifest of an existing entry.
func loadContainer(st *Storage, entry index.Entry) (*Container, error) {
	c := &Container{st: st, entry: entry}
	dir := c.Dir()
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, dir)
	}
	if err != nil {
		return nil, err
	}

	if entry.State == StateDeleted {
		c.manifest = &records.Manifest{}
		c.deletedAtLoad = true
		return c, nil
	}

	path := c.manifestPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	m, err := records.LoadManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyManifest, path)
	}
	c.manifest = m
	return c, nil
}

// Entry returns a copy of the container's index entry.
func (c *Container) Entry() Entry {
	return c.entry
}

// FileName returns the entry's file name.
func (c *Container) FileName() string {
	return c.entry.FileName
}

// EntryName returns the entry's display name. Indexes older than version 12
// do not store it.
func (c *Container) EntryName() string {
	return c.entry.EntryName
}

// ID returns the container id.
func (c *Container) ID() GUID {
	return c.entry.ContainerID
}

// State returns the entry's sync state.
func (c *Container) State() EntryState {
	return c.entry.State
}

// Dir returns the path of the container directory.
func (c *Container) Dir() string {
	return filepath.Join(c.st.dir, c.st.opts.platform.Name(c.entry.ContainerID))
}

// Blobs returns the blob records in manifest order.
func (c *Container) Blobs() []BlobRecord {
	return append([]BlobRecord(nil), c.manifest.Records...)
}

// Blob returns the first blob record named name.
func (c *Container) Blob(name string) (BlobRecord, bool) {
	return c.manifest.Lookup(name)
}

// BlobPath returns the path of rec's data file.
func (c *Container) BlobPath(rec BlobRecord) string {
	return filepath.Join(c.Dir(), c.st.opts.platform.Name(rec.FileID))
}

func (c *Container) manifestPath() string {
	return filepath.Join(c.Dir(), records.FileName(c.entry.BlobID))
}

// resolve finds the record for name. An empty name selects the only blob.
func (c *Container) resolve(name string) (BlobRecord, error) {
	if name == "" {
		switch c.manifest.Len() {
		case 0:
			return BlobRecord{}, fmt.Errorf("%w: %s", ErrNoBlobs, c.entry.FileName)
		case 1:
			return c.manifest.Records[0], nil
		default:
			return BlobRecord{}, fmt.Errorf("%w: %s holds %d blobs", ErrBlobNameRequired, c.entry.FileName, c.manifest.Len())
		}
	}
	rec, ok := c.manifest.Lookup(name)
	if !ok {
		return BlobRecord{}, fmt.Errorf("%w: %q in %s", ErrBlobNotFound, name, c.entry.FileName)
	}
	return rec, nil
}

// Open opens a blob for reading. An empty name selects the container's only
// blob. The caller must close the returned reader.
func (c *Container) Open(name string) (io.ReadCloser, error) {
	rec, err := c.resolve(name)
	if err != nil {
		return nil, err
	}
	path := c.BlobPath(rec)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ReadBlob returns the content of a blob.
func (c *Container) ReadBlob(name string) ([]byte, error) {
	rc, err := c.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Update replaces the content of a blob with r and marks the entry modified
// with the new size. An empty name selects the container's only blob.
func (c *Container) Update(ctx context.Context, name string, r io.Reader) error {
	if err := c.checkWritable(); err != nil {
		return err
	}
	rec, err := c.resolve(name)
	if err != nil {
		return err
	}
	path := c.BlobPath(rec)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrBlobNotFound, path)
	}

	n, err := fileio.CopyFile(ctx, path, r)
	if err != nil {
		return err
	}
	next, err := index.Transition(c.entry, index.Modified(n, c.st.opts.now()))
	if err != nil {
		return err
	}
	c.entry = next
	c.st.log().Debug("blob updated", "container", c.entry.FileName, "blob", rec.Name, "size", n)
	return nil
}

// Add creates a blob. An empty name is only allowed in an empty container
// and becomes DefaultBlobName. The blob file is created empty; when r is not
// nil its content is written as by Update.
func (c *Container) Add(ctx context.Context, name string, r io.Reader) (BlobRecord, error) {
	if err := c.checkWritable(); err != nil {
		return BlobRecord{}, err
	}
	if name == "" {
		if c.manifest.Len() > 0 {
			return BlobRecord{}, fmt.Errorf("%w: %s already holds blobs", ErrBlobNameRequired, c.entry.FileName)
		}
		name = DefaultBlobName
	}
	rec, err := c.manifest.Add(name)
	if err != nil {
		return BlobRecord{}, err
	}
	if err := fileio.WriteFile(c.BlobPath(rec), nil); err != nil {
		_, _ = c.manifest.Remove(name) //nolint:errcheck // just added
		return BlobRecord{}, err
	}
	c.st.log().Debug("blob added", "container", c.entry.FileName, "blob", name, "file", c.st.opts.platform.Name(rec.FileID))

	if r != nil {
		return rec, c.Update(ctx, name, r)
	}
	return rec, c.touch()
}

// Remove deletes a blob file and its manifest record. An empty name selects
// the container's only blob.
func (c *Container) Remove(name string) error {
	if err := c.checkWritable(); err != nil {
		return err
	}
	rec, err := c.resolve(name)
	if err != nil {
		return err
	}
	if _, err := c.manifest.Remove(rec.Name); err != nil {
		return err
	}
	if err := os.Remove(c.BlobPath(rec)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove blob file: %w", err)
	}
	c.st.log().Debug("blob removed", "container", c.entry.FileName, "blob", rec.Name)
	return c.touch()
}

// Write replaces the container's manifest file with the in-memory records.
func (c *Container) Write() error {
	if c.st.opts.readOnly {
		return ErrReadOnly
	}
	data, skip, err := c.encodeManifest()
	if err != nil || skip {
		return err
	}
	return c.writeManifest(data)
}

// encodeManifest reports skip for containers whose manifest was never loaded.
func (c *Container) encodeManifest() (data []byte, skip bool, err error) {
	if c.deletedAtLoad {
		return nil, true, nil
	}
	var buf bytes.Buffer
	if err := c.manifest.Encode(&buf); err != nil {
		return nil, false, fmt.Errorf("%s: %w", c.entry.FileName, err)
	}
	return buf.Bytes(), false, nil
}

func (c *Container) writeManifest(data []byte) error {
	if err := fileio.WriteFile(c.manifestPath(), data); err != nil {
		return err
	}
	c.st.log().Debug("manifest written", "container", c.entry.FileName, "blobs", c.manifest.Len())
	return nil
}

func (c *Container) checkWritable() error {
	if c.st.opts.readOnly {
		return ErrReadOnly
	}
	if c.entry.State == StateDeleted {
		return fmt.Errorf("%w: %s", ErrEntryDeleted, c.entry.FileName)
	}
	return nil
}

// touch records a manifest change. Entries not yet saved stay Created.
func (c *Container) touch() error {
	if c.entry.State == StateCreated {
		c.entry.LastModified = cstype.FileTimeFromTime(c.st.opts.now())
		return nil
	}
	next, err := index.Transition(c.entry, index.Modified(c.entry.FileSize, c.st.opts.now()))
	if err != nil {
		return err
	}
	c.entry = next
	return nil
}

func (c *Container) markDeleted() error {
	next, err := index.Transition(c.entry, index.Deleted(c.st.opts.now()))
	if err != nil {
		return err
	}
	c.entry = next
	return nil
}
