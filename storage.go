package connstore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Microsoft/go-winio/pkg/guid"

	"github.com/meigma/connstore/internal/cstype"
	"github.com/meigma/connstore/internal/fileio"
	"github.com/meigma/connstore/internal/index"
)

// Storage is a connected storage directory: the index header and one
// Container per index entry, in index order.
type Storage struct {
	dir        string
	meta       index.MetaData
	containers []*Container
	opts       options
	closed     bool
}

// log returns the logger, falling back to a discard logger if nil.
func (s *Storage) log() *slog.Logger {
	if s.opts.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.opts.logger
}

func newStorage(dir string, opts []Option) *Storage {
	s := &Storage{dir: dir, opts: defaultOptions()}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// Open loads the storage in dir: the index and the manifest of every entry
// not marked deleted.
func Open(dir string, opts ...Option) (*Storage, error) {
	s := newStorage(dir, opts)

	path := s.indexPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	idx, err := index.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s.meta = idx.MetaData
	s.containers = make([]*Container, 0, idx.Len())
	for _, entry := range idx.Entries {
		c, err := loadContainer(s, entry)
		if err != nil {
			return nil, fmt.Errorf("load container %q: %w", entry.FileName, err)
		}
		s.containers = append(s.containers, c)
	}

	s.log().Info("storage opened",
		"dir", dir,
		"version", s.meta.Version,
		"containers", len(s.containers),
		"platform", s.opts.platform.String(),
		"read_only", s.opts.readOnly)
	return s, nil
}

// DefaultVersion is the index version used by Create when none is given.
const DefaultVersion = index.MaxVersion

// Create initializes a new storage in dir with the given header and writes
// its empty index. dir is created if needed; an existing index fails with
// ErrStorageExists. A zero meta.Version is replaced by DefaultVersion.
func Create(dir string, meta MetaData, opts ...Option) (*Storage, error) {
	s := newStorage(dir, opts)
	if s.opts.readOnly {
		return nil, ErrReadOnly
	}
	if meta.Version == 0 {
		meta.Version = DefaultVersion
	}
	if meta.Version > index.MaxVersion {
		return nil, fmt.Errorf("%w: index version %d", ErrInvalidVersion, meta.Version)
	}
	meta.EntryCount = 0
	if meta.LastModified.IsZero() {
		meta.LastModified = cstype.FileTimeFromTime(s.opts.now())
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	path := s.indexPath()
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrStorageExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	idx := index.Index{MetaData: meta}
	data, err := idx.Bytes()
	if err != nil {
		return nil, err
	}
	if err := fileio.WriteFile(path, data); err != nil {
		return nil, err
	}
	s.meta = idx.MetaData
	s.log().Info("storage created", "dir", dir, "version", meta.Version)
	return s, nil
}

func (s *Storage) indexPath() string {
	return filepath.Join(s.dir, IndexFileName)
}

// Dir returns the storage directory.
func (s *Storage) Dir() string { return s.dir }

// ReadOnly reports whether mutations are disabled.
func (s *Storage) ReadOnly() bool { return s.opts.readOnly }

// Platform returns the file naming in use.
func (s *Storage) Platform() Platform { return s.opts.platform }

// MetaData returns a copy of the index header as last loaded or written.
func (s *Storage) MetaData() MetaData {
	m := s.meta
	m.Reserved = bytes.Clone(s.meta.Reserved)
	return m
}

// Containers returns the containers in index order, including deleted ones.
func (s *Storage) Containers() []*Container {
	return append([]*Container(nil), s.containers...)
}

// Len returns the number of containers.
func (s *Storage) Len() int { return len(s.containers) }

// Get returns the first container with the given file name.
func (s *Storage) Get(fileName string) (*Container, error) {
	for _, c := range s.containers {
		if c.entry.FileName == fileName {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, fileName)
}

// GetByEntryName returns the first container with the given entry name.
func (s *Storage) GetByEntryName(entryName string) (*Container, error) {
	for _, c := range s.containers {
		if c.entry.EntryName == entryName {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: entry name %q", ErrEntryNotFound, entryName)
}

// Add creates a container for a new entry and its directory. The entry
// starts in StateCreated and has no blobs. Names over their field limits
// fail with ErrStringTooLong before anything changes.
func (s *Storage) Add(fileName, entryName string) (*Container, error) {
	if s.opts.readOnly {
		return nil, ErrReadOnly
	}
	if err := index.CheckNames(fileName, entryName); err != nil {
		return nil, err
	}
	for _, c := range s.containers {
		if c.entry.FileName == fileName && c.entry.State != StateDeleted {
			return nil, fmt.Errorf("%w: %q", ErrEntryExists, fileName)
		}
	}
	id, err := guid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate container id: %w", err)
	}
	c, err := createContainer(s, index.NewEntry(fileName, entryName, id, s.opts.now()))
	if err != nil {
		return nil, err
	}
	s.containers = append(s.containers, c)
	s.log().Debug("container added", "file_name", fileName, "dir", c.Dir())
	return c, nil
}

// Remove marks c deleted. Its directory and files are left in place.
func (s *Storage) Remove(c *Container) error {
	if s.opts.readOnly {
		return ErrReadOnly
	}
	if c == nil || c.st != s {
		return fmt.Errorf("%w: container does not belong to this storage", ErrEntryNotFound)
	}
	if err := c.markDeleted(); err != nil {
		return err
	}
	s.log().Debug("container removed", "file_name", c.entry.FileName)
	return nil
}

// RemoveByName marks the first container with the given file name deleted.
func (s *Storage) RemoveByName(fileName string) error {
	if s.opts.readOnly {
		return ErrReadOnly
	}
	c, err := s.Get(fileName)
	if err != nil {
		return err
	}
	return s.Remove(c)
}

// Write persists the index and then every container manifest.
//
// When any container is not synched the index gains FlagFullyDownloaded and
// a fresh last-modified time. Everything is encoded before the first file is
// written, so format errors leave the directory untouched.
func (s *Storage) Write() error {
	if s.opts.readOnly {
		return ErrReadOnly
	}

	idx := index.Index{MetaData: s.meta, Entries: make([]index.Entry, 0, len(s.containers))}
	dirty := 0
	for _, c := range s.containers {
		idx.Entries = append(idx.Entries, c.entry)
		if c.entry.State != StateSynched {
			dirty++
		}
	}
	if dirty > 0 {
		idx.MetaData.Flags |= FlagFullyDownloaded
		idx.MetaData.LastModified = cstype.FileTimeFromTime(s.opts.now())
	}
	indexData, err := idx.Bytes()
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	manifests := make([][]byte, len(s.containers))
	for i, c := range s.containers {
		data, skip, err := c.encodeManifest()
		if err != nil {
			return fmt.Errorf("encode manifest: %w", err)
		}
		if !skip {
			manifests[i] = data
		}
	}

	if err := fileio.WriteFile(s.indexPath(), indexData); err != nil {
		return err
	}
	s.meta = idx.MetaData
	for i, c := range s.containers {
		if manifests[i] == nil {
			continue
		}
		if err := c.writeManifest(manifests[i]); err != nil {
			return fmt.Errorf("write manifest %q: %w", c.entry.FileName, err)
		}
	}

	s.log().Info("storage written", "dir", s.dir, "containers", len(s.containers), "pending", dirty)
	return nil
}

// Close writes the storage unless it is read-only. Later calls do nothing.
func (s *Storage) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.opts.readOnly {
		return nil
	}
	return s.Write()
}
