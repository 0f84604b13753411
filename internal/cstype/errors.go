package cstype

import "errors"

// Error categories. Every specific sentinel below unwraps to exactly one of
// these, so callers can branch on the category with errors.Is.
var (
	// ErrFormat is returned when on-disk data cannot be decoded or a value
	// cannot be represented in the target layout.
	ErrFormat = errors.New("connstore: format error")

	// ErrNotFound is returned when a file, directory, entry or blob is missing.
	ErrNotFound = errors.New("connstore: not found")

	// ErrStateViolation is returned when an operation is not allowed in the
	// current state of the storage.
	ErrStateViolation = errors.New("connstore: invalid operation")
)

// Format errors.
var (
	ErrInvalidVersion = newKind(ErrFormat, "invalid version")
	ErrCorruptLength  = newKind(ErrFormat, "corrupt length")
	ErrStringTooLong  = newKind(ErrFormat, "string too long")
	ErrNameTooLong    = newKind(ErrFormat, "blob name too long")
	ErrEmptyManifest  = newKind(ErrFormat, "manifest contains no blobs")
	ErrSizeOverflow   = newKind(ErrFormat, "size overflow")
	ErrTruncated      = newKind(ErrFormat, "unexpected end of data")
)

// Not-found errors.
var (
	ErrIndexNotFound     = newKind(ErrNotFound, "container index not found")
	ErrContainerNotFound = newKind(ErrNotFound, "container directory not found")
	ErrManifestNotFound  = newKind(ErrNotFound, "blob manifest not found")
	ErrBlobNotFound      = newKind(ErrNotFound, "blob not found")
	ErrEntryNotFound     = newKind(ErrNotFound, "entry not found")
)

// State violations.
var (
	ErrReadOnly         = newKind(ErrStateViolation, "storage is read-only")
	ErrBlobExists       = newKind(ErrStateViolation, "blob already exists")
	ErrBlobNameRequired = newKind(ErrStateViolation, "blob name required")
	ErrNoBlobs          = newKind(ErrStateViolation, "container has no blobs")
	ErrContainerExists  = newKind(ErrStateViolation, "container directory already exists")
	ErrEntryExists      = newKind(ErrStateViolation, "entry already exists")
	ErrStorageExists    = newKind(ErrStateViolation, "container index already exists")
	ErrEntryDeleted     = newKind(ErrStateViolation, "entry is deleted")
)

type kindError struct {
	msg  string
	kind error
}

func newKind(kind error, msg string) error {
	return &kindError{msg: "connstore: " + msg, kind: kind}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
