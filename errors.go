package connstore

import "github.com/meigma/connstore/internal/cstype"

// Error categories. Every other error below matches exactly one of them with
// errors.Is.
var (
	// ErrFormat is returned for data that cannot be decoded or encoded.
	ErrFormat = cstype.ErrFormat

	// ErrNotFound is returned when a file, container, entry or blob is missing.
	ErrNotFound = cstype.ErrNotFound

	// ErrStateViolation is returned when an operation is not allowed.
	ErrStateViolation = cstype.ErrStateViolation
)

// Format errors.
var (
	// ErrInvalidVersion is returned for an unsupported index or manifest version.
	ErrInvalidVersion = cstype.ErrInvalidVersion

	// ErrCorruptLength is returned for a negative or inconsistent length field.
	ErrCorruptLength = cstype.ErrCorruptLength

	// ErrStringTooLong is returned when a string exceeds its field maximum.
	ErrStringTooLong = cstype.ErrStringTooLong

	// ErrNameTooLong is returned when a blob name does not fit in 128 bytes.
	ErrNameTooLong = cstype.ErrNameTooLong

	// ErrEmptyManifest is returned when a manifest lists no blobs.
	ErrEmptyManifest = cstype.ErrEmptyManifest

	// ErrSizeOverflow is returned when a size does not fit the index layout.
	ErrSizeOverflow = cstype.ErrSizeOverflow

	// ErrTruncated is returned when a file ends in the middle of a field.
	ErrTruncated = cstype.ErrTruncated
)

// Not-found errors.
var (
	ErrIndexNotFound     = cstype.ErrIndexNotFound
	ErrContainerNotFound = cstype.ErrContainerNotFound
	ErrManifestNotFound  = cstype.ErrManifestNotFound
	ErrBlobNotFound      = cstype.ErrBlobNotFound
	ErrEntryNotFound     = cstype.ErrEntryNotFound
)

// State violations.
var (
	// ErrReadOnly is returned by mutating calls on a read-only Storage.
	ErrReadOnly = cstype.ErrReadOnly

	// ErrBlobExists is returned when adding a blob under a name in use.
	ErrBlobExists = cstype.ErrBlobExists

	// ErrBlobNameRequired is returned when a blob name is omitted but the
	// container does not hold exactly one blob.
	ErrBlobNameRequired = cstype.ErrBlobNameRequired

	// ErrNoBlobs is returned when a container has no blob to act on.
	ErrNoBlobs = cstype.ErrNoBlobs

	// ErrContainerExists is returned when a new container's directory is
	// already present.
	ErrContainerExists = cstype.ErrContainerExists

	// ErrEntryExists is returned when adding an entry under a file name in use.
	ErrEntryExists = cstype.ErrEntryExists

	// ErrStorageExists is returned by Create when an index already exists.
	ErrStorageExists = cstype.ErrStorageExists

	// ErrEntryDeleted is returned when modifying a container marked deleted.
	ErrEntryDeleted = cstype.ErrEntryDeleted
)
