package connstore

import (
	"time"

	"github.com/Microsoft/go-winio/pkg/guid"

	"github.com/meigma/connstore/internal/cstype"
	"github.com/meigma/connstore/internal/index"
	"github.com/meigma/connstore/internal/naming"
	"github.com/meigma/connstore/internal/records"
)

// --- Re-exports from internal packages ---

// GUID is a 128-bit identifier stored in Windows byte order.
type GUID = guid.GUID

// FileTime is a Windows FILETIME: 100ns ticks since 1601-01-01 UTC.
type FileTime = cstype.FileTime

// MetaData is the header of containers.index.
type MetaData = index.MetaData

// Entry is the index record of one container.
type Entry = index.Entry

// EntryState is the sync state of an entry.
type EntryState = cstype.EntryState

// SyncFlags are the index-level sync flags.
type SyncFlags = cstype.SyncFlags

// BlobRecord describes one blob of a container.
type BlobRecord = records.Record

// Platform selects how ids map to file names.
type Platform = naming.Format

// EntryState constants.
const (
	StateNone     = cstype.StateNone
	StateSynched  = cstype.StateSynched
	StateModified = cstype.StateModified
	StateDeleted  = cstype.StateDeleted
	StateCreated  = cstype.StateCreated
)

// SyncFlags constants.
const (
	FlagFullyUploaded          = cstype.FlagFullyUploaded
	FlagFullyDownloaded        = cstype.FlagFullyDownloaded
	FlagHasUnresolvedConflicts = cstype.FlagHasUnresolvedConflicts
)

// Platform constants.
const (
	// PlatformWindows uses compact lowercase hex names.
	PlatformWindows = naming.Windows
	// PlatformXbox uses braced uppercase names.
	PlatformXbox = naming.Xbox
)

const (
	// IndexFileName is the name of the index file in a storage directory.
	IndexFileName = index.FileName

	// MaxVersion is the newest index version supported.
	MaxVersion = index.MaxVersion

	// DefaultBlobName is the name given to a blob added without one.
	DefaultBlobName = "blob_0"
)

// ParsePlatform parses "windows" (or "pc") and "xbox".
func ParsePlatform(s string) (Platform, error) {
	return naming.ParseFormat(s)
}

// FileTimeFromTime converts t to a FILETIME.
func FileTimeFromTime(t time.Time) FileTime {
	return cstype.FileTimeFromTime(t)
}
