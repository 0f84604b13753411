package cstype

import (
	"strconv"
	"strings"
)

// EntryState is the lifecycle state of an index entry, stored as its raw
// 32-bit ordinal.
type EntryState uint32

const (
	// StateNone only appears in legacy files; it is read back as StateSynched.
	StateNone EntryState = iota
	StateSynched
	StateModified
	StateDeleted
	StateCreated
)

func (s EntryState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateSynched:
		return "synched"
	case StateModified:
		return "modified"
	case StateDeleted:
		return "deleted"
	case StateCreated:
		return "created"
	default:
		return "state(" + strconv.FormatUint(uint64(s), 10) + ")"
	}
}

// SyncFlags is the index-level synchronization bitset.
type SyncFlags uint32

const (
	FlagFullyUploaded          SyncFlags = 1 << 0
	FlagFullyDownloaded        SyncFlags = 1 << 1
	FlagHasUnresolvedConflicts SyncFlags = 1 << 4
)

// Has reports whether all bits of flag are set.
func (f SyncFlags) Has(flag SyncFlags) bool { return f&flag == flag }

func (f SyncFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	rest := f
	for _, n := range []struct {
		flag SyncFlags
		name string
	}{
		{FlagFullyUploaded, "fully-uploaded"},
		{FlagFullyDownloaded, "fully-downloaded"},
		{FlagHasUnresolvedConflicts, "unresolved-conflicts"},
	} {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
			rest &^= n.flag
		}
	}
	if rest != 0 {
		parts = append(parts, "0x"+strconv.FormatUint(uint64(rest), 16))
	}
	return strings.Join(parts, "|")
}
