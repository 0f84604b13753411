package index

import (
	"fmt"
	"time"

	"github.com/meigma/connstore/internal/cstype"
)

// EventKind identifies a lifecycle event.
type EventKind uint8

const (
	// EventModified records new content of the given size.
	EventModified EventKind = iota + 1
	// EventDeleted marks the entry for removal. Files stay on disk.
	EventDeleted
)

// Event is an input to Transition.
type Event struct {
	Kind EventKind
	Size int64
	At   time.Time
}

// Modified returns the event for a content update.
func Modified(size int64, at time.Time) Event {
	return Event{Kind: EventModified, Size: size, At: at}
}

// Deleted returns the event for a removal request.
func Deleted(at time.Time) Event {
	return Event{Kind: EventDeleted, At: at}
}

// Transition applies ev to en and returns the resulting entry. en itself is
// not modified. A deleted entry accepts no event other than another delete.
func Transition(en Entry, ev Event) (Entry, error) {
	if en.State == cstype.StateDeleted && ev.Kind != EventDeleted {
		return en, fmt.Errorf("%w: %s", cstype.ErrEntryDeleted, en.FileName)
	}
	switch ev.Kind {
	case EventModified:
		en.FileSize = ev.Size
		en.State = cstype.StateModified
	case EventDeleted:
		en.State = cstype.StateDeleted
	default:
		return en, fmt.Errorf("%w: unknown event %d", cstype.ErrStateViolation, ev.Kind)
	}
	en.LastModified = cstype.FileTimeFromTime(ev.At)
	return en, nil
}
