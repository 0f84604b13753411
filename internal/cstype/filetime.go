package cstype

import "time"

// FileTime is a Windows FILETIME: 100ns ticks since 1601-01-01 UTC.
//
// The raw tick count is kept so values outside the range of time.Duration
// (including the zero FILETIME) survive a decode/encode cycle unchanged.
type FileTime int64

const (
	ticksPerSecond = 10_000_000
	// seconds between 1601-01-01 and 1970-01-01
	epochDelta = 11_644_473_600
)

// FileTimeFromTime converts t to FILETIME ticks, truncating to 100ns.
func FileTimeFromTime(t time.Time) FileTime {
	secs := t.Unix() + epochDelta
	return FileTime(secs*ticksPerSecond + int64(t.Nanosecond()/100))
}

// Time returns ft as a UTC time.
func (ft FileTime) Time() time.Time {
	secs := int64(ft) / ticksPerSecond
	rem := int64(ft) % ticksPerSecond
	if rem < 0 {
		secs--
		rem += ticksPerSecond
	}
	return time.Unix(secs-epochDelta, rem*100).UTC()
}

// IsZero reports whether ft is the zero FILETIME.
func (ft FileTime) IsZero() bool { return ft == 0 }

func (ft FileTime) String() string {
	return ft.Time().Format(time.RFC3339Nano)
}
