package connstore

import (
	"log/slog"
	"time"
)

type options struct {
	platform Platform
	readOnly bool
	logger   *slog.Logger
	now      func() time.Time
}

func defaultOptions() options {
	return options{
		platform: PlatformWindows,
		now:      time.Now,
	}
}

// Option configures a Storage.
type Option func(*options)

// WithPlatform selects the file naming of container directories and blob
// files. The default is PlatformWindows.
func WithPlatform(p Platform) Option {
	return func(o *options) {
		o.platform = p
	}
}

// WithReadOnly disables every mutating operation. Close does not write a
// read-only storage.
func WithReadOnly(readOnly bool) Option {
	return func(o *options) {
		o.readOnly = readOnly
	}
}

// WithLogger sets the logger for storage operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the time source for last-modified timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
