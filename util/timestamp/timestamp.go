// Package timestamp provides utilities for handling timestamps
package timestamp

import (
	"os"
	"strconv"
	"time"
)

// GetTime returns the current time in UTC, honoring ONEFS_SOURCE_DATE_EPOCH if set.
// ONEFS_SOURCE_DATE_EPOCH is a Unix timestamp used for reproducible test fixtures.
// If ONEFS_SOURCE_DATE_EPOCH is not set or invalid, it returns time.Now().UTC().
func GetTime() time.Time {
	if epoch := os.Getenv("ONEFS_SOURCE_DATE_EPOCH"); epoch != "" {
		if ts, err := strconv.ParseInt(epoch, 10, 64); err == nil {
			return time.Unix(ts, 0).UTC()
		}
	}

	return time.Now().UTC()
}

// Clock supplies the current time to record-creation and record-modification
// paths. The record store and filesystem service never call time.Now()
// directly so that tests can substitute a deterministic clock.
type Clock interface {
	Now() time.Time
}

// clockFunc adapts a function to the Clock interface.
type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// SystemClock is the default Clock, backed by GetTime.
var SystemClock Clock = clockFunc(GetTime)

// Fixed returns a Clock that always reports t, useful for golden-file tests
// that need byte-stable timestamps.
func Fixed(t time.Time) Clock {
	return clockFunc(func() time.Time { return t })
}
