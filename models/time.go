package models

import "time"

// TimeSource is the source of time information.
type TimeSource interface {
	Now() time.Time
}

// SystemTime is a TimeSource that returns the current system time.
type SystemTime struct{}

var _ TimeSource = SystemTime{}

// Now returns the current system time.
func (SystemTime) Now() time.Time {
	return time.Now()
}

// TimeSourceFunc is an adapter to allow the use of ordinary functions as
// TimeSources.
type TimeSourceFunc func() time.Time

// Now calls f().
func (f TimeSourceFunc) Now() time.Time {
	return f()
}
