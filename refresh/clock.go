package refresh

import "time"

// Clock abstracts time for the scheduler. AfterFunc runs f once d has
// elapsed and returns a func that cancels the pending call and reports
// whether it was still pending.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) func() bool
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}
