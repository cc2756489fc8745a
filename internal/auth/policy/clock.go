package policy

import "time"

// Clock supplies the current time to the issuance services. Injecting it
// keeps expiry arithmetic testable without sleeping.
type Clock interface {
	Now() time.Time
}

// UTCClock is the production clock. All timestamps the core persists are
// UTC, so the reference time is too.
type UTCClock struct{}

func (UTCClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always reports the same instant. Test helper.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
