package services

import "time"

// Clock returns the current time. Services take one so time windows are testable.
type Clock func() time.Time

func (c Clock) orDefault() Clock {
	if c == nil {
		return time.Now
	}
	return c
}
