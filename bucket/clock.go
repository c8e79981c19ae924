// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package bucket

import "time"

// Clock supplies the current instant. Tests inject their own.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads time.Now.
var SystemClock Clock = ClockFunc(time.Now)

// Elapsed returns the time since epoch on c. A clock that went backwards
// yields 0, never a negative duration.
func Elapsed(c Clock, epoch time.Time) time.Duration {
	d := c.Now().Sub(epoch)
	if d < 0 {
		return 0
	}
	return d
}
