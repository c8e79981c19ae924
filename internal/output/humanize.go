// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// Ago renders then relative to now, e.g. "3 minutes ago".
func Ago(then, now time.Time) string {
	if then.IsZero() {
		return "never"
	}
	return humanize.RelTime(then, now, "ago", "from now")
}

// Count renders n with thousands separators. Values past int64 render as
// "max".
func Count(n uint64) string {
	if n > math.MaxInt64 {
		return "max"
	}
	return humanize.Comma(int64(n))
}

// Size renders a byte count, e.g. "1.2 kB".
func Size(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
