// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/staranto/memobucket/bucket"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingTask produces "run-N" and counts invocations. Setting fail makes
// the next invocations error.
type countingTask struct {
	calls int
	fail  error
}

func (c *countingTask) task() bucket.AsyncFunc[Output] {
	return func(context.Context) (Output, error) {
		c.calls++
		if c.fail != nil {
			return Output{}, c.fail
		}
		return Output{Command: []string{"test"}, Stdout: fmt.Sprintf("run-%d", c.calls)}, nil
	}
}
