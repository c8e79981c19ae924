// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
)

// State is the freshness of a Bucket at a given instant.
type State int

const (
	// Empty holds no value. Initial state, and the state after Refresh.
	Empty State = iota
	// Fresh holds a value within budget.
	Fresh
	// Stale holds a value whose budget is spent. The next call refreshes it.
	Stale
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option customizes a Bucket at construction.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock replaces SystemClock.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: SystemClock}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Bucket memoizes one value of type T under a Policy.
//
// A Bucket is not safe for concurrent use. At most one call may be in flight
// per Bucket; see Locked for a shared variant.
type Bucket[T any] struct {
	value  T
	cached bool
	policy Policy
	hits   uint64
	epoch  time.Time
	clock  Clock
	clone  func(T) T
}

// New creates an empty Bucket driven by p.
func New[T any](p Policy, opts ...Option) *Bucket[T] {
	o := buildOptions(opts)
	return &Bucket[T]{
		policy: p,
		epoch:  o.clock.Now(),
		clock:  o.clock,
	}
}

// CloneWith sets the function used to copy values in and out of the slot.
func (b *Bucket[T]) CloneWith(fn func(T) T) *Bucket[T] {
	b.clone = fn
	return b
}

// Policy returns the policy the bucket was built with.
func (b *Bucket[T]) Policy() Policy { return b.policy }

// Hits returns the number of accesses since the last refresh.
func (b *Bucket[T]) Hits() uint64 { return b.hits }

// Epoch returns the instant of the last refresh, or of construction.
func (b *Bucket[T]) Epoch() time.Time { return b.epoch }

// Elapsed returns the time since the last refresh.
func (b *Bucket[T]) Elapsed() time.Duration { return Elapsed(b.clock, b.epoch) }

// State reports the bucket's freshness right now without touching it.
func (b *Bucket[T]) State() State {
	if !b.cached {
		return Empty
	}
	if b.policy.IsRemaining(b.hits, b.Elapsed()) {
		return Fresh
	}
	return Stale
}

// Peek returns a copy of the cached value, fresh or not, without counting an
// access.
func (b *Bucket[T]) Peek() (T, bool) {
	if !b.cached {
		var zero T
		return zero, false
	}
	return b.copy(b.value), true
}

// Call returns the cached value when the policy allows it and otherwise
// refreshes by running task once. If task fails the bucket is left empty and
// the error is returned.
func (b *Bucket[T]) Call(task Task[T]) (T, error) {
	if v, ok := b.hit(); ok {
		return v, nil
	}

	b.Refresh()
	v, err := task.Run()
	if err != nil {
		return b.fail(err)
	}
	return b.store(v), nil
}

// Reload drops whatever is cached and calls task, so task runs exactly once.
func (b *Bucket[T]) Reload(task Task[T]) (T, error) {
	b.Refresh()
	return b.Call(task)
}

// CallAsync is Call for an AsyncTask. A hit returns immediately. A refresh
// waits for the task or for ctx; if ctx ends first the bucket is left empty
// and ctx.Err() is returned.
func (b *Bucket[T]) CallAsync(ctx context.Context, task AsyncTask[T]) (T, error) {
	if v, ok := b.hit(); ok {
		return v, nil
	}

	b.Refresh()
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	select {
	case r := <-task.Start(ctx):
		if r.Err != nil {
			return b.fail(r.Err)
		}
		return b.store(r.Value), nil
	case <-ctx.Done():
		log.WithField("policy", b.policy.String()).Debug("refresh abandoned")
		var zero T
		return zero, ctx.Err()
	}
}

// Refresh empties the bucket and restarts its epoch. It does not run a task.
func (b *Bucket[T]) Refresh() {
	var zero T
	b.value = zero
	b.cached = false
	b.hits = 0
	b.epoch = b.clock.Now()
}

func (b *Bucket[T]) hit() (T, bool) {
	if b.cached && b.policy.IsRemaining(b.hits, b.Elapsed()) {
		b.hits++
		return b.copy(b.value), true
	}
	var zero T
	return zero, false
}

// store saves v as the first access of a new epoch.
func (b *Bucket[T]) store(v T) T {
	b.value = b.copy(v)
	b.cached = true
	b.hits = 1
	log.WithFields(log.Fields{
		"policy": b.policy.String(),
		"epoch":  b.epoch.Format(time.RFC3339),
	}).Debug("refreshed")
	return v
}

func (b *Bucket[T]) fail(err error) (T, error) {
	log.WithError(err).WithField("policy", b.policy.String()).Debug("refresh failed")
	var zero T
	return zero, fmt.Errorf("refresh failed: %w", err)
}

func (b *Bucket[T]) copy(v T) T {
	if b.clone != nil {
		return b.clone(v)
	}
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}
