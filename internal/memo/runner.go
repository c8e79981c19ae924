// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"

	"github.com/staranto/memobucket/bucket"
	"github.com/staranto/memobucket/internal/store"
)

// Runner loads, drives and saves one bucket per key.
type Runner struct {
	store  store.Store
	format bucket.Format
	clock  bucket.Clock
}

type RunnerOption func(*Runner)

// WithFormat selects the snapshot encoding. Defaults to JSON.
func WithFormat(f bucket.Format) RunnerOption {
	return func(r *Runner) { r.format = f }
}

// WithClock replaces the system clock.
func WithClock(c bucket.Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

func NewRunner(s store.Store, opts ...RunnerOption) *Runner {
	r := &Runner{store: s, format: bucket.FormatJSON, clock: bucket.SystemClock}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Outcome describes a single Run.
type Outcome struct {
	Key       string        `json:"key" yaml:"key"`
	Output    Output        `json:"output" yaml:"output"`
	Refreshed bool          `json:"refreshed" yaml:"refreshed"`
	Previous  *Output       `json:"previous,omitempty" yaml:"previous,omitempty"`
	Hits      uint64        `json:"hits" yaml:"hits"`
	State     string        `json:"state" yaml:"state"`
	Policy    bucket.Policy `json:"policy" yaml:"policy"`
}

// Inspection is a read-only view of a stored bucket.
type Inspection struct {
	Key       string        `json:"key" yaml:"key"`
	Policy    bucket.Policy `json:"policy" yaml:"policy"`
	State     string        `json:"state" yaml:"state"`
	Hits      uint64        `json:"hits" yaml:"hits"`
	Epoch     time.Time     `json:"epoch" yaml:"epoch"`
	Age       time.Duration `json:"age" yaml:"age"`
	Remaining uint64        `json:"remaining" yaml:"remaining"`
	Output    *Output       `json:"output,omitempty" yaml:"output,omitempty"`
}

// RunOption adjusts a single Run.
type RunOption func(*runOptions)

type runOptions struct {
	reload bool
}

// ForceRefresh empties the bucket before the call so the task runs even when
// budget remains. The value it replaces is still reported as Previous.
func ForceRefresh() RunOption {
	return func(o *runOptions) { o.reload = true }
}

// startFunc lets Run see whether the bucket asked for a fresh value.
type startFunc func(ctx context.Context) <-chan bucket.Result[Output]

func (f startFunc) Start(ctx context.Context) <-chan bucket.Result[Output] { return f(ctx) }

// Run serves key through a bucket governed by p, running task when the
// bucket needs a fresh value. A stored bucket whose policy differs from p
// keeps its value and adopts p.
func (r *Runner) Run(ctx context.Context, key string, p bucket.Policy, task bucket.AsyncTask[Output], opts ...RunOption) (Outcome, error) {
	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}

	b, found, err := r.load(ctx, key)
	if err != nil {
		return Outcome{}, err
	}

	var previous *Output
	if found {
		if b.Policy() != p {
			log.Debugf("policy for %q changed from %s to %s", key, b.Policy(), p)
			b = bucket.Restore(r.withPolicy(b, p), bucket.WithClock(r.clock))
		}
		if v, ok := b.Peek(); ok {
			previous = &v
		}
	} else {
		b = bucket.New[Output](p, bucket.WithClock(r.clock))
	}
	if ro.reload {
		b.Refresh()
	}

	refreshed := false
	wrapped := startFunc(func(ctx context.Context) <-chan bucket.Result[Output] {
		refreshed = true
		return task.Start(ctx)
	})

	out, callErr := b.CallAsync(ctx, wrapped)

	// Persist even when the call failed so the Empty state sticks.
	if err := r.save(context.WithoutCancel(ctx), key, b); err != nil {
		if callErr != nil {
			return Outcome{}, errors.Join(callErr, err)
		}
		return Outcome{}, err
	}
	if callErr != nil {
		return Outcome{}, callErr
	}

	o := Outcome{
		Key:       key,
		Output:    out,
		Refreshed: refreshed,
		Hits:      b.Hits(),
		State:     b.State().String(),
		Policy:    p,
	}
	if refreshed {
		o.Previous = previous
	}
	return o, nil
}

// Inspect reports on key without counting an access.
func (r *Runner) Inspect(ctx context.Context, key string) (Inspection, error) {
	b, found, err := r.load(ctx, key)
	if err != nil {
		return Inspection{}, err
	}
	if !found {
		return Inspection{}, fmt.Errorf("%q: %w", key, store.ErrNotFound)
	}

	in := Inspection{
		Key:       key,
		Policy:    b.Policy(),
		State:     b.State().String(),
		Hits:      b.Hits(),
		Epoch:     b.Epoch(),
		Age:       b.Elapsed(),
		Remaining: b.Policy().Remaining(b.Hits(), b.Elapsed()),
	}
	if v, ok := b.Peek(); ok {
		in.Output = &v
	}
	return in, nil
}

// Invalidate empties the stored bucket so the next Run refreshes. The
// policy is kept.
func (r *Runner) Invalidate(ctx context.Context, key string) error {
	b, found, err := r.load(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%q: %w", key, store.ErrNotFound)
	}
	b.Refresh()
	return r.save(ctx, key, b)
}

// Forget removes key from the store.
func (r *Runner) Forget(ctx context.Context, key string) error {
	return r.store.Delete(ctx, key)
}

// Purge drops entries written more than age ago.
func (r *Runner) Purge(ctx context.Context, age time.Duration) (int, error) {
	return r.store.Purge(ctx, r.clock.Now().Add(-age))
}

func (r *Runner) load(ctx context.Context, key string) (*bucket.Bucket[Output], bool, error) {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load %q: %w", key, err)
	}

	snap, err := bucket.DecodeSnapshot[Output](r.format, data)
	if err != nil {
		// A snapshot we cannot read is as good as none.
		log.WithError(err).Warnf("discarding unreadable snapshot for %q", key)
		return nil, false, nil
	}
	return bucket.Restore(snap, bucket.WithClock(r.clock)), true, nil
}

func (r *Runner) save(ctx context.Context, key string, b *bucket.Bucket[Output]) error {
	data, err := bucket.EncodeSnapshot(r.format, b.Snapshot())
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %q: %w", key, err)
	}
	return nil
}

func (r *Runner) withPolicy(b *bucket.Bucket[Output], p bucket.Policy) bucket.Snapshot[Output] {
	s := b.Snapshot()
	s.Policy = p
	return s
}
