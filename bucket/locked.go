// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package bucket

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Locked shares a Bucket between goroutines. Every operation holds a
// context-aware mutex for its whole duration, including while an async
// refresh is outstanding, so overlapping callers see one task invocation.
// Callers queued behind a slow refresh give up when their context ends.
type Locked[T any] struct {
	sem *semaphore.Weighted
	b   *Bucket[T]
}

// NewLocked creates a shared, empty Bucket driven by p.
func NewLocked[T any](p Policy, opts ...Option) *Locked[T] {
	return Lock(New[T](p, opts...))
}

// Lock wraps b. The caller must stop using b directly.
func Lock[T any](b *Bucket[T]) *Locked[T] {
	return &Locked[T]{
		sem: semaphore.NewWeighted(1),
		b:   b,
	}
}

// Policy returns the wrapped bucket's policy. Policies never change, so no
// lock is taken.
func (l *Locked[T]) Policy() Policy { return l.b.policy }

// Do runs fn with exclusive access to the wrapped bucket.
func (l *Locked[T]) Do(ctx context.Context, fn func(*Bucket[T]) error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)
	return fn(l.b)
}

// Call is Bucket.Call under the lock.
func (l *Locked[T]) Call(ctx context.Context, task Task[T]) (v T, err error) {
	err = l.Do(ctx, func(b *Bucket[T]) error {
		v, err = b.Call(task)
		return err
	})
	return v, err
}

// Reload is Bucket.Reload under the lock.
func (l *Locked[T]) Reload(ctx context.Context, task Task[T]) (v T, err error) {
	err = l.Do(ctx, func(b *Bucket[T]) error {
		v, err = b.Reload(task)
		return err
	})
	return v, err
}

// CallAsync is Bucket.CallAsync under the lock.
func (l *Locked[T]) CallAsync(ctx context.Context, task AsyncTask[T]) (v T, err error) {
	err = l.Do(ctx, func(b *Bucket[T]) error {
		v, err = b.CallAsync(ctx, task)
		return err
	})
	return v, err
}

// Refresh is Bucket.Refresh under the lock.
func (l *Locked[T]) Refresh(ctx context.Context) error {
	return l.Do(ctx, func(b *Bucket[T]) error {
		b.Refresh()
		return nil
	})
}

// Snapshot is Bucket.Snapshot under the lock.
func (l *Locked[T]) Snapshot(ctx context.Context) (s Snapshot[T], err error) {
	err = l.Do(ctx, func(b *Bucket[T]) error {
		s = b.Snapshot()
		return nil
	})
	return s, err
}
