// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package bucket

import "context"

// Task produces a fresh value. Run blocks until the value is ready.
type Task[T any] interface {
	Run() (T, error)
}

// TaskFunc adapts a function to Task.
type TaskFunc[T any] func() (T, error)

// Run implements Task.
func (f TaskFunc[T]) Run() (T, error) { return f() }

// Value adapts a function that cannot fail.
func Value[T any](f func() T) TaskFunc[T] {
	return func() (T, error) { return f(), nil }
}

// Result is the outcome of an AsyncTask.
type Result[T any] struct {
	Value T
	Err   error
}

// AsyncTask starts a computation and hands back a channel that receives
// exactly one Result. Implementations must not block in Start.
type AsyncTask[T any] interface {
	Start(ctx context.Context) <-chan Result[T]
}

// AsyncFunc adapts a context-aware function to AsyncTask. Each Start runs
// the function on its own goroutine.
type AsyncFunc[T any] func(ctx context.Context) (T, error)

// Start implements AsyncTask. The channel is buffered so an abandoned
// result never strands the goroutine.
func (f AsyncFunc[T]) Start(ctx context.Context) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		v, err := f(ctx)
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}

// Cloner is implemented by values that know how to deep copy themselves.
type Cloner[T any] interface {
	Clone() T
}
