// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package bucket is a single-slot memoizing cache. A Bucket holds one
// computed value and, on every call, asks its Policy whether the value is
// still within budget. The budget is spent by accesses (AccessCost per hit)
// and by time (DecayCost per whole second since the last refresh). Once the
// budget is spent the value is dropped and the caller's task runs again.
//
// A Bucket has a single owner. Wrap it in a Locked when it must be shared
// between goroutines.
//
//	b := bucket.New[string](bucket.ExpireWithinSeconds(30))
//	v, err := b.Call(bucket.TaskFunc[string](fetch))
package bucket
