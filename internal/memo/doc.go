// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package memo persists a bucket per key so command output can be reused
// across separate memobucket invocations.
package memo
