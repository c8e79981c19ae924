// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output renders command results as text tables, JSON or YAML, and
// slices or diffs captured command output.
package output
