// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package meta carries invocation-wide values from main into commands.
package meta
