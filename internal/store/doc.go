// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package store persists encoded bucket snapshots between memobucket runs.
// Backends are selected by URL: file://, bolt://, s3:// and mem://.
package store
