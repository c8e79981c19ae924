// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

// Package config loads memobucket.yaml and offers dotted-key lookups with
// per-subcommand namespaces.
package config
