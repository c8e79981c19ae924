// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package aws builds AWS SDK clients for the S3 snapshot store.
package aws
