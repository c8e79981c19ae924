// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/staranto/memobucket/bucket"
	"github.com/staranto/memobucket/internal/config"
)

// runApp builds a fresh app and runs it with args, returning what the
// subcommand wrote.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgPath, err := filepath.Abs("testdata/memobucket.yaml")
	require.NoError(t, err)
	t.Setenv(config.EnvPath, cfgPath)
	t.Setenv("NO_COLOR", "1")
	t.Setenv("MEMOBUCKET_POLICIES", "")

	full := append([]string{"memobucket"}, args...)
	ctx := context.Background()
	app, err := InitApp(ctx, full)
	require.NoError(t, err)

	var buf bytes.Buffer
	app.Writer = &buf
	app.ErrWriter = &bytes.Buffer{}

	err = app.Run(ctx, full)
	return buf.String(), err
}

// memStore names a process-wide memory store private to the test.
func memStore(t *testing.T) string {
	return "mem://" + strings.ReplaceAll(t.Name(), "/", "-")
}

// counterScript prints how many times it has been run.
func counterScript(t *testing.T) string {
	f := filepath.Join(t.TempDir(), "count")
	return fmt.Sprintf("echo x >> %s; wc -l < %s | tr -d ' '", f, f)
}

// pinClock fixes the runner clock at *now for the rest of the test.
func pinClock(t *testing.T, now *time.Time) {
	prev := clock
	clock = bucket.ClockFunc(func() time.Time { return *now })
	t.Cleanup(func() { clock = prev })
}
