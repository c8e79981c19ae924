// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/memobucket/bucket"
)

// Output is what a memoized command produced.
type Output struct {
	Command    []string  `json:"command" yaml:"command"`
	Stdout     string    `json:"stdout" yaml:"stdout"`
	ExitCode   int       `json:"exit_code" yaml:"exit_code"`
	ProducedAt time.Time `json:"produced_at" yaml:"produced_at"`
}

// Clone implements bucket.Cloner.
func (o Output) Clone() Output {
	o.Command = append([]string(nil), o.Command...)
	return o
}

// KeyFor derives the default memo key from a command line.
func KeyFor(argv []string) string {
	return strings.Join(argv, " ")
}

// CommandTask runs argv when the bucket needs a fresh value. A non-zero exit
// is a failure, so its output is never cached.
func CommandTask(clock bucket.Clock, argv []string) bucket.AsyncFunc[Output] {
	if clock == nil {
		clock = bucket.SystemClock
	}
	return func(ctx context.Context) (Output, error) {
		if len(argv) == 0 {
			return Output{}, errors.New("no command given")
		}

		var stdout, stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		log.Debugf("running %q", argv)
		err := cmd.Run()

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			return Output{}, fmt.Errorf("%s exited with code %d: %s", argv[0], exitErr.ExitCode(), msg)
		}
		if err != nil {
			return Output{}, fmt.Errorf("failed to run %s: %w", argv[0], err)
		}

		return Output{
			Command:    append([]string(nil), argv...),
			Stdout:     stdout.String(),
			ProducedAt: clock.Now().Round(0).UTC(),
		}, nil
	}
}
