// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/memobucket/internal/meta"
	"github.com/staranto/memobucket/internal/output"
)

// InspectCommandAction reports on a stored bucket without counting an
// access.
func InspectCommandAction(ctx context.Context, cmd *cli.Command) error {
	key, err := KeyFromArgs(cmd)
	if err != nil {
		return err
	}

	runner, s, err := OpenRunner(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore(s)

	in, err := runner.Inspect(ctx, key)
	if err != nil {
		return err
	}

	w := Writer(cmd)
	format := cmd.String("output")
	if format != output.FormatText {
		return output.Emit(w, format, in)
	}

	size := "-"
	if in.Output != nil {
		size = output.Size(len(in.Output.Stdout))
	}
	output.KeyValues(w, [][2]any{
		{"key", in.Key},
		{"policy", in.Policy.String()},
		{"state", in.State},
		{"hits", output.Count(in.Hits)},
		{"remaining", output.Count(in.Remaining)},
		{"refreshed", output.Ago(in.Epoch, in.Epoch.Add(in.Age))},
		{"epoch", in.Epoch},
		{"size", size},
	}, cmd.Bool("color"))
	return nil
}

func InspectCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&StoreCommandBuilder{
		Name:      "inspect",
		Usage:     "show the state of a memo key",
		UsageText: `memobucket inspect [options] -- KEY...`,
		Action:    InspectCommandAction,
		Meta:      meta,
	}).Build()
}
