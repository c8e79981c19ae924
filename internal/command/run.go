// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/memobucket/internal/memo"
	"github.com/staranto/memobucket/internal/meta"
	"github.com/staranto/memobucket/internal/output"
)

// runView is what run emits for --output json|yaml.
type runView struct {
	memo.Outcome `yaml:",inline"`
	Result       string `json:"result,omitempty" yaml:"result,omitempty"`
	Diff         string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// RunCommandAction runs the command after "--" through the bucket stored
// under --key, reusing the previous output while the policy allows it.
func RunCommandAction(ctx context.Context, cmd *cli.Command) error {
	argv := cmd.Args().Slice()
	if len(argv) == 0 {
		return errors.New("no command given, use: memobucket run [options] -- CMD [ARGS...]")
	}

	key := cmd.String("key")
	if key == "" {
		key = memo.KeyFor(argv)
	}

	p, err := ResolvePolicy(cmd)
	if err != nil {
		return err
	}
	log.Debugf("key=%q policy=%s", key, p)

	runner, s, err := OpenRunner(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore(s)

	if timeout := cmd.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var opts []memo.RunOption
	if cmd.Bool("reload") {
		opts = append(opts, memo.ForceRefresh())
	}

	o, err := runner.Run(ctx, key, p, memo.CommandTask(nil, argv), opts...)
	if err != nil {
		return err
	}

	view := runView{Outcome: o}
	if q := cmd.String("query"); q != "" {
		if view.Result, err = output.Query(o.Output.Stdout, q); err != nil {
			return err
		}
	}

	color := cmd.Bool("color")
	if cmd.Bool("diff") && o.Previous != nil {
		view.Diff, _, err = output.Diff(o.Previous.Stdout, o.Output.Stdout, color && cmd.String("output") == output.FormatText)
		if err != nil {
			return err
		}
	}

	w := Writer(cmd)
	switch format := cmd.String("output"); format {
	case output.FormatText:
		return writeRunText(w, cmd, view)
	default:
		return output.Emit(w, format, view)
	}
}

func writeRunText(w io.Writer, cmd *cli.Command, view runView) error {
	if cmd.Bool("diff") {
		_, err := fmt.Fprint(w, view.Diff)
		return err
	}
	if cmd.String("query") != "" {
		_, err := fmt.Fprintln(w, view.Result)
		return err
	}
	_, err := fmt.Fprint(w, view.Output.Stdout)
	return err
}

// RunCommandBuilder constructs the cli.Command definition for the "run"
// command.
func RunCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	src := meta.Config.Source
	return (&StoreCommandBuilder{
		Name:      "run",
		Usage:     "run a command, reusing its last output while the policy allows",
		UsageText: `memobucket run [options] -- CMD [ARGS...]`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "key",
				Aliases: []string{"k"},
				Usage:   "memo key (default: the command line)",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			NewPolicyFlag("run", src, "seconds:60"),
			NewPoliciesFileFlag(src),
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "gjson path applied to JSON output",
			},
			&cli.BoolFlag{
				Name:  "diff",
				Usage: "show what changed since the previous output",
			},
			&cli.BoolFlag{
				Name:    "reload",
				Aliases: []string{"r"},
				Usage:   "ignore the cached output and run the command",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "give up on the command after this long",
			},
		},
		Action: RunCommandAction,
		Meta:   meta,
	}).Build()
}
