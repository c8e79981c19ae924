// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/memobucket/bucket"
	"github.com/staranto/memobucket/internal/meta"
	"github.com/staranto/memobucket/internal/output"
)

// checkView is the evaluation of one policy at one point.
type checkView struct {
	Policy      bucket.Policy `json:"policy" yaml:"policy"`
	Name        string        `json:"name" yaml:"name"`
	Hits        uint64        `json:"hits" yaml:"hits"`
	Elapsed     string        `json:"elapsed" yaml:"elapsed"`
	Spent       uint64        `json:"spent" yaml:"spent"`
	Remaining   uint64        `json:"remaining" yaml:"remaining"`
	IsRemaining bool          `json:"is_remaining" yaml:"is_remaining"`
}

// CheckCommandAction evaluates --policy after --hits accesses and --elapsed
// time, without touching any store.
func CheckCommandAction(ctx context.Context, cmd *cli.Command) error {
	p, err := ResolvePolicy(cmd)
	if err != nil {
		return err
	}

	hits := cmd.Uint64("hits")
	elapsed := cmd.Duration("elapsed")

	view := checkView{
		Policy:      p,
		Name:        p.Name(),
		Hits:        hits,
		Elapsed:     elapsed.String(),
		Spent:       p.Spent(hits, elapsed),
		Remaining:   p.Remaining(hits, elapsed),
		IsRemaining: p.IsRemaining(hits, elapsed),
	}

	w := Writer(cmd)
	if format := cmd.String("output"); format != output.FormatText {
		return output.Emit(w, format, view)
	}
	output.KeyValues(w, [][2]any{
		{"policy", p.String()},
		{"hits", view.Hits},
		{"elapsed", view.Elapsed},
		{"spent", view.Spent},
		{"remaining", view.Remaining},
		{"reuse", view.IsRemaining},
	}, cmd.Bool("color"))
	return nil
}

func CheckCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	src := meta.Config.Source
	return &cli.Command{
		Name:      "check",
		Usage:     "evaluate a policy without running anything",
		UsageText: `memobucket check --policy P [--hits N] [--elapsed D]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			NewPolicyFlag("check", src, "bottomless"),
			NewPoliciesFileFlag(src),
			&cli.Uint64Flag{
				Name:  "hits",
				Usage: "accesses since the last refresh",
			},
			&cli.DurationFlag{
				Name:  "elapsed",
				Usage: "time since the last refresh",
			},
			&cli.BoolWithInverseFlag{
				Name:    "color",
				Aliases: []string{"c"},
				Usage:   "enable colored text output",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("color", altsrc.StringSourcer(src)),
				),
				Value: output.ColorDefault(),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format (text, json or yaml)",
				Value:   "text",
				Validator: func(value string) error {
					return FlagValidators(value, OutputValidator)
				},
			},
		},
		Action: CheckCommandAction,
	}
}
