// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/memobucket/internal/meta"
	"github.com/staranto/memobucket/internal/output"
)

// PurgeCommandAction removes snapshots older than --hours.
func PurgeCommandAction(ctx context.Context, cmd *cli.Command) error {
	hours := cmd.Int("hours")
	if hours < 0 {
		return errors.New("--hours must not be negative")
	}

	runner, s, err := OpenRunner(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore(s)

	n, err := runner.Purge(ctx, time.Duration(hours)*time.Hour)
	if err != nil {
		return err
	}

	w := Writer(cmd)
	if format := cmd.String("output"); format != output.FormatText {
		return output.Emit(w, format, map[string]int{"purged": n})
	}
	_, err = fmt.Fprintf(w, "purged %s entries\n", output.Count(uint64(n)))
	return err
}

func PurgeCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&StoreCommandBuilder{
		Name:      "purge",
		Usage:     "remove snapshots not written for a while",
		UsageText: `memobucket purge [options]`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "hours",
				Usage: "remove snapshots last written more than this many hours ago",
				Value: 24 * 7, //nolint:mnd
				Sources: cli.NewValueSourceChain(
					yaml.YAML("purge.hours", altsrc.StringSourcer(meta.Config.Source)),
				),
			},
		},
		Action: PurgeCommandAction,
		Meta:   meta,
	}).Build()
}
