// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/memobucket/internal/meta"
)

// RefreshCommandAction empties a bucket so its next run executes the
// command. The policy is kept.
func RefreshCommandAction(ctx context.Context, cmd *cli.Command) error {
	key, err := KeyFromArgs(cmd)
	if err != nil {
		return err
	}

	runner, s, err := OpenRunner(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore(s)

	if err := runner.Invalidate(ctx, key); err != nil {
		return err
	}
	log.Infof("refreshed %q", key)
	return nil
}

func RefreshCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&StoreCommandBuilder{
		Name:      "refresh",
		Usage:     "force the next run of a memo key to execute",
		UsageText: `memobucket refresh [options] -- KEY...`,
		Action:    RefreshCommandAction,
		Meta:      meta,
	}).Build()
}

// ForgetCommandAction deletes a memo key from the store.
func ForgetCommandAction(ctx context.Context, cmd *cli.Command) error {
	key, err := KeyFromArgs(cmd)
	if err != nil {
		return err
	}

	runner, s, err := OpenRunner(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore(s)

	if err := runner.Forget(ctx, key); err != nil {
		return err
	}
	log.Infof("forgot %q", key)
	return nil
}

func ForgetCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&StoreCommandBuilder{
		Name:      "forget",
		Usage:     "remove a memo key from the store",
		UsageText: `memobucket forget [options] -- KEY...`,
		Action:    ForgetCommandAction,
		Meta:      meta,
	}).Build()
}
