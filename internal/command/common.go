// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/memobucket/bucket"
	"github.com/staranto/memobucket/internal/memo"
	"github.com/staranto/memobucket/internal/meta"
	"github.com/staranto/memobucket/internal/policyspec"
	"github.com/staranto/memobucket/internal/store"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr memobucket <subcmd>` and returns true so the caller can exit
// early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "memobucket", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// Writer returns where command output goes.
func Writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// StoreCommandBuilder constructs a cli.Command for subcommands that work on
// the snapshot store, using a consistent pattern. The builder wires
// metadata, adds global flags, and sets up validators.
type StoreCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (scb *StoreCommandBuilder) Build() *cli.Command {
	name := scb.Name
	action := scb.Action
	return &cli.Command{
		Name:      scb.Name,
		Usage:     scb.Usage,
		UsageText: scb.UsageText,
		Metadata: map[string]any{
			"meta": scb.Meta,
		},
		Flags: append(scb.Flags, NewGlobalFlags(scb.Name, scb.Meta.Config.Source)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if ShortCircuitTLDR(ctx, c, name) {
				return nil
			}
			m := GetMeta(c)
			if len(m.Args) > 1 {
				log.Debugf("Executing action for %v", m.Args[1:])
			}
			return action(ctx, c)
		},
	}
}

// clock drives every runner the commands open. Tests pin it.
var clock bucket.Clock = bucket.SystemClock

// OpenRunner opens the --store and wraps it in a memo.Runner. The caller
// closes the returned store. With caching disabled through the environment,
// file stores are swapped for a throwaway memory store.
func OpenRunner(ctx context.Context, cmd *cli.Command) (*memo.Runner, store.Store, error) {
	url := cmd.String("store")

	var (
		s   store.Store
		err error
	)
	if !store.Enabled() && (url == "" || strings.HasPrefix(url, "file:")) {
		log.Debug("cache disabled, using a throwaway memory store")
		s = store.NewMemoryStore(nil)
	} else {
		s, err = store.Open(ctx, url)
		if err != nil {
			return nil, nil, err
		}
	}

	return memo.NewRunner(s,
		memo.WithFormat(bucket.Format(cmd.String("encoding"))),
		memo.WithClock(clock),
	), s, nil
}

// ResolvePolicy resolves --policy against --policies and the config file.
func ResolvePolicy(cmd *cli.Command) (bucket.Policy, error) {
	r, err := policyspec.NewResolver(cmd.String("policies"))
	if err != nil {
		return bucket.Policy{}, err
	}
	return r.Resolve(cmd.String("policy"))
}

// KeyFromArgs joins positional args into a memo key.
func KeyFromArgs(cmd *cli.Command) (string, error) {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return "", errors.New("a key is required")
	}
	return memo.KeyFor(args), nil
}

func closeStore(s store.Store) {
	if err := s.Close(); err != nil {
		log.WithError(err).Warn("failed to close store")
	}
}
