// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/memobucket/internal/output"
)

// NewTLDRFlag constructs the --tldr flag, hidden unless tldr is installed.
func NewTLDRFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// NewGlobalFlags returns the flags every store-backed subcommand carries.
// params[0] is the subcommand name, params[1] the config file.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	ns, src := params[0], params[1]

	flags = []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"color", altsrc.StringSourcer(src)),
				yaml.YAML("color", altsrc.StringSourcer(src)),
			),
			Value: output.ColorDefault(),
		},
		&cli.StringFlag{
			Name:  "encoding",
			Usage: "snapshot encoding in the store (json or yaml)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("MEMOBUCKET_ENCODING"),
				yaml.YAML("encoding", altsrc.StringSourcer(src)),
			),
			Value: "json",
			Validator: func(value string) error {
				return FlagValidators(value, EncodingValidator)
			},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json or yaml)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"output", altsrc.StringSourcer(src)),
				yaml.YAML("output", altsrc.StringSourcer(src)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		NewStoreFlag(ns, src),
		NewTLDRFlag(),
	}

	return
}

// NewStoreFlag constructs the --store flag. The environment wins over the
// config file, namespaced keys over global ones.
func NewStoreFlag(ns string, path string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:  "store",
		Usage: "snapshot store URL (file://, bolt://, s3://, mem://)",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("MEMOBUCKET_STORE"),
		),
		Value: "file://",
	}
	return NameSpacedValueChainFlagFromConfigFile(ns, path, flag)
}

// NewPolicyFlag constructs the --policy flag.
func NewPolicyFlag(ns string, path string, value string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    "policy",
		Aliases: []string{"p"},
		Usage:   "policy name or literal (counts:N, seconds:N, ttl:D, B/A/D, ...)",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("MEMOBUCKET_POLICY"),
		),
		Value: value,
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator)
		},
	}
	return NameSpacedValueChainFlagFromConfigFile(ns, path, flag)
}

// NewPoliciesFileFlag constructs the --policies flag naming an HCL file.
func NewPoliciesFileFlag(path string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:      "policies",
		Usage:     "HCL file with named policies",
		TakesFile: true,
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("MEMOBUCKET_POLICIES"),
			yaml.YAML("policies_file", altsrc.StringSourcer(path)),
		),
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas checks if target is on the PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
