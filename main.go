// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/memobucket/internal/command"
	"github.com/staranto/memobucket/internal/config"
	mylog "github.com/staranto/memobucket/internal/log"
	"github.com/staranto/memobucket/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range beforeTerminator(args) {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments expands an argument set from the config file. "@name"
// anywhere before "--" selects <subcommand>.<name>; without one the
// <subcommand>.defaults set is used if it exists. Set entries are inserted
// right after the subcommand so explicit flags still win.
func mangleArguments(args []string) []string {
	// We know the first two args are going to be the executable and command.
	preamble := make([]string, 2, len(args)+4)
	copy(preamble, args[:2])

	rest := append([]string(nil), args[2:]...)

	// Short-circuit for --help/-h.
	for _, a := range beforeTerminator(rest) {
		if a == "--help" || a == "-h" {
			return append(preamble, "--help")
		}
	}

	set, explicit := "defaults", false
	for i, a := range beforeTerminator(rest) {
		if strings.HasPrefix(a, "@") {
			set, explicit = a[1:], true
			rest = append(rest[:i], rest[i+1:]...)
			break
		}
	}

	var expanded []string
	setArgs, err := config.GetStringSlice(args[1] + "." + set)
	if err != nil && explicit {
		log.Warnf("argument set %q for %s not found", set, args[1])
	}
	for _, arg := range setArgs {
		expanded = append(expanded, strings.Fields(arg)...)
	}

	log.Debugf("set=%s, expanded=%v, rest=%v", set, expanded, rest)
	return append(append(preamble, expanded...), rest...)
}

// beforeTerminator returns args up to, not including, "--".
func beforeTerminator(args []string) []string {
	for i, a := range args {
		if a == "--" {
			return args[:i]
		}
	}
	return args
}
