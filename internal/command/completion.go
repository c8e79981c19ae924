// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/memobucket/internal/meta"
)

const bashCompletionScript = `# bash completion for memobucket
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_memobucket()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "run inspect refresh forget purge check completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--color -c --encoding --output -o --store --tldr"

    case "$cmd" in
        run)
            local opts="$common --key -k --policy -p --policies --query -q --diff --reload -r --timeout"
            ;;
        inspect|refresh|forget)
            local opts="$common"
            ;;
        purge)
            local opts="$common --hours"
            ;;
        check)
            local opts="--policy -p --policies --hits --elapsed --color -c --output -o"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
            return 0
            ;;
        --encoding)
            COMPREPLY=( $(compgen -W "json yaml" -- "$cur") )
            return 0
            ;;
        --policies)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    # After "--" on run, complete commands.
    COMPREPLY=( $(compgen -c -- "$cur") )
    return 0
}

complete -F _memobucket memobucket
`

const zshCompletionScript = `#compdef memobucket

_memobucket() {
  local -a cmds
  cmds=(
    'run:run a command, reusing its last output while the policy allows'
    'inspect:show the state of a memo key'
    'refresh:force the next run of a memo key to execute'
    'forget:remove a memo key from the store'
    'purge:remove snapshots not written for a while'
    'check:evaluate a policy without running anything'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '--encoding[snapshot encoding]:encoding:(json yaml)'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)'
  '--store[snapshot store URL]:url'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'memobucket commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    run)
      _arguments -C \
        $common \
        '(-k --key)'{-k,--key}'[memo key]:key' \
        '(-p --policy)'{-p,--policy}'[policy]:policy' \
        '--policies[HCL policy file]:file:_files' \
        '(-q --query)'{-q,--query}'[gjson path]:path' \
        '--diff[show changes since previous output]' \
        '(-r --reload)'{-r,--reload}'[ignore cached output]' \
        '--timeout[command timeout]:duration' \
        '*::command:_normal'
      ;;
    inspect|refresh|forget)
      _arguments -C $common '*:key'
      ;;
    purge)
      _arguments -C $common '--hours[age in hours]:hours'
      ;;
    check)
      _arguments -C \
        '(-p --policy)'{-p,--policy}'[policy]:policy' \
        '--policies[HCL policy file]:file:_files' \
        '--hits[accesses]:hits' \
        '--elapsed[time since refresh]:duration' \
        '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _memobucket memobucket
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := Writer(cmd)
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: memobucket completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "memobucket completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
