// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/memobucket/internal/config"
)

func TestMangleArguments(t *testing.T) {
	p, err := filepath.Abs("testdata/sets.yaml")
	require.NoError(t, err)
	t.Setenv(config.EnvPath, p)
	_, err = config.Load()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "defaults set",
			in:   []string{"mb", "run", "--", "date"},
			want: []string{"mb", "run", "--policy", "counts:5", "--", "date"},
		},
		{
			name: "named set",
			in:   []string{"mb", "run", "@quick", "--key", "k", "--", "date"},
			want: []string{"mb", "run", "--policy", "pierced", "--diff", "--key", "k", "--", "date"},
		},
		{
			name: "scalar set",
			in:   []string{"mb", "inspect", "k"},
			want: []string{"mb", "inspect", "--output", "yaml", "k"},
		},
		{
			name: "@ after terminator is left alone",
			in:   []string{"mb", "run", "--", "echo", "@quick"},
			want: []string{"mb", "run", "--policy", "counts:5", "--", "echo", "@quick"},
		},
		{
			name: "missing set",
			in:   []string{"mb", "run", "@nope", "--", "date"},
			want: []string{"mb", "run", "--", "date"},
		},
		{
			name: "no sets for command",
			in:   []string{"mb", "purge"},
			want: []string{"mb", "purge"},
		},
		{
			name: "help",
			in:   []string{"mb", "run", "--policy", "x", "-h"},
			want: []string{"mb", "run", "--help"},
		},
		{
			name: "-h after terminator belongs to the command",
			in:   []string{"mb", "run", "--", "ls", "-h"},
			want: []string{"mb", "run", "--policy", "counts:5", "--", "ls", "-h"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mangleArguments(tt.in))
		})
	}
}

func TestBeforeTerminator(t *testing.T) {
	assert.Equal(t, []string{"a"}, beforeTerminator([]string{"a", "--", "b"}))
	assert.Equal(t, []string{"a", "b"}, beforeTerminator([]string{"a", "b"}))
	assert.Empty(t, beforeTerminator([]string{"--", "b"}))
}
