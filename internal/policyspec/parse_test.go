// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package policyspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/memobucket/bucket"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want bucket.Policy
	}{
		{"bottomless", bucket.BottomLess()},
		{"  Pierced ", bucket.Pierced()},
		{"counts:5", bucket.ExpireWithinCounts(5)},
		{"seconds:30", bucket.ExpireWithinSeconds(30)},
		{"ttl:90s", bucket.ExpireWithinSeconds(90)},
		{"ttl:1h", bucket.ExpireWithinSeconds(3600)},
		{"ttl:1500ms", bucket.ExpireWithinSeconds(1)},
		{"100/10/50", bucket.NewPolicy(100, 10, 50)},
		{"budget=100,access=10,decay=50", bucket.NewPolicy(100, 10, 50)},
		{"budget=7, decay_cost=1", bucket.NewPolicy(7, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		in      string
		unknown bool
	}{
		{"", true},
		{"forever", true},
		{"counts:", false},
		{"counts:-1", false},
		{"seconds:abc", false},
		{"ttl:soon", false},
		{"ttl:-5s", false},
		{"1/2/x", false},
		{"access=1,decay=2", false},
		{"budget=1,color=2", false},
		{"budget", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			if tt.unknown {
				assert.ErrorIs(t, err, ErrUnknownPolicy)
			}
		})
	}
}
