// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package policyspec

import (
	"fmt"
	"os"

	"github.com/apex/log"

	"github.com/staranto/memobucket/bucket"
	"github.com/staranto/memobucket/internal/config"
)

// Resolver maps a policy name or literal to a Policy. Lookup order: HCL
// policies, then the Lookup func, then Parse.
type Resolver struct {
	Named  map[string]bucket.Policy
	Lookup func(name string) (string, bool)
}

// NewResolver loads the HCL file at hclPath (falling back to
// MEMOBUCKET_POLICIES; neither is required) and looks up
// "policies.<name>" in the config file.
func NewResolver(hclPath string) (*Resolver, error) {
	if hclPath == "" {
		hclPath = os.Getenv(EnvPolicies)
	}

	r := &Resolver{Lookup: configLookup}
	if hclPath != "" {
		named, err := LoadHCL(hclPath)
		if err != nil {
			return nil, err
		}
		log.Debugf("loaded %d policies from %s", len(named), hclPath)
		r.Named = named
	}
	return r, nil
}

// configLookup reads the policies table as a whole so that names holding
// dots still resolve.
func configLookup(name string) (string, bool) {
	policies, err := config.GetStringMap("policies")
	if err != nil {
		return "", false
	}
	s, ok := policies[name].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Resolve returns the policy for spec.
func (r *Resolver) Resolve(spec string) (bucket.Policy, error) {
	if p, ok := r.Named[spec]; ok {
		return p, nil
	}
	if r.Lookup != nil {
		if s, ok := r.Lookup(spec); ok {
			p, err := Parse(s)
			if err != nil {
				return bucket.Policy{}, fmt.Errorf("config policy %q: %w", spec, err)
			}
			return p, nil
		}
	}
	return Parse(spec)
}
