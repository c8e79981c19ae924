// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package policyspec

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/staranto/memobucket/bucket"
)

// EnvPolicies points at an HCL policy file.
const EnvPolicies = "MEMOBUCKET_POLICIES"

type policyFile struct {
	Policies []policyBlock `hcl:"policy,block"`
}

type policyBlock struct {
	Name       string  `hcl:"name,label"`
	Preset     *string `hcl:"preset,optional"`
	Budget     *uint64 `hcl:"budget,optional"`
	AccessCost *uint64 `hcl:"access_cost,optional"`
	DecayCost  *uint64 `hcl:"decay_cost,optional"`
}

// evalContext exposes time units in seconds so budgets read naturally.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"minute": cty.NumberIntVal(60),    //nolint:mnd
			"hour":   cty.NumberIntVal(3600),  //nolint:mnd
			"day":    cty.NumberIntVal(86400), //nolint:mnd
		},
	}
}

// LoadHCL reads named policies from the file at path.
func LoadHCL(path string) (map[string]bucket.Policy, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return ParseHCL(src, path)
}

// ParseHCL decodes policy blocks from src. filename is only used in
// diagnostics.
func ParseHCL(src []byte, filename string) (map[string]bucket.Policy, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	var pf policyFile
	if diags := gohcl.DecodeBody(f.Body, evalContext(), &pf); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, diags)
	}

	out := make(map[string]bucket.Policy, len(pf.Policies))
	for _, blk := range pf.Policies {
		if _, dup := out[blk.Name]; dup {
			return nil, fmt.Errorf("policy %q defined twice in %s", blk.Name, filename)
		}
		p, err := blk.policy()
		if err != nil {
			return nil, fmt.Errorf("policy %q: %w", blk.Name, err)
		}
		out[blk.Name] = p
	}
	return out, nil
}

func (b policyBlock) policy() (bucket.Policy, error) {
	explicit := b.Budget != nil || b.AccessCost != nil || b.DecayCost != nil
	if b.Preset != nil {
		if explicit {
			return bucket.Policy{}, errors.New("preset cannot be combined with budget or costs")
		}
		return Parse(*b.Preset)
	}
	if b.Budget == nil {
		return bucket.Policy{}, errors.New("budget or preset is required")
	}
	p := bucket.Policy{Budget: *b.Budget}
	if b.AccessCost != nil {
		p.AccessCost = *b.AccessCost
	}
	if b.DecayCost != nil {
		p.DecayCost = *b.DecayCost
	}
	return p, nil
}
