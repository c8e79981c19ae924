// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package policyspec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/staranto/memobucket/bucket"
)

// ErrUnknownPolicy is returned when a string is neither a known name nor a
// literal policy.
var ErrUnknownPolicy = errors.New("unknown policy")

// Parse reads a literal policy.
func Parse(s string) (bucket.Policy, error) {
	spec := strings.ToLower(strings.TrimSpace(s))

	switch {
	case spec == "":
		return bucket.Policy{}, fmt.Errorf("%w: empty", ErrUnknownPolicy)
	case spec == "bottomless":
		return bucket.BottomLess(), nil
	case spec == "pierced":
		return bucket.Pierced(), nil
	case strings.HasPrefix(spec, "counts:"):
		n, err := parseUint("counts", strings.TrimPrefix(spec, "counts:"))
		if err != nil {
			return bucket.Policy{}, err
		}
		return bucket.ExpireWithinCounts(n), nil
	case strings.HasPrefix(spec, "seconds:"):
		n, err := parseUint("seconds", strings.TrimPrefix(spec, "seconds:"))
		if err != nil {
			return bucket.Policy{}, err
		}
		return bucket.ExpireWithinSeconds(n), nil
	case strings.HasPrefix(spec, "ttl:"):
		d, err := time.ParseDuration(strings.TrimPrefix(spec, "ttl:"))
		if err != nil {
			return bucket.Policy{}, fmt.Errorf("invalid ttl: %w", err)
		}
		if d < 0 {
			return bucket.Policy{}, fmt.Errorf("invalid ttl: %s is negative", d)
		}
		return bucket.ExpireWithinSeconds(uint64(d / time.Second)), nil
	case strings.Count(spec, "/") == 2: //nolint:mnd
		return parseTriple(spec)
	case strings.Contains(spec, "="):
		return parseKeyed(spec)
	}

	return bucket.Policy{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

func parseTriple(spec string) (bucket.Policy, error) {
	parts := strings.Split(spec, "/")
	names := []string{"budget", "access", "decay"}
	var v [3]uint64
	for i, p := range parts {
		n, err := parseUint(names[i], p)
		if err != nil {
			return bucket.Policy{}, err
		}
		v[i] = n
	}
	return bucket.NewPolicy(v[0], v[1], v[2]), nil
}

func parseKeyed(spec string) (bucket.Policy, error) {
	var (
		p         bucket.Policy
		hasBudget bool
	)
	for _, kv := range strings.Split(spec, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return bucket.Policy{}, fmt.Errorf("invalid policy term %q", kv)
		}
		k = strings.TrimSpace(k)
		n, err := parseUint(k, v)
		if err != nil {
			return bucket.Policy{}, err
		}
		switch k {
		case "budget":
			p.Budget = n
			hasBudget = true
		case "access", "access_cost":
			p.AccessCost = n
		case "decay", "decay_cost":
			p.DecayCost = n
		default:
			return bucket.Policy{}, fmt.Errorf("unknown policy term %q", k)
		}
	}
	if !hasBudget {
		return bucket.Policy{}, errors.New("policy needs a budget")
	}
	return p, nil
}

func parseUint(name, s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return n, nil
}
