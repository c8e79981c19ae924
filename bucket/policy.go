// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package bucket

import (
	"fmt"
	"math"
	"math/bits"
	"time"
)

// Policy is an immutable cost budget. A cached value stays usable while
// AccessCost*hits + DecayCost*seconds is strictly below Budget.
type Policy struct {
	Budget     uint64 `json:"budget" yaml:"budget"`
	AccessCost uint64 `json:"access_cost" yaml:"access_cost"`
	DecayCost  uint64 `json:"decay_cost" yaml:"decay_cost"`
}

// NewPolicy builds a Policy from raw parameters. Any combination is legal,
// including a zero budget or zero costs.
func NewPolicy(budget, accessCost, decayCost uint64) Policy {
	return Policy{
		Budget:     budget,
		AccessCost: accessCost,
		DecayCost:  decayCost,
	}
}

// BottomLess never expires.
func BottomLess() Policy {
	return NewPolicy(1, 0, 0)
}

// Pierced always expires, which turns caching off.
func Pierced() Policy {
	return NewPolicy(0, 1, 1)
}

// ExpireWithinCounts stays remaining while hits < n.
func ExpireWithinCounts(n uint64) Policy {
	return NewPolicy(n, 1, 0)
}

// ExpireWithinSeconds stays remaining while fewer than s whole seconds have
// elapsed.
func ExpireWithinSeconds(s uint64) Policy {
	return NewPolicy(s, 0, 1)
}

// Spent returns the cost accumulated by hits accesses and elapsed time.
// Overflow saturates at math.MaxUint64 so it always reads as exhausted.
func (p Policy) Spent(hits uint64, elapsed time.Duration) uint64 {
	pour := mulSat(p.AccessCost, hits)
	evaporation := mulSat(p.DecayCost, wholeSeconds(elapsed))
	return addSat(pour, evaporation)
}

// IsRemaining reports whether a value served hits times and computed elapsed
// ago is still within budget. A value exactly at budget is expired.
func (p Policy) IsRemaining(hits uint64, elapsed time.Duration) bool {
	return p.Spent(hits, elapsed) < p.Budget
}

// Remaining returns what is left of the budget, or 0 when exhausted.
func (p Policy) Remaining(hits uint64, elapsed time.Duration) uint64 {
	spent := p.Spent(hits, elapsed)
	if spent >= p.Budget {
		return 0
	}
	return p.Budget - spent
}

// Name returns the preset name when p matches one, or "custom".
func (p Policy) Name() string {
	switch {
	case p == BottomLess():
		return "bottomless"
	case p == Pierced():
		return "pierced"
	case p.AccessCost == 1 && p.DecayCost == 0:
		return "counts"
	case p.AccessCost == 0 && p.DecayCost == 1:
		return "seconds"
	default:
		return "custom"
	}
}

func (p Policy) String() string {
	return fmt.Sprintf("%s(budget=%d access=%d decay=%d)", p.Name(), p.Budget, p.AccessCost, p.DecayCost)
}

// wholeSeconds truncates d to whole seconds. Negative durations count as 0.
func wholeSeconds(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d / time.Second)
}

func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

func addSat(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}
