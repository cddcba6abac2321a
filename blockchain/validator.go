// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain

import (
	"fmt"
	"math"
	"slices"
)

// Validator checks a block against its immediate predecessor
type Validator interface {
	Validate(block *Block, previousBlock *Block) error
}

// DifficultyRule is a validator that only applies to some blocks.
// IsApplicable must depend only on block heights, and only change at the
// edges of Heights and at multiples of RetargetInterval, so that rule sets
// can be checked for overlaps at construction time.
type DifficultyRule interface {
	Validator
	IsApplicable(block *Block, previousBlock *Block) bool
	// Heights returns the range outside of which the rule never applies
	Heights() HeightRange
	// RetargetInterval returns 0 when applicability does not follow a
	// retarget interval
	RetargetInterval() uint32
}

// HeightRange is a half-open range of block heights. An Until of 0 means
// the range has no upper bound.
type HeightRange struct {
	From  uint32
	Until uint32
}

// emptyHeights contains no height
var emptyHeights = HeightRange{From: math.MaxUint32, Until: math.MaxUint32}

func (r HeightRange) Contains(height uint32) bool {
	if height < r.From {
		return false
	}
	return r.Until == 0 || height < r.Until
}

func (r HeightRange) empty() bool {
	return r.Until != 0 && r.From >= r.Until
}

// ValidatorSet requires every member to pass. Members run in the order they
// were added and the first failure is returned.
type ValidatorSet struct {
	validators []Validator
}

func NewValidatorSet(validators ...Validator) *ValidatorSet {
	return &ValidatorSet{
		validators: validators,
	}
}

func (s *ValidatorSet) Add(validator Validator) {
	s.validators = append(s.validators, validator)
}

func (s *ValidatorSet) Validate(block *Block, previousBlock *Block) error {
	for _, validator := range s.validators {
		if err := validator.Validate(block, previousBlock); err != nil {
			return err
		}
	}
	return nil
}

// ValidatorChain selects the single applicable rule for a block
type ValidatorChain struct {
	rules []DifficultyRule
}

// NewValidatorChain builds a chain of responsibility and verifies that exactly
// one rule applies at every height, within the range covered by the rules,
// where the applicability of any rule can change. An empty chain is allowed
// and accepts every block.
func NewValidatorChain(rules ...DifficultyRule) (*ValidatorChain, error) {
	c := &ValidatorChain{
		rules: rules,
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

// IsApplicable reports whether any rule in the chain applies to block
func (c *ValidatorChain) IsApplicable(block *Block, previousBlock *Block) bool {
	return c.selectRule(block, previousBlock) != nil
}

// Validate runs the first applicable rule. Blocks with no applicable rule
// are valid for this stage.
func (c *ValidatorChain) Validate(block *Block, previousBlock *Block) error {
	rule := c.selectRule(block, previousBlock)
	if rule == nil {
		return nil
	}
	return rule.Validate(block, previousBlock)
}

// Heights returns the smallest range covering the heights of every rule.
// An empty chain covers no heights.
func (c *ValidatorChain) Heights() HeightRange {
	ret := emptyHeights
	for _, rule := range c.rules {
		heights := rule.Heights()
		switch {
		case heights.empty():
			continue
		case ret.empty():
			ret = heights
			continue
		}
		ret.From = min(ret.From, heights.From)
		if ret.Until != 0 {
			if heights.Until == 0 {
				ret.Until = 0
			} else {
				ret.Until = max(ret.Until, heights.Until)
			}
		}
	}
	return ret
}

// RetargetInterval returns the greatest common divisor of the rule
// intervals, so every retarget boundary of a rule is a multiple of it
func (c *ValidatorChain) RetargetInterval() uint32 {
	var ret uint32
	for _, rule := range c.rules {
		if interval := rule.RetargetInterval(); interval > 0 {
			ret = gcd(ret, interval)
		}
	}
	return ret
}

func (c *ValidatorChain) selectRule(
	block *Block,
	previousBlock *Block,
) DifficultyRule {
	for _, rule := range c.rules {
		if rule.IsApplicable(block, previousBlock) {
			return rule
		}
	}
	return nil
}

func (c *ValidatorChain) check() error {
	if len(c.rules) == 0 {
		return nil
	}
	for _, height := range c.probeHeights() {
		block := &Block{Height: height}
		previousBlock := &Block{Height: height - 1}
		var matches int
		for _, rule := range c.rules {
			if rule.IsApplicable(block, previousBlock) {
				matches++
			}
		}
		if matches != 1 {
			return fmt.Errorf(
				"%w: %d rules apply at height %d",
				ErrMisconfiguredRuleSet,
				matches,
				height,
			)
		}
	}
	return nil
}

// probeHeights returns the heights around every range edge and retarget
// boundary of the rules that fall inside the range covered by the chain
func (c *ValidatorChain) probeHeights() []uint32 {
	covered := c.Heights()
	if covered.empty() {
		return nil
	}
	// Genesis is never validated
	start := max(covered.From, 1)
	edges := []uint32{start}
	var intervals []uint32
	for _, rule := range c.rules {
		heights := rule.Heights()
		if heights.empty() {
			continue
		}
		edges = append(edges, heights.From)
		if heights.Until > 0 {
			edges = append(edges, heights.Until)
		}
		if interval := rule.RetargetInterval(); interval > 0 {
			intervals = append(intervals, interval)
		}
	}
	var candidates []uint32
	addAround := func(height uint32) {
		for _, delta := range []int64{-1, 0, 1} {
			h := int64(height) + delta
			if h < int64(start) || h > math.MaxUint32 {
				continue
			}
			if covered.Until > 0 && h >= int64(covered.Until) {
				continue
			}
			candidates = append(candidates, uint32(h))
		}
	}
	for _, edge := range edges {
		addAround(edge)
		for _, interval := range intervals {
			next := (uint64(edge) + uint64(interval) - 1) / uint64(interval) * uint64(interval)
			for _, boundary := range []uint64{next, next + uint64(interval)} {
				if boundary <= math.MaxUint32 {
					addAround(uint32(boundary))
				}
			}
		}
	}
	slices.Sort(candidates)
	return slices.Compact(candidates)
}

func gcd(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
