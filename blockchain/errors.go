// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain

import "errors"

var (
	// ErrInvalidPoW is returned when a header hash exceeds its target or the
	// target is not positive
	ErrInvalidPoW = errors.New("invalid proof-of-work")
	// ErrInvalidDifficultyBits is returned when the header bits do not match
	// the bits required by the applicable difficulty rule
	ErrInvalidDifficultyBits = errors.New("invalid difficulty bits")
	// ErrWrongChainFork is returned when the block at a pinned fork height does
	// not have the expected hash
	ErrWrongChainFork = errors.New("wrong chain fork")
	// ErrInsufficientAncestry is returned when the header store does not hold
	// enough history to validate a block. Callers may defer validation.
	ErrInsufficientAncestry = errors.New("insufficient ancestry")
	// ErrMisconfiguredRuleSet is returned when a difficulty rule chain does not
	// select exactly one rule for some height
	ErrMisconfiguredRuleSet = errors.New("misconfigured difficulty rule set")
)
