// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// ForkPoint is a block that must be part of the chain after a hard fork
type ForkPoint struct {
	Height uint32
	Hash   chainhash.Hash
}

// ForkValidator restricts a difficulty rule to the blocks after a fork point
// and rejects chains that do not contain the expected block at that height
type ForkValidator struct {
	rule DifficultyRule
	fork ForkPoint
}

func NewForkValidator(rule DifficultyRule, fork ForkPoint) *ForkValidator {
	return &ForkValidator{
		rule: rule,
		fork: fork,
	}
}

func (v *ForkValidator) IsApplicable(block *Block, _ *Block) bool {
	return block.Height > v.fork.Height
}

func (v *ForkValidator) Heights() HeightRange {
	return HeightRange{From: v.fork.Height + 1}
}

func (v *ForkValidator) RetargetInterval() uint32 {
	return v.rule.RetargetInterval()
}

// Validate checks the fork block when the chain first crosses the fork
// height, then delegates to the wrapped rule
func (v *ForkValidator) Validate(block *Block, previousBlock *Block) error {
	if previousBlock.Height == v.fork.Height {
		if previousBlock.Hash() != v.fork.Hash {
			return fmt.Errorf(
				"%w: block at height %d is %s, expected %s",
				ErrWrongChainFork,
				v.fork.Height,
				previousBlock.Hash(),
				v.fork.Hash,
			)
		}
	}
	return v.rule.Validate(block, previousBlock)
}
