// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain

import (
	"math/big"
)

// EDATrigger selects how the emergency adjustment measures a slowdown
type EDATrigger int

const (
	// EDATriggerBlockGap relaxes when more than 12h passed between the
	// previous block and its parent
	EDATriggerBlockGap EDATrigger = iota
	// EDATriggerMedianTimePast relaxes when the median-time-past advanced by
	// at least 12h over the last 6 blocks
	EDATriggerMedianTimePast
)

const (
	edaThreshold        = 12 * 60 * 60
	edaMedianTimeBlocks = 6
)

// EDAParams configures the emergency difficulty adjustment
type EDAParams struct {
	HeightInterval uint32
	MaxTargetBits  uint32
	Heights        HeightRange
	Trigger        EDATrigger
}

// EDAValidator implements the emergency difficulty adjustment, which lowers
// the difficulty by 20% (raises the target by 25%) when blocks are too slow
// and otherwise keeps the bits unchanged. Retarget heights are left to the
// legacy rule.
type EDAValidator struct {
	chain     *ChainWindow
	params    EDAParams
	maxTarget *big.Int
}

func NewEDAValidator(chain *ChainWindow, params EDAParams) *EDAValidator {
	return &EDAValidator{
		chain:     chain,
		params:    params,
		maxTarget: CompactToTarget(params.MaxTargetBits),
	}
}

func (v *EDAValidator) IsApplicable(block *Block, _ *Block) bool {
	return v.params.Heights.Contains(block.Height) &&
		block.Height%v.params.HeightInterval != 0
}

func (v *EDAValidator) Heights() HeightRange {
	return v.params.Heights
}

func (v *EDAValidator) RetargetInterval() uint32 {
	return v.params.HeightInterval
}

func (v *EDAValidator) triggered(previousBlock *Block) (bool, error) {
	switch v.params.Trigger {
	case EDATriggerMedianTimePast:
		cursor, err := v.chain.Previous(previousBlock, edaMedianTimeBlocks)
		if err != nil {
			return false, err
		}
		mtpPrevious, err := v.chain.MedianTimePast(previousBlock)
		if err != nil {
			return false, err
		}
		mtpCursor, err := v.chain.MedianTimePast(cursor)
		if err != nil {
			return false, err
		}
		return int64(mtpPrevious)-int64(mtpCursor) >= edaThreshold, nil
	default:
		parent, err := v.chain.Previous(previousBlock, 1)
		if err != nil {
			return false, err
		}
		gap := int64(previousBlock.Header.Timestamp) - int64(parent.Header.Timestamp)
		return gap > edaThreshold, nil
	}
}

func (v *EDAValidator) RequiredBits(_ *Block, previousBlock *Block) (uint32, error) {
	// The target cannot be relaxed any further
	if previousBlock.Header.Bits == v.params.MaxTargetBits {
		return v.params.MaxTargetBits, nil
	}
	triggered, err := v.triggered(previousBlock)
	if err != nil {
		return 0, err
	}
	if !triggered {
		return previousBlock.Header.Bits, nil
	}
	// target + target/4, truncated
	target := CompactToTarget(previousBlock.Header.Bits)
	target.Add(target, new(big.Int).Rsh(target, 2))
	if target.Cmp(v.maxTarget) > 0 {
		target.Set(v.maxTarget)
	}
	return TargetToCompact(target), nil
}

func (v *EDAValidator) Validate(block *Block, previousBlock *Block) error {
	expectedBits, err := v.RequiredBits(block, previousBlock)
	if err != nil {
		return err
	}
	return checkBits(block, expectedBits)
}
