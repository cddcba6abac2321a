// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain

import (
	"fmt"
	"math/big"
)

// LegacyRetargetParams configures the fixed-interval retarget
type LegacyRetargetParams struct {
	HeightInterval uint32
	TargetSpacing  uint32
	MaxTargetBits  uint32
	Heights        HeightRange
	// FullIntervalLookback measures the timespan over a full interval of
	// blocks for every retarget but the first (Litecoin)
	FullIntervalLookback bool
	// OverflowShift drops the lowest target bit around the multiplication
	// when the target is as wide as the max target (Litecoin)
	OverflowShift bool
}

// LegacyRetargetValidator implements the classic retarget performed once
// every HeightInterval blocks
type LegacyRetargetValidator struct {
	chain          *ChainWindow
	params         LegacyRetargetParams
	targetTimespan int64
	maxTarget      *big.Int
}

func NewLegacyRetargetValidator(
	chain *ChainWindow,
	params LegacyRetargetParams,
) *LegacyRetargetValidator {
	return &LegacyRetargetValidator{
		chain:          chain,
		params:         params,
		targetTimespan: int64(params.HeightInterval) * int64(params.TargetSpacing),
		maxTarget:      CompactToTarget(params.MaxTargetBits),
	}
}

func (v *LegacyRetargetValidator) IsApplicable(block *Block, _ *Block) bool {
	return v.params.Heights.Contains(block.Height) &&
		block.Height%v.params.HeightInterval == 0
}

func (v *LegacyRetargetValidator) Heights() HeightRange {
	return v.params.Heights
}

func (v *LegacyRetargetValidator) RetargetInterval() uint32 {
	return v.params.HeightInterval
}

// RequiredBits computes the bits expected for block at a retarget height
func (v *LegacyRetargetValidator) RequiredBits(
	block *Block,
	previousBlock *Block,
) (uint32, error) {
	lookback := v.params.HeightInterval - 1
	if v.params.FullIntervalLookback && block.Height != v.params.HeightInterval {
		lookback = v.params.HeightInterval
	}
	firstBlock, err := v.chain.Previous(previousBlock, lookback)
	if err != nil {
		return 0, err
	}
	actualTimespan := int64(previousBlock.Header.Timestamp) -
		int64(firstBlock.Header.Timestamp)
	actualTimespan = max(actualTimespan, v.targetTimespan/4)
	actualTimespan = min(actualTimespan, v.targetTimespan*4)
	newTarget := CompactToTarget(previousBlock.Header.Bits)
	shift := v.params.OverflowShift &&
		newTarget.BitLen() > v.maxTarget.BitLen()-1
	if shift {
		newTarget.Rsh(newTarget, 1)
	}
	newTarget.Mul(newTarget, big.NewInt(actualTimespan))
	newTarget.Div(newTarget, big.NewInt(v.targetTimespan))
	if shift {
		newTarget.Lsh(newTarget, 1)
	}
	if newTarget.Cmp(v.maxTarget) > 0 {
		newTarget.Set(v.maxTarget)
	}
	return TargetToCompact(newTarget), nil
}

func (v *LegacyRetargetValidator) Validate(block *Block, previousBlock *Block) error {
	expectedBits, err := v.RequiredBits(block, previousBlock)
	if err != nil {
		return err
	}
	return checkBits(block, expectedBits)
}

// BitsValidator requires the bits to stay unchanged between retargets
type BitsValidator struct {
	heightInterval uint32
	heights        HeightRange
}

func NewBitsValidator(heightInterval uint32, heights HeightRange) *BitsValidator {
	return &BitsValidator{
		heightInterval: heightInterval,
		heights:        heights,
	}
}

func (v *BitsValidator) IsApplicable(block *Block, _ *Block) bool {
	return v.heights.Contains(block.Height) &&
		block.Height%v.heightInterval != 0
}

func (v *BitsValidator) Heights() HeightRange {
	return v.heights
}

func (v *BitsValidator) RetargetInterval() uint32 {
	return v.heightInterval
}

func (v *BitsValidator) RequiredBits(_ *Block, previousBlock *Block) (uint32, error) {
	return previousBlock.Header.Bits, nil
}

func (v *BitsValidator) Validate(block *Block, previousBlock *Block) error {
	return checkBits(block, previousBlock.Header.Bits)
}

// TestNetDifficultyValidator implements the testnet exception that allows a
// minimum difficulty block when no block was found for twice the target
// spacing. Retarget heights are left to the legacy rule.
type TestNetDifficultyValidator struct {
	chain          *ChainWindow
	heightInterval uint32
	targetSpacing  uint32
	maxTargetBits  uint32
	heights        HeightRange
}

func NewTestNetDifficultyValidator(
	chain *ChainWindow,
	heightInterval uint32,
	targetSpacing uint32,
	maxTargetBits uint32,
	heights HeightRange,
) *TestNetDifficultyValidator {
	return &TestNetDifficultyValidator{
		chain:          chain,
		heightInterval: heightInterval,
		targetSpacing:  targetSpacing,
		maxTargetBits:  maxTargetBits,
		heights:        heights,
	}
}

func (v *TestNetDifficultyValidator) IsApplicable(block *Block, _ *Block) bool {
	return v.heights.Contains(block.Height) &&
		block.Height%v.heightInterval != 0
}

func (v *TestNetDifficultyValidator) Heights() HeightRange {
	return v.heights
}

func (v *TestNetDifficultyValidator) RetargetInterval() uint32 {
	return v.heightInterval
}

func (v *TestNetDifficultyValidator) RequiredBits(
	block *Block,
	previousBlock *Block,
) (uint32, error) {
	if int64(block.Header.Timestamp) >
		int64(previousBlock.Header.Timestamp)+2*int64(v.targetSpacing) {
		return v.maxTargetBits, nil
	}
	// Find the last block not mined under the exception
	cursor := previousBlock
	for cursor.Height > 0 &&
		cursor.Height%v.heightInterval != 0 &&
		cursor.Header.Bits == v.maxTargetBits {
		var err error
		cursor, err = v.chain.Previous(cursor, 1)
		if err != nil {
			return 0, err
		}
	}
	return cursor.Header.Bits, nil
}

func (v *TestNetDifficultyValidator) Validate(block *Block, previousBlock *Block) error {
	expectedBits, err := v.RequiredBits(block, previousBlock)
	if err != nil {
		return err
	}
	return checkBits(block, expectedBits)
}

func checkBits(block *Block, expectedBits uint32) error {
	if block.Header.Bits != expectedBits {
		return fmt.Errorf(
			"%w: block %s has bits %08x, expected %08x",
			ErrInvalidDifficultyBits,
			block,
			block.Header.Bits,
			expectedBits,
		)
	}
	return nil
}
