// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain

import (
	"math/big"
)

// DAAParams configures the sliding-window difficulty adjustment
type DAAParams struct {
	HeightInterval uint32
	TargetSpacing  uint32
	MaxTargetBits  uint32
	Heights        HeightRange
}

// DAAValidator recomputes the target on every block from the work done and
// the time elapsed over the last HeightInterval blocks. The window endpoints
// are the median-timestamp block of the first and last three blocks.
type DAAValidator struct {
	chain     *ChainWindow
	params    DAAParams
	maxTarget *big.Int
}

func NewDAAValidator(chain *ChainWindow, params DAAParams) *DAAValidator {
	return &DAAValidator{
		chain:     chain,
		params:    params,
		maxTarget: CompactToTarget(params.MaxTargetBits),
	}
}

func (v *DAAValidator) IsApplicable(block *Block, _ *Block) bool {
	return v.params.Heights.Contains(block.Height)
}

func (v *DAAValidator) Heights() HeightRange {
	return v.params.Heights
}

// RetargetInterval is 0 since the rule applies at every height in range
func (v *DAAValidator) RetargetInterval() uint32 {
	return 0
}

func (v *DAAValidator) RequiredBits(_ *Block, previousBlock *Block) (uint32, error) {
	window, err := v.chain.Window(previousBlock, v.params.HeightInterval+3)
	if err != nil {
		return 0, err
	}
	last := len(window) - 3
	firstIdx := SuitableBlockIndex([3]*Block(window[0:3]))
	lastIdx := last + SuitableBlockIndex([3]*Block(window[last:]))
	firstBlock, lastBlock := window[firstIdx], window[lastIdx]

	expectedTimespan := int64(v.params.HeightInterval) * int64(v.params.TargetSpacing)
	timespan := int64(lastBlock.Header.Timestamp) - int64(firstBlock.Header.Timestamp)
	timespan = max(timespan, expectedTimespan/2)
	timespan = min(timespan, expectedTimespan*2)

	work := new(big.Int)
	for _, block := range window[firstIdx+1 : lastIdx+1] {
		work.Add(work, BlockWork(block.Header.Bits))
	}
	work.Mul(work, big.NewInt(int64(v.params.TargetSpacing)))
	work.Div(work, big.NewInt(timespan))
	if work.Sign() == 0 {
		return v.params.MaxTargetBits, nil
	}
	// target = 2^256 / work - 1
	target := new(big.Int).Div(oneLsh256, work)
	target.Sub(target, big.NewInt(1))
	if target.Cmp(v.maxTarget) > 0 {
		return v.params.MaxTargetBits, nil
	}
	return TargetToCompact(target), nil
}

func (v *DAAValidator) Validate(block *Block, previousBlock *Block) error {
	expectedBits, err := v.RequiredBits(block, previousBlock)
	if err != nil {
		return err
	}
	return checkBits(block, expectedBits)
}
