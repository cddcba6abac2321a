// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain

import (
	"fmt"
)

// ProofOfWorkValidator checks that a header hash satisfies the target
// encoded in its own bits
type ProofOfWorkValidator struct {
	hasher Hasher
}

func NewProofOfWorkValidator(hasher Hasher) *ProofOfWorkValidator {
	return &ProofOfWorkValidator{
		hasher: hasher,
	}
}

// Validate checks the proof-of-work of block. The hash, read as a
// little-endian number, must be <= target.
func (v *ProofOfWorkValidator) Validate(block *Block, _ *Block) error {
	target := CompactToTarget(block.Header.Bits)
	if target.Sign() <= 0 {
		return fmt.Errorf(
			"%w: block %s has non-positive target for bits %08x",
			ErrInvalidPoW,
			block,
			block.Header.Bits,
		)
	}
	hash := v.hasher.Hash(block.Header.Encode())
	hashInt := hashToBig(hash)
	if hashInt.Cmp(target) > 0 {
		return fmt.Errorf(
			"%w: block %s PoW hash %s exceeds target %064x",
			ErrInvalidPoW,
			block,
			hash,
			target,
		)
	}
	return nil
}
