// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain_test

import (
	"testing"

	"github.com/blinklabs-io/hdrcheck/blockchain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const testBaseTime = 1500000000

// zeroHasher makes every header satisfy any positive target
var zeroHasher = blockchain.HasherFunc(func([]byte) chainhash.Hash {
	return chainhash.Hash{}
})

// buildChain stores count linked blocks starting at genesis, using the
// provided functions for per-height timestamps and bits
func buildChain(
	t *testing.T,
	count int,
	timestampFn func(height uint32) uint32,
	bitsFn func(height uint32) uint32,
) (*blockchain.MemoryStore, []*blockchain.Block) {
	t.Helper()
	store := blockchain.NewMemoryStore()
	blocks := make([]*blockchain.Block, 0, count)
	var prevHash chainhash.Hash
	for i := 0; i < count; i++ {
		height := uint32(i)
		block := blockchain.NewBlock(
			blockchain.BlockHeader{
				Version:   1,
				PrevBlock: prevHash,
				Timestamp: timestampFn(height),
				Bits:      bitsFn(height),
				Nonce:     height,
			},
			height,
		)
		if err := store.AddBlock(block); err != nil {
			t.Fatalf("unexpected error adding block: %s", err)
		}
		blocks = append(blocks, block)
		prevHash = block.Hash()
	}
	return store, blocks
}

// nextBlock returns an unstored block on top of prev
func nextBlock(
	prev *blockchain.Block,
	timestamp uint32,
	bits uint32,
) *blockchain.Block {
	return blockchain.NewBlock(
		blockchain.BlockHeader{
			Version:   1,
			PrevBlock: prev.Hash(),
			Timestamp: timestamp,
			Bits:      bits,
			Nonce:     prev.Height + 1,
		},
		prev.Height+1,
	)
}

func spacedTimestamps(spacing uint32) func(uint32) uint32 {
	return func(height uint32) uint32 {
		return testBaseTime + height*spacing
	}
}

func constantBits(bits uint32) func(uint32) uint32 {
	return func(uint32) uint32 {
		return bits
	}
}
