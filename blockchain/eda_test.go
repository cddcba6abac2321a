// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/hdrcheck/blockchain"
)

const hour = 60 * 60

// gapTimestamps spaces blocks normally with an extra gap before gapHeight
func gapTimestamps(gapHeight uint32, gap uint32) func(uint32) uint32 {
	return func(height uint32) uint32 {
		ts := uint32(testBaseTime) + height*testSpacing
		if height >= gapHeight {
			ts += gap
		}
		return ts
	}
}

func newEDAValidator(
	store blockchain.HeaderStore,
	trigger blockchain.EDATrigger,
) *blockchain.EDAValidator {
	return blockchain.NewEDAValidator(
		blockchain.NewChainWindow(store),
		blockchain.EDAParams{
			HeightInterval: 2016,
			MaxTargetBits:  0x1d00ffff,
			Trigger:        trigger,
		},
	)
}

func TestEDABlockGap(t *testing.T) {
	testDefs := []struct {
		name         string
		prevBits     uint32
		gap          uint32
		expectedBits uint32
	}{
		{
			name:         "long gap relaxes by a quarter",
			prevBits:     testBits,
			gap:          13 * hour,
			expectedBits: 0x1c13ffec,
		},
		{
			name:         "gap of exactly 12h does not trigger",
			prevBits:     testBits,
			gap:          12*hour - testSpacing,
			expectedBits: testBits,
		},
		{
			name:         "short gap keeps bits",
			prevBits:     testBits,
			gap:          0,
			expectedBits: testBits,
		},
		{
			name:         "relaxation capped at max target",
			prevBits:     0x1d00f000,
			gap:          13 * hour,
			expectedBits: 0x1d00ffff,
		},
	}
	for _, td := range testDefs {
		// The gap sits between the previous block (5) and its parent
		store, blocks := buildChain(t, 6, gapTimestamps(5, td.gap), constantBits(td.prevBits))
		validator := newEDAValidator(store, blockchain.EDATriggerBlockGap)
		prev := blocks[5]
		block := nextBlock(prev, prev.Header.Timestamp+testSpacing, td.expectedBits)
		if !validator.IsApplicable(block, prev) {
			t.Fatalf("%s: rule should apply at height %d", td.name, block.Height)
		}
		if err := validator.Validate(block, prev); err != nil {
			t.Fatalf("%s: unexpected error: %s", td.name, err)
		}
		bad := nextBlock(prev, prev.Header.Timestamp+testSpacing, td.expectedBits-1)
		if err := validator.Validate(bad, prev); !errors.Is(err, blockchain.ErrInvalidDifficultyBits) {
			t.Fatalf("%s: expected ErrInvalidDifficultyBits, got: %v", td.name, err)
		}
	}
}

func TestEDAMaxTargetNeedsNoAncestry(t *testing.T) {
	// Nothing is stored, so any ancestry lookup would fail
	validator := newEDAValidator(blockchain.NewMemoryStore(), blockchain.EDATriggerBlockGap)
	prev := blockchain.NewBlock(blockchain.BlockHeader{Bits: 0x1d00ffff}, 100)
	block := nextBlock(prev, testBaseTime, 0x1d00ffff)
	if err := validator.Validate(block, prev); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}

func TestEDAInsufficientAncestry(t *testing.T) {
	validator := newEDAValidator(blockchain.NewMemoryStore(), blockchain.EDATriggerBlockGap)
	prev := blockchain.NewBlock(blockchain.BlockHeader{Bits: testBits}, 100)
	block := nextBlock(prev, testBaseTime, testBits)
	if err := validator.Validate(block, prev); !errors.Is(err, blockchain.ErrInsufficientAncestry) {
		t.Fatalf("expected ErrInsufficientAncestry, got: %v", err)
	}
}

func TestEDAMedianTimePast(t *testing.T) {
	testDefs := []struct {
		gap          uint32
		expectedBits uint32
	}{
		// MTP moves 1h of regular spacing plus the gap over six blocks
		{gap: 12 * hour, expectedBits: 0x1c13ffec},
		{gap: 10 * hour, expectedBits: testBits},
	}
	for _, td := range testDefs {
		store, blocks := buildChain(t, 20, gapTimestamps(14, td.gap), constantBits(testBits))
		validator := newEDAValidator(store, blockchain.EDATriggerMedianTimePast)
		prev := blocks[19]
		bits, err := validator.RequiredBits(nextBlock(prev, prev.Header.Timestamp+testSpacing, 0), prev)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if bits != td.expectedBits {
			t.Fatalf(
				"did not get expected bits for gap %d: got %08x, wanted %08x",
				td.gap,
				bits,
				td.expectedBits,
			)
		}
	}
}

func TestEDANotApplicableAtRetarget(t *testing.T) {
	validator := blockchain.NewEDAValidator(
		blockchain.NewChainWindow(blockchain.NewMemoryStore()),
		blockchain.EDAParams{
			HeightInterval: 2016,
			MaxTargetBits:  0x1d00ffff,
			Heights:        blockchain.HeightRange{From: 2000, Until: 5000},
		},
	)
	testDefs := []struct {
		height     uint32
		applicable bool
	}{
		{height: 1999, applicable: false},
		{height: 2000, applicable: true},
		{height: 2016, applicable: false},
		{height: 4999, applicable: true},
		{height: 5000, applicable: false},
	}
	for _, td := range testDefs {
		block := blockchain.NewBlock(blockchain.BlockHeader{}, td.height)
		if validator.IsApplicable(block, nil) != td.applicable {
			t.Fatalf(
				"did not get expected applicability at height %d: wanted %v",
				td.height,
				td.applicable,
			)
		}
	}
}
