// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain

import (
	"fmt"
	"slices"
)

// MedianTimeBlocks is the number of blocks used for median-time-past
const MedianTimeBlocks = 11

// ChainWindow walks the ancestors of a block through a HeaderStore. It holds
// no state of its own and is safe for concurrent use if the store is.
type ChainWindow struct {
	store HeaderStore
}

func NewChainWindow(store HeaderStore) *ChainWindow {
	return &ChainWindow{
		store: store,
	}
}

// parent returns the immediate ancestor of block
func (w *ChainWindow) parent(block *Block) (*Block, error) {
	if block.Height == 0 {
		return nil, fmt.Errorf(
			"%w: block %s has no parent",
			ErrInsufficientAncestry,
			block,
		)
	}
	parent, err := w.store.BlockByHash(block.Header.PrevBlock)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf(
			"%w: parent %s of block %s not found",
			ErrInsufficientAncestry,
			block.Header.PrevBlock,
			block,
		)
	}
	if parent.Height+1 != block.Height {
		return nil, fmt.Errorf(
			"parent %s of block %s has unexpected height",
			parent,
			block,
		)
	}
	return parent, nil
}

// Previous follows the previous-hash links exactly count steps back from block
func (w *ChainWindow) Previous(block *Block, count uint32) (*Block, error) {
	if count > block.Height {
		return nil, fmt.Errorf(
			"%w: cannot go back %d blocks from %s",
			ErrInsufficientAncestry,
			count,
			block,
		)
	}
	cursor := block
	for i := uint32(0); i < count; i++ {
		var err error
		cursor, err = w.parent(cursor)
		if err != nil {
			return nil, err
		}
	}
	return cursor, nil
}

// Window returns the length most recent blocks ending at and including
// block, oldest first
func (w *ChainWindow) Window(block *Block, length uint32) ([]*Block, error) {
	if length == 0 {
		return nil, nil
	}
	if length-1 > block.Height {
		return nil, fmt.Errorf(
			"%w: window of %d blocks ending at %s",
			ErrInsufficientAncestry,
			length,
			block,
		)
	}
	ret := make([]*Block, length)
	ret[length-1] = block
	for i := int(length) - 2; i >= 0; i-- {
		parent, err := w.parent(ret[i+1])
		if err != nil {
			return nil, err
		}
		ret[i] = parent
	}
	return ret, nil
}

// MedianTimePast returns the median timestamp of the last 11 blocks up to
// and including block. Near genesis all available blocks are used.
func (w *ChainWindow) MedianTimePast(block *Block) (uint32, error) {
	count := min(uint32(MedianTimeBlocks), block.Height+1)
	window, err := w.Window(block, count)
	if err != nil {
		return 0, err
	}
	timestamps := make([]uint32, 0, len(window))
	for _, b := range window {
		timestamps = append(timestamps, b.Header.Timestamp)
	}
	slices.Sort(timestamps)
	return timestamps[len(timestamps)/2], nil
}

// SuitableBlockIndex returns the index (0-2) of the block with the median
// timestamp among three consecutive blocks. The sorting network only swaps
// on a strictly greater timestamp, so ties keep their input order.
func SuitableBlockIndex(blocks [3]*Block) int {
	idx := [3]int{0, 1, 2}
	ts := func(i int) uint32 {
		return blocks[idx[i]].Header.Timestamp
	}
	if ts(0) > ts(2) {
		idx[0], idx[2] = idx[2], idx[0]
	}
	if ts(0) > ts(1) {
		idx[0], idx[1] = idx[1], idx[0]
	}
	if ts(1) > ts(2) {
		idx[1], idx[2] = idx[2], idx[1]
	}
	return idx[1]
}

// SuitableBlock returns the block with the median timestamp among three
func SuitableBlock(blocks [3]*Block) *Block {
	return blocks[SuitableBlockIndex(blocks)]
}
