// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain

import (
	"fmt"
	"slices"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// HeaderStore provides read access to accepted headers. Implementations
// return a nil block and nil error when a hash is unknown.
type HeaderStore interface {
	BlockByHash(hash chainhash.Hash) (*Block, error)
	Timestamps(startHeight uint32, endHeight uint32, ascending bool) ([]uint32, error)
}

// MemoryStore is a HeaderStore held entirely in memory. The highest block
// added so far is the tip, and the height index follows the tip's branch.
type MemoryStore struct {
	sync.RWMutex
	blocks   map[chainhash.Hash]*Block
	byHeight map[uint32]chainhash.Hash
	tip      *Block
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blocks:   make(map[chainhash.Hash]*Block),
		byHeight: make(map[uint32]chainhash.Hash),
	}
}

func (s *MemoryStore) AddBlock(block *Block) error {
	s.Lock()
	defer s.Unlock()
	s.blocks[block.Hash()] = block
	if s.tip != nil && block.Height <= s.tip.Height {
		return nil
	}
	s.tip = block
	// Point the height index at the new branch until it rejoins the old one
	for cursor := block; cursor != nil; {
		if hash, ok := s.byHeight[cursor.Height]; ok && hash == cursor.Hash() {
			break
		}
		s.byHeight[cursor.Height] = cursor.Hash()
		if cursor.Height == 0 {
			break
		}
		cursor = s.blocks[cursor.Header.PrevBlock]
	}
	return nil
}

func (s *MemoryStore) BlockByHash(hash chainhash.Hash) (*Block, error) {
	s.RLock()
	defer s.RUnlock()
	return s.blocks[hash], nil
}

func (s *MemoryStore) BlockByHeight(height uint32) (*Block, error) {
	s.RLock()
	defer s.RUnlock()
	hash, ok := s.byHeight[height]
	if !ok {
		return nil, nil
	}
	return s.blocks[hash], nil
}

func (s *MemoryStore) Tip() (*Block, error) {
	s.RLock()
	defer s.RUnlock()
	return s.tip, nil
}

// Timestamps returns the timestamps of the canonical blocks in the inclusive
// height range
func (s *MemoryStore) Timestamps(
	startHeight uint32,
	endHeight uint32,
	ascending bool,
) ([]uint32, error) {
	if endHeight < startHeight {
		return nil, fmt.Errorf(
			"invalid height range: %d > %d",
			startHeight,
			endHeight,
		)
	}
	s.RLock()
	defer s.RUnlock()
	ret := make([]uint32, 0, endHeight-startHeight+1)
	for height := startHeight; ; height++ {
		hash, ok := s.byHeight[height]
		if !ok {
			return nil, fmt.Errorf(
				"%w: no block at height %d",
				ErrInsufficientAncestry,
				height,
			)
		}
		ret = append(ret, s.blocks[hash].Header.Timestamp)
		if height == endHeight {
			break
		}
	}
	if !ascending {
		slices.Reverse(ret)
	}
	return ret, nil
}
