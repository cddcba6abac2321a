// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/hdrcheck/blockchain"
	"github.com/blinklabs-io/hdrcheck/internal/config"
	"github.com/blinklabs-io/hdrcheck/internal/logging"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/dgraph-io/badger/v4"
)

const (
	headerKeyPrefix = "header_"
	heightKeyPrefix = "height_"
	tipKey          = "tip"
)

// State is a HeaderStore backed by badger. Headers are keyed by hash, and a
// height index follows the branch of the highest stored block.
type State struct {
	db *badger.DB
}

var globalState = &State{}

func (s *State) Load() error {
	cfg := config.GetConfig()
	badgerOpts := badger.DefaultOptions(cfg.State.Directory).
		WithLogger(NewBadgerLogger()).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	if cfg.State.InMemory {
		badgerOpts = badgerOpts.
			WithDir("").
			WithValueDir("").
			WithInMemory(true)
	}
	db, err := badger.Open(badgerOpts)
	// TODO: setup automatic GC for Badger
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *State) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AddBlock stores a block. A block higher than the current tip becomes the
// new tip and the height index is moved onto its branch.
func (s *State) AddBlock(block *blockchain.Block) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		blockHash := block.Hash()
		if err := txn.Set(headerKey(blockHash), encodeBlock(block)); err != nil {
			return err
		}
		tip, err := s.tip(txn)
		if err != nil {
			return err
		}
		if tip != nil && block.Height <= tip.Height {
			return nil
		}
		if err := txn.Set([]byte(tipKey), blockHash[:]); err != nil {
			return err
		}
		// Point the height index at the new branch until it rejoins the old one
		cursor := block
		for cursor != nil {
			cursorHash := cursor.Hash()
			indexHash, err := getHash(txn, heightKey(cursor.Height))
			if err != nil {
				return err
			}
			if indexHash != nil && *indexHash == cursorHash {
				break
			}
			if err := txn.Set(heightKey(cursor.Height), cursorHash[:]); err != nil {
				return err
			}
			if cursor.Height == 0 {
				break
			}
			cursor, err = s.blockByHash(txn, cursor.Header.PrevBlock)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

func (s *State) BlockByHash(hash chainhash.Hash) (*blockchain.Block, error) {
	var ret *blockchain.Block
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		ret, err = s.blockByHash(txn, hash)
		return err
	})
	return ret, err
}

func (s *State) BlockByHeight(height uint32) (*blockchain.Block, error) {
	var ret *blockchain.Block
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		ret, err = s.blockByHeight(txn, height)
		return err
	})
	return ret, err
}

// Tip returns the highest stored block, or nil if the store is empty
func (s *State) Tip() (*blockchain.Block, error) {
	var ret *blockchain.Block
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		ret, err = s.tip(txn)
		return err
	})
	return ret, err
}

// Timestamps returns the timestamps of the blocks on the tip's branch in the
// inclusive height range
func (s *State) Timestamps(
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
	ret := make([]uint32, endHeight-startHeight+1)
	err := s.db.View(func(txn *badger.Txn) error {
		for i := range ret {
			height := startHeight + uint32(i)
			block, err := s.blockByHeight(txn, height)
			if err != nil {
				return err
			}
			if block == nil {
				return fmt.Errorf(
					"%w: no block at height %d",
					blockchain.ErrInsufficientAncestry,
					height,
				)
			}
			idx := i
			if !ascending {
				idx = len(ret) - 1 - i
			}
			ret[idx] = block.Header.Timestamp
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *State) blockByHash(
	txn *badger.Txn,
	hash chainhash.Hash,
) (*blockchain.Block, error) {
	item, err := txn.Get(headerKey(hash))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return decodeBlock(val)
}

func (s *State) blockByHeight(
	txn *badger.Txn,
	height uint32,
) (*blockchain.Block, error) {
	hash, err := getHash(txn, heightKey(height))
	if err != nil || hash == nil {
		return nil, err
	}
	return s.blockByHash(txn, *hash)
}

func (s *State) tip(txn *badger.Txn) (*blockchain.Block, error) {
	hash, err := getHash(txn, []byte(tipKey))
	if err != nil || hash == nil {
		return nil, err
	}
	return s.blockByHash(txn, *hash)
}

func GetState() *State {
	return globalState
}

func getHash(txn *badger.Txn, key []byte) (*chainhash.Hash, error) {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return chainhash.NewHash(val)
}

func headerKey(hash chainhash.Hash) []byte {
	return append([]byte(headerKeyPrefix), hash[:]...)
}

func heightKey(height uint32) []byte {
	return binary.BigEndian.AppendUint32([]byte(heightKeyPrefix), height)
}

// encodeBlock stores the height followed by the raw header
func encodeBlock(block *blockchain.Block) []byte {
	ret := binary.BigEndian.AppendUint32(nil, block.Height)
	return append(ret, block.Header.Encode()...)
}

func decodeBlock(data []byte) (*blockchain.Block, error) {
	if len(data) != 4+blockchain.BlockHeaderSize {
		return nil, fmt.Errorf("invalid stored block length: %d", len(data))
	}
	header, err := blockchain.NewBlockHeaderFromReader(bytes.NewReader(data[4:]))
	if err != nil {
		return nil, err
	}
	return blockchain.NewBlock(*header, binary.BigEndian.Uint32(data[:4])), nil
}

// BadgerLogger is a wrapper type to give our logger the expected interface
type BadgerLogger struct {
	*logging.Logger
}

func NewBadgerLogger() *BadgerLogger {
	return &BadgerLogger{
		Logger: logging.GetLogger(),
	}
}

func (b *BadgerLogger) Warningf(msg string, args ...any) {
	b.Logger.Warnf(msg, args...)
}
