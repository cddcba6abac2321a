// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package indexer

import (
	"errors"
	"fmt"
	"time"

	"github.com/blinklabs-io/hdrcheck/blockchain"
	"github.com/blinklabs-io/hdrcheck/internal/logging"
	"github.com/blinklabs-io/hdrcheck/internal/metrics"
)

// Number of recent blocks used for the average block interval metric
const averageIntervalBlocks = 144

var ErrOrphanHeader = errors.New("orphan header")

// HeaderStore is the storage the indexer validates against and writes to
type HeaderStore interface {
	blockchain.HeaderStore
	AddBlock(block *blockchain.Block) error
	Tip() (*blockchain.Block, error)
}

// Indexer validates a stream of headers for a single network and stores
// the accepted ones
type Indexer struct {
	network        *blockchain.Network
	store          HeaderStore
	validator      blockchain.Validator
	logger         *logging.Logger
	startBlock     *blockchain.Block
	strictAncestry bool
	baseHeight     uint32
	tip            *blockchain.Block
}

type IndexerOptionFunc func(*Indexer)

// WithStartBlock seeds an empty store with a trusted block instead of the
// network genesis block
func WithStartBlock(block *blockchain.Block) IndexerOptionFunc {
	return func(i *Indexer) {
		i.startBlock = block
	}
}

// WithStrictAncestry rejects headers whose difficulty cannot be checked
// because older headers are missing from the store
func WithStrictAncestry(strictAncestry bool) IndexerOptionFunc {
	return func(i *Indexer) {
		i.strictAncestry = strictAncestry
	}
}

func WithLogger(logger *logging.Logger) IndexerOptionFunc {
	return func(i *Indexer) {
		i.logger = logger
	}
}

func New(
	network *blockchain.Network,
	store HeaderStore,
	opts ...IndexerOptionFunc,
) (*Indexer, error) {
	i := &Indexer{
		network: network,
		store:   store,
		logger:  logging.GetNetworkLogger(network.Name),
	}
	for _, opt := range opts {
		opt(i)
	}
	validator, err := network.NewBlockValidator(store)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to build validator for %s: %w",
			network.Name,
			err,
		)
	}
	i.validator = validator
	tip, err := store.Tip()
	if err != nil {
		return nil, err
	}
	if tip == nil {
		tip = i.startBlock
		if tip == nil {
			tip = network.GenesisBlock()
		} else if err := network.CheckStartBlock(tip); err != nil {
			return nil, err
		}
		if err := store.AddBlock(tip); err != nil {
			return nil, err
		}
		i.baseHeight = tip.Height
		i.logger.Infof("seeded header store with block %s", tip)
	} else {
		i.logger.Infof("found previous tip: %s", tip)
	}
	i.tip = tip
	metrics.TipHeight.WithLabelValues(network.Name).Set(float64(tip.Height))
	return i, nil
}

// Tip returns the highest accepted block
func (i *Indexer) Tip() *blockchain.Block {
	return i.tip
}

// HandleHeader validates a header against its parent and stores it. Known
// headers are returned without being validated again.
func (i *Indexer) HandleHeader(
	header blockchain.BlockHeader,
) (*blockchain.Block, error) {
	networkName := i.network.Name
	existing, err := i.store.BlockByHash(header.Hash())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		i.logger.Debugf("skipping known header %s", existing)
		metrics.HeadersProcessed.WithLabelValues(networkName, metrics.ResultDuplicate).Inc()
		return existing, nil
	}
	// Verify PrevBlock hash continuity
	parent, err := i.store.BlockByHash(header.PrevBlock)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		i.reject(metrics.ReasonOrphan)
		return nil, fmt.Errorf(
			"%w: parent %s of header %s is unknown",
			ErrOrphanHeader,
			header.PrevBlock,
			header.Hash(),
		)
	}
	block := blockchain.NewBlock(header, parent.Height+1)
	start := time.Now()
	err = i.validator.Validate(block, parent)
	metrics.ValidationDuration.WithLabelValues(networkName).Observe(
		time.Since(start).Seconds(),
	)
	result := metrics.ResultAccepted
	if err != nil {
		if i.strictAncestry ||
			!errors.Is(err, blockchain.ErrInsufficientAncestry) {
			i.reject(metrics.RejectReason(err))
			return nil, fmt.Errorf(
				"header %s failed validation: %w",
				block,
				err,
			)
		}
		i.logger.Warnf(
			"accepting header %s without difficulty check: %s",
			block,
			err,
		)
		result = metrics.ResultUnverified
	}
	if err := i.store.AddBlock(block); err != nil {
		return nil, err
	}
	metrics.HeadersProcessed.WithLabelValues(networkName, result).Inc()
	i.logger.Debugf("accepted header %s", block)
	if block.Height > i.tip.Height {
		i.tip = block
		metrics.TipHeight.WithLabelValues(networkName).Set(float64(block.Height))
		i.updateAverageInterval()
	}
	return block, nil
}

func (i *Indexer) reject(reason string) {
	metrics.HeadersProcessed.WithLabelValues(i.network.Name, metrics.ResultRejected).Inc()
	metrics.HeadersRejected.WithLabelValues(i.network.Name, reason).Inc()
}

func (i *Indexer) updateAverageInterval() {
	if i.tip.Height <= i.baseHeight {
		return
	}
	count := min(uint32(averageIntervalBlocks), i.tip.Height-i.baseHeight)
	timestamps, err := i.store.Timestamps(i.tip.Height-count, i.tip.Height, true)
	if err != nil {
		i.logger.Debugf("failed to compute average block interval: %s", err)
		return
	}
	elapsed := int64(timestamps[len(timestamps)-1]) - int64(timestamps[0])
	metrics.AverageBlockInterval.WithLabelValues(i.network.Name).Set(
		float64(elapsed) / float64(count),
	)
}
