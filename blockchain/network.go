// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain

import (
	"fmt"
	"slices"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Network holds the consensus parameters of a coin. Values are passed to the
// validators at construction so several networks can be used side by side.
type Network struct {
	Name           string
	Magic          uint32
	HeightInterval uint32
	TargetSpacing  uint32
	MaxTargetBits  uint32
	PowHasher      Hasher
	Genesis        BlockHeader

	// Fork is the block every chain of the network must contain, if any
	Fork *ForkPoint

	// Litecoin retarget quirks, see LegacyRetargetParams
	fullIntervalLookback bool
	overflowShift        bool

	// difficultyRules builds the ordered difficulty rules for the network
	difficultyRules func(n *Network, chain *ChainWindow) []DifficultyRule
}

// GenesisBlock returns the genesis block at height 0
func (n *Network) GenesisBlock() *Block {
	return NewBlock(n.Genesis, 0)
}

// CheckStartBlock verifies that a block used as a starting point instead of
// genesis is not past the fork of the network, where the fork block could
// no longer be checked
func (n *Network) CheckStartBlock(block *Block) error {
	if n.Fork == nil {
		return nil
	}
	if block.Height > n.Fork.Height {
		return fmt.Errorf(
			"%w: start height %d is above fork height %d",
			ErrWrongChainFork,
			block.Height,
			n.Fork.Height,
		)
	}
	if block.Height == n.Fork.Height && block.Hash() != n.Fork.Hash {
		return fmt.Errorf(
			"%w: start block is %s, expected %s",
			ErrWrongChainFork,
			block.Hash(),
			n.Fork.Hash,
		)
	}
	return nil
}

// NewBlockValidator returns the validator for a block and its immediate
// predecessor: proof-of-work first, then the difficulty rule for the height
func (n *Network) NewBlockValidator(store HeaderStore) (*ValidatorSet, error) {
	chain := NewChainWindow(store)
	var rules []DifficultyRule
	if n.difficultyRules != nil {
		rules = n.difficultyRules(n, chain)
	}
	ruleChain, err := NewValidatorChain(rules...)
	if err != nil {
		return nil, err
	}
	return NewValidatorSet(
		NewProofOfWorkValidator(n.PowHasher),
		ruleChain,
	), nil
}

const (
	bitcoinHeightInterval = 2016
	bitcoinTargetSpacing  = 10 * 60
	bitcoinMaxTargetBits  = 0x1d00ffff

	litecoinHeightInterval = 2016
	litecoinTargetSpacing  = 150
	litecoinMaxTargetBits  = 0x1e0fffff

	// First block after the 2017 chain split that could use the EDA
	bitcoinSVEDAHeight = 478559
	// First block using the cw-144 adjustment
	bitcoinSVDAAHeight     = 504032
	bitcoinSVDAAInterval   = 144
	bitcoinSVForkHeight    = 556767
	bitcoinSVForkBlockHash = "0000000000000000004626ff6e3b936941d341c5932ece4357eeccac44e6d56c"
)

var (
	bitcoinGenesisMerkleRoot  = mustHash("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b")
	litecoinGenesisMerkleRoot = mustHash("97ddfbbae6be97fd6cdf3e7ca13232a3afff2353e29badfab7f73011edd4ced9")
)

var BitcoinMainnet = &Network{
	Name:           "bitcoin-mainnet",
	Magic:          0xd9b4bef9,
	HeightInterval: bitcoinHeightInterval,
	TargetSpacing:  bitcoinTargetSpacing,
	MaxTargetBits:  bitcoinMaxTargetBits,
	PowHasher:      DoubleSHA256Hasher,
	Genesis: BlockHeader{
		Version:    1,
		MerkleRoot: bitcoinGenesisMerkleRoot,
		Timestamp:  1231006505,
		Bits:       bitcoinMaxTargetBits,
		Nonce:      2083236893,
	},
	difficultyRules: legacyRules,
}

var BitcoinTestnet = &Network{
	Name:           "bitcoin-testnet",
	Magic:          0x0709110b,
	HeightInterval: bitcoinHeightInterval,
	TargetSpacing:  bitcoinTargetSpacing,
	MaxTargetBits:  bitcoinMaxTargetBits,
	PowHasher:      DoubleSHA256Hasher,
	Genesis: BlockHeader{
		Version:    1,
		MerkleRoot: bitcoinGenesisMerkleRoot,
		Timestamp:  1296688602,
		Bits:       bitcoinMaxTargetBits,
		Nonce:      414098458,
	},
	difficultyRules: legacyTestNetRules,
}

var LitecoinMainnet = &Network{
	Name:           "litecoin-mainnet",
	Magic:          0xdbb6c0fb,
	HeightInterval: litecoinHeightInterval,
	TargetSpacing:  litecoinTargetSpacing,
	MaxTargetBits:  litecoinMaxTargetBits,
	PowHasher:      ScryptHasher,
	Genesis: BlockHeader{
		Version:    1,
		MerkleRoot: litecoinGenesisMerkleRoot,
		Timestamp:  1317972665,
		Bits:       0x1e0ffff0,
		Nonce:      2084524493,
	},
	fullIntervalLookback: true,
	overflowShift:        true,
	difficultyRules:      legacyRules,
}

var LitecoinTestnet = &Network{
	Name:           "litecoin-testnet",
	Magic:          0xf1c8d2fd,
	HeightInterval: litecoinHeightInterval,
	TargetSpacing:  litecoinTargetSpacing,
	MaxTargetBits:  litecoinMaxTargetBits,
	PowHasher:      ScryptHasher,
	Genesis: BlockHeader{
		Version:    1,
		MerkleRoot: litecoinGenesisMerkleRoot,
		Timestamp:  1486949366,
		Bits:       0x1e0ffff0,
		Nonce:      293345,
	},
	fullIntervalLookback: true,
	overflowShift:        true,
	difficultyRules:      legacyTestNetRules,
}

var BitcoinSVMainnet = &Network{
	Name:           "bitcoinsv-mainnet",
	Magic:          0xe8f3e1e3,
	HeightInterval: bitcoinHeightInterval,
	TargetSpacing:  bitcoinTargetSpacing,
	MaxTargetBits:  bitcoinMaxTargetBits,
	PowHasher:      DoubleSHA256Hasher,
	Genesis:        BitcoinMainnet.Genesis,
	Fork: &ForkPoint{
		Height: bitcoinSVForkHeight,
		Hash:   mustHash(bitcoinSVForkBlockHash),
	},
	difficultyRules: func(n *Network, chain *ChainWindow) []DifficultyRule {
		daa := NewDAAValidator(
			chain,
			DAAParams{
				HeightInterval: bitcoinSVDAAInterval,
				TargetSpacing:  n.TargetSpacing,
				MaxTargetBits:  n.MaxTargetBits,
				Heights: HeightRange{
					From:  bitcoinSVDAAHeight,
					Until: n.Fork.Height + 1,
				},
			},
		)
		return []DifficultyRule{
			NewForkValidator(daa, *n.Fork),
			daa,
			NewLegacyRetargetValidator(
				chain,
				LegacyRetargetParams{
					HeightInterval: n.HeightInterval,
					TargetSpacing:  n.TargetSpacing,
					MaxTargetBits:  n.MaxTargetBits,
					Heights:        HeightRange{Until: bitcoinSVDAAHeight},
				},
			),
			NewEDAValidator(
				chain,
				EDAParams{
					HeightInterval: n.HeightInterval,
					MaxTargetBits:  n.MaxTargetBits,
					Heights: HeightRange{
						From:  bitcoinSVEDAHeight,
						Until: bitcoinSVDAAHeight,
					},
					Trigger: EDATriggerMedianTimePast,
				},
			),
			NewBitsValidator(
				n.HeightInterval,
				HeightRange{Until: bitcoinSVEDAHeight},
			),
		}
	},
}

// BitcoinSVTestnet only checks proof-of-work
var BitcoinSVTestnet = &Network{
	Name:           "bitcoinsv-testnet",
	Magic:          0xf4f3e5f4,
	HeightInterval: bitcoinHeightInterval,
	TargetSpacing:  bitcoinTargetSpacing,
	MaxTargetBits:  bitcoinMaxTargetBits,
	PowHasher:      DoubleSHA256Hasher,
	Genesis:        BitcoinTestnet.Genesis,
}

var Networks = map[string]*Network{
	BitcoinMainnet.Name:   BitcoinMainnet,
	BitcoinTestnet.Name:   BitcoinTestnet,
	LitecoinMainnet.Name:  LitecoinMainnet,
	LitecoinTestnet.Name:  LitecoinTestnet,
	BitcoinSVMainnet.Name: BitcoinSVMainnet,
	BitcoinSVTestnet.Name: BitcoinSVTestnet,
}

// NetworkByName returns the named network or nil
func NetworkByName(name string) *Network {
	return Networks[name]
}

// NetworkNames returns the sorted names of all known networks
func NetworkNames() []string {
	ret := make([]string, 0, len(Networks))
	for name := range Networks {
		ret = append(ret, name)
	}
	slices.Sort(ret)
	return ret
}

func legacyParams(n *Network) LegacyRetargetParams {
	return LegacyRetargetParams{
		HeightInterval:       n.HeightInterval,
		TargetSpacing:        n.TargetSpacing,
		MaxTargetBits:        n.MaxTargetBits,
		FullIntervalLookback: n.fullIntervalLookback,
		OverflowShift:        n.overflowShift,
	}
}

func legacyRules(n *Network, chain *ChainWindow) []DifficultyRule {
	return []DifficultyRule{
		NewLegacyRetargetValidator(chain, legacyParams(n)),
		NewBitsValidator(n.HeightInterval, HeightRange{}),
	}
}

func legacyTestNetRules(n *Network, chain *ChainWindow) []DifficultyRule {
	return []DifficultyRule{
		NewLegacyRetargetValidator(chain, legacyParams(n)),
		NewTestNetDifficultyValidator(
			chain,
			n.HeightInterval,
			n.TargetSpacing,
			n.MaxTargetBits,
			HeightRange{},
		),
	}
}

func mustHash(hashStr string) chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(hashStr)
	if err != nil {
		panic("invalid hash: " + hashStr)
	}
	return *hash
}
