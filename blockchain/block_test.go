// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/hdrcheck/blockchain"
)

// Bitcoin mainnet genesis header
const bitcoinGenesisHeaderHex = "0100000000000000000000000000000000000000000000000000000000000000000000003ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4a29ab5f49ffff001d1dac2b7c"

func TestDecodeBlockHeader(t *testing.T) {
	header, err := blockchain.NewBlockHeaderFromHex(bitcoinGenesisHeaderHex)
	if err != nil {
		t.Fatalf("unexpected error decoding header: %s", err)
	}
	if header.Version != 1 {
		t.Fatalf("unexpected version: %d", header.Version)
	}
	if header.Timestamp != 1231006505 {
		t.Fatalf("unexpected timestamp: %d", header.Timestamp)
	}
	if header.Bits != 0x1d00ffff {
		t.Fatalf("unexpected bits: %08x", header.Bits)
	}
	if header.Nonce != 2083236893 {
		t.Fatalf("unexpected nonce: %d", header.Nonce)
	}
	expectedMerkleRoot := "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"
	if header.MerkleRoot.String() != expectedMerkleRoot {
		t.Fatalf(
			"unexpected merkle root: got %s, want %s",
			header.MerkleRoot,
			expectedMerkleRoot,
		)
	}
	expectedHash := "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
	hash := header.Hash()
	if hash.String() != expectedHash {
		t.Fatalf("hash mismatch: got %s, want %s", hash, expectedHash)
	}
	// Encoding must reproduce the original bytes
	if hex.EncodeToString(header.Encode()) != bitcoinGenesisHeaderHex {
		t.Fatalf(
			"encoded header mismatch: got %x",
			header.Encode(),
		)
	}
}

func TestDecodeBlockHeaderFromReader(t *testing.T) {
	data, _ := hex.DecodeString(bitcoinGenesisHeaderHex + bitcoinGenesisHeaderHex)
	r := bytes.NewReader(data)
	for i := 0; i < 2; i++ {
		if _, err := blockchain.NewBlockHeaderFromReader(r); err != nil {
			t.Fatalf("unexpected error decoding header %d: %s", i, err)
		}
	}
	if _, err := blockchain.NewBlockHeaderFromReader(r); err == nil {
		t.Fatal("expected error reading past the last header")
	}
}

func TestDecodeBlockHeaderBadLength(t *testing.T) {
	if _, err := blockchain.NewBlockHeaderFromHex(bitcoinGenesisHeaderHex[:100]); err == nil {
		t.Fatal("expected error for a short header")
	}
}

func TestNetworkGenesisHashes(t *testing.T) {
	testDefs := []struct {
		network      *blockchain.Network
		expectedHash string
	}{
		{
			network:      blockchain.BitcoinMainnet,
			expectedHash: "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
		},
		{
			network:      blockchain.BitcoinTestnet,
			expectedHash: "000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943",
		},
		{
			network:      blockchain.LitecoinMainnet,
			expectedHash: "12a765e31ffd4059bada1e25190f6e98c99d9714d334efa41a195a7e7e04bfe2",
		},
		{
			network:      blockchain.BitcoinSVMainnet,
			expectedHash: "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
		},
	}
	for _, td := range testDefs {
		hash := td.network.GenesisBlock().Hash()
		if hash.String() != td.expectedHash {
			t.Fatalf(
				"%s genesis hash mismatch: got %s, want %s",
				td.network.Name,
				hash,
				td.expectedHash,
			)
		}
	}
}
