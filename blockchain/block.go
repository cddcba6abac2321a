// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// BlockHeaderSize is the length of a serialized block header
const BlockHeaderSize = 80

// BlockHeader is the 80-byte header shared by Bitcoin and its forks
type BlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// NewBlockHeaderFromReader decodes a single header from the provided reader
func NewBlockHeaderFromReader(r io.Reader) (*BlockHeader, error) {
	var h BlockHeader
	if err := h.Decode(r); err != nil {
		return nil, err
	}
	return &h, nil
}

// NewBlockHeaderFromHex decodes a header from its hex encoded wire format
func NewBlockHeaderFromHex(headerHex string) (*BlockHeader, error) {
	data, err := hex.DecodeString(headerHex)
	if err != nil {
		return nil, err
	}
	if len(data) != BlockHeaderSize {
		return nil, fmt.Errorf(
			"invalid header length: got %d, want %d",
			len(data),
			BlockHeaderSize,
		)
	}
	return NewBlockHeaderFromReader(bytes.NewReader(data))
}

func (h *BlockHeader) Decode(r io.Reader) error {
	if err := binary.Read(r, binary.LittleEndian, h); err != nil {
		return err
	}
	return nil
}

// Encode returns the wire format of the header
func (h *BlockHeader) Encode() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, BlockHeaderSize))
	// Writes to a bytes.Buffer cannot fail
	_ = binary.Write(buf, binary.LittleEndian, h)
	return buf.Bytes()
}

// Hash returns the block identifier, which is always the double SHA-256 of
// the header regardless of the proof-of-work hash used by the coin
func (h *BlockHeader) Hash() chainhash.Hash {
	return chainhash.DoubleHashH(h.Encode())
}

// Block is a header at a known position in the chain
type Block struct {
	Header BlockHeader
	Height uint32
	hash   chainhash.Hash
}

func NewBlock(header BlockHeader, height uint32) *Block {
	return &Block{
		Header: header,
		Height: height,
		hash:   header.Hash(),
	}
}

// Hash returns the cached block identifier
func (b *Block) Hash() chainhash.Hash {
	return b.hash
}

func (b *Block) String() string {
	return fmt.Sprintf("%d/%s", b.Height, b.hash.String())
}
