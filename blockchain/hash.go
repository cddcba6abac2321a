// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/scrypt"
)

// Hasher computes the proof-of-work hash of a serialized header
type Hasher interface {
	Hash(data []byte) chainhash.Hash
}

// HasherFunc adapts a plain function to the Hasher interface
type HasherFunc func(data []byte) chainhash.Hash

func (f HasherFunc) Hash(data []byte) chainhash.Hash {
	return f(data)
}

// DoubleSHA256Hasher is the proof-of-work hash used by Bitcoin and Bitcoin SV
var DoubleSHA256Hasher Hasher = HasherFunc(chainhash.DoubleHashH)

// Litecoin scrypt parameters
const (
	scryptN      = 1024
	scryptR      = 1
	scryptP      = 1
	scryptKeyLen = chainhash.HashSize
)

// ScryptHasher is the memory-hard proof-of-work hash used by Litecoin. The
// header is used as both the password and the salt.
var ScryptHasher Hasher = HasherFunc(func(data []byte) chainhash.Hash {
	var ret chainhash.Hash
	key, err := scrypt.Key(data, data, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		// Only reachable with invalid constant parameters
		panic("scrypt: " + err.Error())
	}
	copy(ret[:], key)
	return ret
})
