// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package blockchain

import (
	"math/big"
)

var oneLsh256 = new(big.Int).Lsh(big.NewInt(1), 256)

// CompactToTarget converts a Bitcoin compact (nBits) value to a
// 256-bit target. The first byte is the exponent, the next 3
// bytes are the mantissa. Target = mantissa * 2^(8*(exp-3)).
// A set sign bit or an empty mantissa yields a zero target, which
// never satisfies a proof-of-work check.
func CompactToTarget(bits uint32) *big.Int {
	exp := bits >> 24
	mantissa := bits & 0x007fffff
	if bits&0x00800000 != 0 || mantissa == 0 {
		return new(big.Int)
	}
	target := new(big.Int).SetUint64(uint64(mantissa))
	if exp <= 3 {
		target.Rsh(target, uint(8*(3-exp)))
	} else {
		target.Lsh(target, uint(8*(exp-3)))
	}
	return target
}

// TargetToCompact converts a target to its canonical compact form. The
// mantissa keeps the top 3 significant bytes and is shifted one more byte
// when its high bit would collide with the sign bit.
func TargetToCompact(target *big.Int) uint32 {
	if target.Sign() <= 0 {
		return 0
	}
	size := uint32((target.BitLen() + 7) / 8)
	var mantissa uint32
	if size <= 3 {
		mantissa = uint32(target.Uint64()) << (8 * (3 - size))
	} else {
		mantissa = uint32(new(big.Int).Rsh(target, uint(8*(size-3))).Uint64())
	}
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		size++
	}
	return size<<24 | mantissa
}

// BlockWork returns the expected number of hashes needed to find a block
// with the given bits, computed as 2^256 / (target+1)
func BlockWork(bits uint32) *big.Int {
	target := CompactToTarget(bits)
	if target.Sign() == 0 {
		return new(big.Int)
	}
	denominator := new(big.Int).Add(target, big.NewInt(1))
	return new(big.Int).Div(oneLsh256, denominator)
}

// hashToBig interprets a hash as a little-endian number
func hashToBig(hash [32]byte) *big.Int {
	var buf [32]byte
	for i := 0; i < 32; i++ {
		buf[i] = hash[31-i]
	}
	return new(big.Int).SetBytes(buf[:])
}
