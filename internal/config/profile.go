// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import "slices"

// Profile selects a network and optionally a trusted start header. Start
// headers sit on a retarget boundary so difficulty checks can resume after
// one interval of headers.
type Profile struct {
	Network     string // Network name, see blockchain.Networks
	StartHeight uint32 // Height of the trusted start header
	StartHeader string // Trusted start header (hex), genesis when empty
}

func GetProfiles() []Profile {
	var ret []Profile
	for k, profile := range Profiles {
		if slices.Contains(globalConfig.Profiles, k) {
			ret = append(ret, profile)
		}
	}
	return ret
}

func GetAvailableProfiles() []string {
	ret := make([]string, 0, len(Profiles))
	for k := range Profiles {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}

var Profiles = map[string]Profile{
	"bitcoin": {
		Network: "bitcoin-mainnet",
	},
	// Earliest start point for BIP44 wallets
	"bitcoin-bip44": {
		Network:     "bitcoin-mainnet",
		StartHeight: 296352,
		StartHeader: "02000000ba3f2b4208ec0495b2e3743465cae2b44d8f1c778b44cf6b0000000000000000d287e52e8045c060c1cee47d1cc7559c7b8ab8db580539fb55fc579a998ea14efe0e50538c9d001926c0c180",
	},
	"bitcoin-checkpoint": {
		Network:     "bitcoin-mainnet",
		StartHeight: 590688,
		StartHeader: "0000c020ff681bd35a2b82b68021c5b411a6ea4ff36be88fdde01600000000000000000080e4b968dc52fa066bde2fcda1669e240dd73e9c572b0256c0706deb4f5d9be9e6b9595dd1a31b175c734e00",
	},
	"bitcoin-testnet": {
		Network: "bitcoin-testnet",
	},
	"bitcoin-testnet-bip44": {
		Network:     "bitcoin-testnet",
		StartHeight: 199584,
		StartHeader: "0200000097f2b61897ba2bed756cca30058bcc1c2dfbb4ed0e962f47f749dc03000000006b80079a1eda8071424e294fa56849370e331c8ff7e95034576c9789c8db0fa6da551153ab80011c9bdaca25",
	},
	"bitcoin-testnet-checkpoint": {
		Network:     "bitcoin-testnet",
		StartHeight: 1574496,
		StartHeader: "0000ff3f95ca0f2b97bb3a51a01685d0d678edf09e543924ba3fe85d5200000000000000708601f5f9b68b75321de9ceeab3426daca17313cdc1fb964033b285789a2f1c110e545d31f7011a75eb885c",
	},
	"litecoin": {
		Network: "litecoin-mainnet",
	},
	"litecoin-testnet": {
		Network: "litecoin-testnet",
	},
	"bitcoinsv": {
		Network: "bitcoinsv-mainnet",
	},
	"bitcoinsv-testnet": {
		Network: "bitcoinsv-testnet",
	},
}
