// Package addr holds small address/amount parsing helpers shared across the
// CLI and the orchestrator packages.
package addr

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const ZeroAddressString string = "0x0000000000000000000000000000000000000000"

var Zero common.Address = common.HexToAddress(ZeroAddressString)

// ParseUint256 parses a base-10 string into a *big.Int, rejecting values
// that overflow a uint256.
func ParseUint256(value string) (*big.Int, error) {
	u, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("could not parse value as valid uint256: %w", err)
	}
	return u.ToBig(), nil
}

// Safe parses a hex address and rejects the zero address, since every
// address this orchestrator deals with (contracts, EOAs) must be concrete.
func Safe(addressHex string) (common.Address, error) {
	addressHex = strings.ToLower(strings.TrimSpace(addressHex))
	if !common.IsHexAddress(addressHex) {
		return common.Address{}, fmt.Errorf("invalid Ethereum address: %s", addressHex)
	}

	address := common.HexToAddress(addressHex)
	if address == Zero {
		return common.Address{}, fmt.Errorf("zero address is not allowed")
	}

	return address, nil
}

// ToBytes32 left-pads a 20-byte address into the last 20 bytes of a 32-byte
// array, matching how Solidity encodes an `address` as an indexed event
// topic and how the across.rs bindings encode `depositor` for filtering.
func ToBytes32(a common.Address) [32]byte {
	var b [32]byte
	copy(b[12:], a.Bytes())
	return b
}
