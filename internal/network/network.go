// Package network holds the per-chain contract addresses and block-time
// constants the orchestrator needs to talk to a given deployment, the way
// Golem-Base/op-probe hardcodes its devnet predeploy addresses but
// generalized to the two networks (mainnet, testnet) this orchestrator runs
// against.
package network

import (
	"github.com/ethereum/go-ethereum/common"
)

// Type selects which deployment's addresses and chain IDs to use.
type Type string

const (
	Mainnet Type = "mainnet"
	Testnet Type = "testnet"
)

// L2ToL1MessagePasserAddr is the OP Stack predeploy address, identical on
// every OP Stack chain.
var L2ToL1MessagePasserAddr = common.HexToAddress("0x4200000000000000000000000000000000000016")

// Ethereum holds L1-side addresses and parameters.
type Ethereum struct {
	ChainID       uint64
	WETH          common.Address
	SpokePool     common.Address
	BlockTimeSecs uint64
}

// Rollup holds L2-side addresses and parameters, plus the L1 contracts that
// govern this rollup's withdrawal path.
type Rollup struct {
	ChainID                 uint64
	WETH                    common.Address
	SpokePool               common.Address
	L2ToL1MessagePasser     common.Address
	L1Portal                common.Address
	L1DisputeGameFactory    common.Address
	BlockTimeSecs           uint64
}

// Config is the complete set of addresses and parameters for one network.
type Config struct {
	Type     Type
	Ethereum Ethereum
	Rollup   Rollup
}

func mainnetEthereum() Ethereum {
	return Ethereum{
		ChainID:       1,
		WETH:          common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		SpokePool:     common.HexToAddress("0x5c7BCd6E7De5423a257D81B442095A1a6ced35C5"),
		BlockTimeSecs: 12,
	}
}

func sepoliaEthereum() Ethereum {
	return Ethereum{
		ChainID:       11155111,
		WETH:          common.HexToAddress("0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14"),
		SpokePool:     common.HexToAddress("0x5ef6C01E11889d86803e0B23e3cB3F9E9d97B662"),
		BlockTimeSecs: 12,
	}
}

func mainnetRollup() Rollup {
	return Rollup{
		ChainID:              130,
		WETH:                 common.HexToAddress("0x4200000000000000000000000000000000000006"),
		SpokePool:            common.HexToAddress("0x09aea4b2242abC8bb4BB78D537A67a245A7bEC64"),
		L2ToL1MessagePasser:  L2ToL1MessagePasserAddr,
		L1Portal:             common.HexToAddress("0x0bd48f6b86a26d3a217d0fa6ffe2b491b956a7a2"),
		L1DisputeGameFactory: common.HexToAddress("0x2f12d621a16e2d3285929c9996f478508951dfe4"),
		BlockTimeSecs:        1,
	}
}

func sepoliaRollup() Rollup {
	return Rollup{
		ChainID:              1301,
		WETH:                 common.HexToAddress("0x4200000000000000000000000000000000000006"),
		SpokePool:            common.HexToAddress("0x6999526e507Cc3b03b180BbE05E1Ff938259A874"),
		L2ToL1MessagePasser:  L2ToL1MessagePasserAddr,
		L1Portal:             common.HexToAddress("0x0d83dab629f0e0f9d36c0cbc89b69a489f0751bd"),
		L1DisputeGameFactory: common.HexToAddress("0xeff73e5aa3b9aec32c659aa3e00444d20a84394b"),
		BlockTimeSecs:        1,
	}
}

// FromType resolves a network Config from its selector string.
func FromType(t Type) (Config, error) {
	switch t {
	case Mainnet:
		return Config{Type: Mainnet, Ethereum: mainnetEthereum(), Rollup: mainnetRollup()}, nil
	case Testnet:
		return Config{Type: Testnet, Ethereum: sepoliaEthereum(), Rollup: sepoliaRollup()}, nil
	default:
		return Config{}, &UnknownNetworkError{Type: t}
	}
}

// UnknownNetworkError is returned when a config names a network selector
// this orchestrator doesn't recognize.
type UnknownNetworkError struct {
	Type Type
}

func (e *UnknownNetworkError) Error() string {
	return "unknown network type: " + string(e.Type)
}
