// Package spokepool is a hand-authored Go binding for Across Protocol's
// SpokePool contract, built with the same go-ethereum/accounts/abi/bind
// machinery abigen itself generates into (see the delegatecallproxy binding
// in the example pack for the generated shape this follows). No Go binding
// for SpokePool exists anywhere in the reference pack, so this is written
// directly from original_source/crates/binding/src/across.rs's `sol!`
// interface, trimmed to the functions and events this orchestrator calls.
package spokepool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// MetaData mirrors bind.MetaData's shape: the ABI JSON this binding was
// built from.
var MetaData = &bind.MetaData{
	ABI: `[
		{"type":"function","name":"depositV3","stateMutability":"payable","inputs":[
			{"name":"depositor","type":"address"},
			{"name":"recipient","type":"address"},
			{"name":"inputToken","type":"address"},
			{"name":"outputToken","type":"address"},
			{"name":"inputAmount","type":"uint256"},
			{"name":"outputAmount","type":"uint256"},
			{"name":"destinationChainId","type":"uint256"},
			{"name":"exclusiveRelayer","type":"address"},
			{"name":"quoteTimestamp","type":"uint32"},
			{"name":"fillDeadline","type":"uint32"},
			{"name":"exclusivityDeadline","type":"uint32"},
			{"name":"message","type":"bytes"}
		],"outputs":[]},
		{"type":"function","name":"getRelayerRefund","stateMutability":"view","inputs":[
			{"name":"token","type":"address"},
			{"name":"relayer","type":"address"}
		],"outputs":[{"name":"","type":"uint256"}]},
		{"type":"function","name":"claimRelayerRefund","stateMutability":"nonpayable","inputs":[
			{"name":"token","type":"address"}
		],"outputs":[]},
		{"type":"event","name":"FundsDeposited","anonymous":false,"inputs":[
			{"name":"amount","type":"uint256","indexed":false},
			{"name":"originChainId","type":"uint256","indexed":false},
			{"name":"destinationChainId","type":"uint256","indexed":true},
			{"name":"relayerFeePct","type":"int64","indexed":false},
			{"name":"depositId","type":"uint32","indexed":true},
			{"name":"quoteTimestamp","type":"uint32","indexed":false},
			{"name":"originToken","type":"address","indexed":false},
			{"name":"recipient","type":"address","indexed":false},
			{"name":"depositor","type":"address","indexed":true},
			{"name":"message","type":"bytes","indexed":false}
		]},
		{"type":"event","name":"FilledRelay","anonymous":false,"inputs":[
			{"name":"inputAmount","type":"uint256","indexed":false},
			{"name":"outputAmount","type":"uint256","indexed":false},
			{"name":"originChainId","type":"uint256","indexed":true},
			{"name":"depositId","type":"uint32","indexed":true},
			{"name":"relayer","type":"address","indexed":false},
			{"name":"depositor","type":"address","indexed":false},
			{"name":"recipient","type":"address","indexed":false},
			{"name":"message","type":"bytes","indexed":false}
		]},
		{"type":"event","name":"ClaimedRelayerRefund","anonymous":false,"inputs":[
			{"name":"token","type":"address","indexed":true},
			{"name":"relayer","type":"address","indexed":true},
			{"name":"amount","type":"uint256","indexed":false}
		]}
	]`,
}

// ParsedABI parses MetaData.ABI once for reuse by log decoding helpers.
var ParsedABI = func() abi.ABI {
	parsed, err := MetaData.GetAbi()
	if err != nil {
		panic("spokepool: invalid embedded ABI: " + err.Error())
	}
	return *parsed
}()

// SpokePool is a bound instance of the contract at a given address.
type SpokePool struct {
	address  common.Address
	contract *bind.BoundContract
}

// New binds a SpokePool instance to address using backend for calls,
// transactions, and log filtering.
func New(address common.Address, backend bind.ContractBackend) (*SpokePool, error) {
	contract := bind.NewBoundContract(address, ParsedABI, backend, backend, backend)
	return &SpokePool{address: address, contract: contract}, nil
}

// Address returns the bound contract address.
func (s *SpokePool) Address() common.Address {
	return s.address
}

// DepositV3Params bundles depositV3's twelve arguments, matching the V3
// signature named in full in original_source's across.rs sol! interface.
type DepositV3Params struct {
	Depositor           common.Address
	Recipient            common.Address
	InputToken           common.Address
	OutputToken          common.Address
	InputAmount          *big.Int
	OutputAmount         *big.Int
	DestinationChainID   *big.Int
	ExclusiveRelayer     common.Address
	QuoteTimestamp       uint32
	FillDeadline         uint32
	ExclusivityDeadline  uint32
	Message              []byte
}

// DepositV3 submits a depositV3 transaction, sending value wei (InputAmount
// for a native-asset deposit) alongside the call.
func (s *SpokePool) DepositV3(opts *bind.TransactOpts, p DepositV3Params) (*types.Transaction, error) {
	return s.contract.Transact(opts, "depositV3",
		p.Depositor,
		p.Recipient,
		p.InputToken,
		p.OutputToken,
		p.InputAmount,
		p.OutputAmount,
		p.DestinationChainID,
		p.ExclusiveRelayer,
		p.QuoteTimestamp,
		p.FillDeadline,
		p.ExclusivityDeadline,
		p.Message,
	)
}

// GetRelayerRefund returns the refund owed to relayer for token.
func (s *SpokePool) GetRelayerRefund(opts *bind.CallOpts, token, relayer common.Address) (*big.Int, error) {
	var out []interface{}
	if err := s.contract.Call(opts, &out, "getRelayerRefund", token, relayer); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// ClaimRelayerRefund withdraws the caller's accrued refund for token.
func (s *SpokePool) ClaimRelayerRefund(opts *bind.TransactOpts, token common.Address) (*types.Transaction, error) {
	return s.contract.Transact(opts, "claimRelayerRefund", token)
}

// FundsDepositedEvent is the decoded form of a FundsDeposited log.
type FundsDepositedEvent struct {
	Amount             *big.Int
	OriginChainID      *big.Int
	DestinationChainID *big.Int
	RelayerFeePct      int64
	DepositID          uint32
	QuoteTimestamp     uint32
	OriginToken        common.Address
	Recipient          common.Address
	Depositor          common.Address
	Message            []byte
}

// FilledRelayEvent is the decoded form of a FilledRelay log.
type FilledRelayEvent struct {
	InputAmount   *big.Int
	OutputAmount  *big.Int
	OriginChainID *big.Int
	DepositID     uint32
	Relayer       common.Address
	Depositor     common.Address
	Recipient     common.Address
	Message       []byte
}

// UnpackFundsDeposited decodes a raw log into a FundsDepositedEvent.
func UnpackFundsDeposited(log types.Log) (*FundsDepositedEvent, error) {
	var ev FundsDepositedEvent
	if err := ParsedABI.UnpackIntoInterface(&ev, "FundsDeposited", log.Data); err != nil {
		return nil, err
	}
	ev.DestinationChainID = new(big.Int).SetBytes(log.Topics[1].Bytes())
	ev.DepositID = uint32(new(big.Int).SetBytes(log.Topics[2].Bytes()).Uint64())
	ev.Depositor = common.BytesToAddress(log.Topics[3].Bytes())
	return &ev, nil
}

// UnpackFilledRelay decodes a raw log into a FilledRelayEvent.
func UnpackFilledRelay(log types.Log) (*FilledRelayEvent, error) {
	var ev FilledRelayEvent
	if err := ParsedABI.UnpackIntoInterface(&ev, "FilledRelay", log.Data); err != nil {
		return nil, err
	}
	ev.OriginChainID = new(big.Int).SetBytes(log.Topics[1].Bytes())
	ev.DepositID = uint32(new(big.Int).SetBytes(log.Topics[2].Bytes()).Uint64())
	return &ev, nil
}

// FundsDepositedTopic is the log topic0 for the FundsDeposited event.
func FundsDepositedTopic() common.Hash {
	return ParsedABI.Events["FundsDeposited"].ID
}

// FilledRelayTopic is the log topic0 for the FilledRelay event.
func FilledRelayTopic() common.Hash {
	return ParsedABI.Events["FilledRelay"].ID
}
