// Package erc20 is a hand-authored Go binding for the standard ERC20
// interface, grounded on original_source/crates/binding/src/token.rs's
// sol! interface and trimmed to the calls the balance monitor needs.
package erc20

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

var MetaData = &bind.MetaData{
	ABI: `[
		{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
		{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]}
	]`,
}

var ParsedABI = func() abi.ABI {
	parsed, err := MetaData.GetAbi()
	if err != nil {
		panic("erc20: invalid embedded ABI: " + err.Error())
	}
	return *parsed
}()

// ERC20 is a bound instance of a token contract at a given address.
type ERC20 struct {
	address  common.Address
	contract *bind.BoundContract
}

// New binds an ERC20 instance to address using backend for calls.
func New(address common.Address, backend bind.ContractBackend) (*ERC20, error) {
	contract := bind.NewBoundContract(address, ParsedABI, backend, backend, backend)
	return &ERC20{address: address, contract: contract}, nil
}

// Address returns the bound token address.
func (e *ERC20) Address() common.Address {
	return e.address
}

// BalanceOf returns account's token balance.
func (e *ERC20) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	var out []interface{}
	if err := e.contract.Call(opts, &out, "balanceOf", account); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// Decimals returns the token's decimal precision.
func (e *ERC20) Decimals(opts *bind.CallOpts) (uint8, error) {
	var out []interface{}
	if err := e.contract.Call(opts, &out, "decimals"); err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// Symbol returns the token's ticker symbol.
func (e *ERC20) Symbol(opts *bind.CallOpts) (string, error) {
	var out []interface{}
	if err := e.contract.Call(opts, &out, "symbol"); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}
