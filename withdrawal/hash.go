// Package withdrawal reconstructs and proves L2-to-L1 withdrawals against
// the OP Stack fault-proof portal, the way op-probe's devnet tooling reads
// withdrawal events but generalized to a long-running scan-and-prove loop.
package withdrawal

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Transaction is the L2ToL1MessagePasser withdrawal transaction tuple, the
// Go mirror of original_source's binding::opstack::WithdrawalTransaction.
type Transaction struct {
	Nonce    *big.Int
	Sender   common.Address
	Target   common.Address
	Value    *big.Int
	GasLimit *big.Int
	Data     []byte
}

var hashArguments = mustArguments(
	"uint256", // nonce
	"address", // sender
	"address", // target
	"uint256", // value
	"uint256", // gasLimit
	"bytes",   // data
)

func mustArguments(types ...string) abi.Arguments {
	args := make(abi.Arguments, len(types))
	for i, t := range types {
		typ, err := abi.NewType(t, "", nil)
		if err != nil {
			panic("withdrawal: invalid abi type " + t + ": " + err.Error())
		}
		args[i] = abi.Argument{Type: typ}
	}
	return args
}

// Hash computes the canonical withdrawal hash exactly as
// Hashing.hashWithdrawal does on-chain: keccak256 of the ABI-encoded
// sequence (nonce, sender, target, value, gasLimit, data), with no tuple
// offset wrapper — the same computation original_source's
// compute_withdrawal_hash performs via abi_encode_sequence.
func Hash(tx Transaction) common.Hash {
	encoded, err := hashArguments.Pack(tx.Nonce, tx.Sender, tx.Target, tx.Value, tx.GasLimit, tx.Data)
	if err != nil {
		panic("withdrawal: failed to encode withdrawal tuple: " + err.Error())
	}
	return crypto.Keccak256Hash(encoded)
}
