package action

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	opbindings "github.com/ethereum-optimism/optimism/op-e2e/bindings"
	"github.com/ethereum-optimism/optimism/op-e2e/e2eutils/receipts"
	"github.com/ethereum-optimism/optimism/op-e2e/e2eutils/transactions"
	"github.com/ethereum-optimism/optimism/op-e2e/e2eutils/wait"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/0x00101010/fast-withdrawal/internal/client"
	"github.com/0x00101010/fast-withdrawal/internal/signer"
)

// Withdraw initiates an L2-to-L1 withdrawal by calling the message passer's
// initiateWithdrawal, the action that backs the control loop's
// MaybeInitiateWithdrawal step and the adapted `withdraw init` debug
// command, both grounded on Golem-Base/op-probe's cmd/withdraw/init.go.
type Withdraw struct {
	l2Client      *ethclient.Client
	messagePasser *opbindings.L2ToL1MessagePasser
	signer        signer.Signer

	Target   common.Address
	Value    *big.Int
	GasLimit *big.Int
	Data     []byte

	lastTxHash *common.Hash // fast-path cache only; IsCompleted re-derives from the chain.
}

// NewWithdraw builds a Withdraw action that sends Value wei to Target via
// the L2 message passer.
func NewWithdraw(l2Client *ethclient.Client, messagePasser *opbindings.L2ToL1MessagePasser, sgnr signer.Signer, target common.Address, value, gasLimit *big.Int, data []byte) *Withdraw {
	return &Withdraw{
		l2Client:      l2Client,
		messagePasser: messagePasser,
		signer:        sgnr,
		Target:        target,
		Value:         value,
		GasLimit:      gasLimit,
		Data:          data,
	}
}

// validWithdrawParams checks value/target independent of chain state.
func validWithdrawParams(value *big.Int, target common.Address) bool {
	if value == nil || value.Sign() <= 0 {
		return false
	}
	return target != (common.Address{})
}

func (w *Withdraw) IsReady(ctx context.Context) (bool, error) {
	if !validWithdrawParams(w.Value, w.Target) {
		return false, nil
	}

	balance, err := w.l2Client.BalanceAt(ctx, w.signer.Address(), nil)
	if err != nil {
		return false, fmt.Errorf("could not fetch l2 balance for %s: %w", w.signer.Address(), err)
	}
	return balance.Cmp(w.Value) >= 0, nil
}

// IsCompleted reports whether a previously-broadcast withdrawal with these
// exact parameters has already been included. The cached tx hash is only a
// fast path; its receipt's decoded MessagePassed event is re-checked field
// by field against this action's sender/target/value/gas/data.
func (w *Withdraw) IsCompleted(ctx context.Context) (bool, error) {
	if w.lastTxHash == nil {
		return false, nil
	}

	receipt, err := w.l2Client.TransactionReceipt(ctx, *w.lastTxHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return false, nil
		}
		return false, fmt.Errorf("could not fetch receipt for %s: %w", w.lastTxHash, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return false, nil
	}

	ev, err := receipts.FindLog(receipt.Logs, w.messagePasser.ParseMessagePassed)
	if err != nil {
		return false, nil // no MessagePassed log in this receipt
	}

	return ev.Sender == w.signer.Address() &&
		ev.Target == w.Target &&
		ev.Value.Cmp(w.Value) == 0 &&
		ev.GasLimit.Cmp(w.GasLimit) == 0 &&
		bytes.Equal(ev.Data, w.Data), nil
}

func (w *Withdraw) Execute(ctx context.Context) (Result, error) {
	ready, err := w.IsReady(ctx)
	if err != nil {
		return Result{}, err
	}
	if !ready {
		return Result{}, ErrNotReady
	}

	chainID, err := w.l2Client.ChainID(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("could not fetch l2 chain id: %w", err)
	}

	opts := &bind.TransactOpts{
		From:    w.signer.Address(),
		Signer:  w.signer.SignerFn(chainID),
		Context: ctx,
		Value:   w.Value,
	}

	tx, err := transactions.PadGasEstimate(opts, client.GasHeadroomMultiplier, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return w.messagePasser.InitiateWithdrawal(opts, w.Target, w.GasLimit, w.Data)
	})
	if err != nil {
		return Result{}, fmt.Errorf("could not construct initiateWithdrawal transaction: %w", err)
	}

	hash := tx.Hash()
	w.lastTxHash = &hash

	receipt, err := wait.ForReceiptOK(ctx, w.l2Client, hash)
	if err != nil {
		var statusErr *wait.ReceiptStatusError
		if errors.As(err, &statusErr) {
			return Result{}, fmt.Errorf("%w: %s", ErrReverted, statusErr)
		}
		return Result{}, fmt.Errorf("could not fetch initiateWithdrawal receipt: %w", err)
	}

	return Result{TxHash: hash, BlockNumber: receipt.BlockNumber.Uint64(), GasUsed: receipt.GasUsed}, nil
}
