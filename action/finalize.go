package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum-optimism/optimism/op-e2e/e2eutils/transactions"
	"github.com/ethereum-optimism/optimism/op-e2e/e2eutils/wait"
	bindingspreview "github.com/ethereum-optimism/optimism/op-node/bindings/preview"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/0x00101010/fast-withdrawal/internal/client"
	"github.com/0x00101010/fast-withdrawal/internal/signer"
	"github.com/0x00101010/fast-withdrawal/withdrawal"
)

// Finalize submits a finalizeWithdrawalTransactionExternalProof once a
// proven withdrawal has matured past the portal's proof maturity delay.
// Grounded on Golem-Base/op-probe's cmd/withdraw/finalize.go, with the
// permissioned dispute game's own ResolveClaim/Resolve steps dropped:
// resolving a game's subgames is the challenger's job, not this
// orchestrator's, so Finalize only ever waits for a game the challenger has
// already resolved. The external-proof variant (rather than
// finalizeWithdrawalTransaction) lets the finalizing signer differ from
// ProofSubmitter, per the portal's proof-submitter-scoped storage keys.
type Finalize struct {
	l1Client *ethclient.Client
	portal   *bindingspreview.OptimismPortal2
	signer   signer.Signer
	state    *withdrawal.StateProvider

	WithdrawalHash common.Hash
	Transaction    withdrawal.Transaction
	ProofSubmitter common.Address
}

// NewFinalize builds a Finalize action for the given withdrawal, finalizing
// the proof submitted by proofSubmitter.
func NewFinalize(l1Client *ethclient.Client, portal *bindingspreview.OptimismPortal2, sgnr signer.Signer, state *withdrawal.StateProvider, withdrawalHash common.Hash, tx withdrawal.Transaction, proofSubmitter common.Address) *Finalize {
	return &Finalize{l1Client: l1Client, portal: portal, signer: sgnr, state: state, WithdrawalHash: withdrawalHash, Transaction: tx, ProofSubmitter: proofSubmitter}
}

// IsReady reports whether this withdrawal can be finalized right now. A
// proven-but-not-yet-matured withdrawal is reported not ready with a
// *MaturityError describing how much longer to wait, so the control loop
// can schedule a retry instead of busy-polling.
func (f *Finalize) IsReady(ctx context.Context) (bool, error) {
	finalized, err := f.state.IsFinalized(ctx, f.WithdrawalHash)
	if err != nil {
		return false, err
	}
	if finalized {
		return false, nil
	}

	provenAt, proven, err := f.state.IsProven(ctx, f.WithdrawalHash, f.ProofSubmitter)
	if err != nil {
		return false, err
	}
	if !proven {
		return false, nil
	}

	delay, err := f.portal.ProofMaturityDelaySeconds(&bind.CallOpts{Context: ctx})
	if err != nil {
		return false, fmt.Errorf("could not fetch proof maturity delay: %w", err)
	}

	head, err := f.l1Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("could not fetch latest l1 header: %w", err)
	}

	if remaining, matured := checkMaturity(provenAt, delay.Uint64(), head.Time); !matured {
		return false, &MaturityError{RemainingSeconds: remaining}
	}

	return true, nil
}

// checkMaturity reports whether now is at or past provenAt+delaySeconds. If
// not, it also returns how many seconds remain.
func checkMaturity(provenAt, delaySeconds, now uint64) (remainingSeconds uint64, matured bool) {
	matureAt := provenAt + delaySeconds
	if now >= matureAt {
		return 0, true
	}
	return matureAt - now, false
}

func (f *Finalize) IsCompleted(ctx context.Context) (bool, error) {
	return f.state.IsFinalized(ctx, f.WithdrawalHash)
}

func (f *Finalize) Execute(ctx context.Context) (Result, error) {
	ready, err := f.IsReady(ctx)
	if err != nil {
		return Result{}, err
	}
	if !ready {
		return Result{}, ErrNotReady
	}

	chainID, err := f.l1Client.ChainID(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("could not fetch l1 chain id: %w", err)
	}

	opts := &bind.TransactOpts{
		From:    f.signer.Address(),
		Signer:  f.signer.SignerFn(chainID),
		Context: ctx,
	}

	tx, err := transactions.PadGasEstimate(opts, client.GasHeadroomMultiplier, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return f.portal.FinalizeWithdrawalTransactionExternalProof(opts, bindingspreview.TypesWithdrawalTransaction{
			Nonce:    f.Transaction.Nonce,
			Sender:   f.Transaction.Sender,
			Target:   f.Transaction.Target,
			Value:    f.Transaction.Value,
			GasLimit: f.Transaction.GasLimit,
			Data:     f.Transaction.Data,
		}, f.ProofSubmitter)
	})
	if err != nil {
		return Result{}, fmt.Errorf("could not construct finalizeWithdrawalTransactionExternalProof: %w", err)
	}

	receipt, err := wait.ForReceiptOK(ctx, f.l1Client, tx.Hash())
	if err != nil {
		var statusErr *wait.ReceiptStatusError
		if errors.As(err, &statusErr) {
			return Result{}, fmt.Errorf("%w: %s", ErrReverted, statusErr)
		}
		return Result{}, fmt.Errorf("could not fetch finalizeWithdrawalTransactionExternalProof receipt: %w", err)
	}

	return Result{TxHash: tx.Hash(), BlockNumber: receipt.BlockNumber.Uint64(), GasUsed: receipt.GasUsed}, nil
}
