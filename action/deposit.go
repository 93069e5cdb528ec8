package action

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum-optimism/optimism/op-e2e/e2eutils/transactions"
	"github.com/ethereum-optimism/optimism/op-e2e/e2eutils/wait"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/0x00101010/fast-withdrawal/bindings/spokepool"
	"github.com/0x00101010/fast-withdrawal/internal/client"
	"github.com/0x00101010/fast-withdrawal/internal/signer"
)

// DepositParams is the depositV3 intent the control loop's MaybeDeposit
// step builds once the L2 spoke pool's projected balance is at or below
// target and the L1 EOA balance covers the computed amount.
type DepositParams struct {
	Recipient           common.Address
	InputToken          common.Address
	OutputToken         common.Address
	InputAmount         *big.Int
	OutputAmount        *big.Int
	DestinationChainID  *big.Int
	ExclusiveRelayer    common.Address
	FillDeadline        uint32
	ExclusivityDeadline uint32
	Message             []byte
}

// Deposit bridges L1 funds into the L2 spoke pool via depositV3. Grounded on
// Golem-Base/op-probe's bridge.Bridger submission idiom (PadGasEstimate +
// wait.ForReceiptOK), retargeted from L1StandardBridge.BridgeETHTo to
// Across's SpokePool.DepositV3 per the spoke-pool rebalancing design.
type Deposit struct {
	l1Client  *ethclient.Client
	spokePool *spokepool.SpokePool
	signer    signer.Signer

	Params DepositParams
}

// NewDeposit builds a Deposit action that submits params via spokePool.
func NewDeposit(l1Client *ethclient.Client, spokePool *spokepool.SpokePool, sgnr signer.Signer, params DepositParams) *Deposit {
	return &Deposit{l1Client: l1Client, spokePool: spokePool, signer: sgnr, Params: params}
}

// validDepositParams checks the shape of params independent of chain state:
// a positive input amount, an output quote that doesn't shortchange the
// relayer pool, and a non-zero recipient.
func validDepositParams(p DepositParams) bool {
	if p.InputAmount == nil || p.InputAmount.Sign() <= 0 {
		return false
	}
	if p.OutputAmount == nil || p.OutputAmount.Cmp(p.InputAmount) < 0 {
		return false
	}
	return p.Recipient != (common.Address{})
}

func (d *Deposit) IsReady(ctx context.Context) (bool, error) {
	if !validDepositParams(d.Params) {
		return false, nil
	}

	balance, err := d.l1Client.BalanceAt(ctx, d.signer.Address(), nil)
	if err != nil {
		return false, fmt.Errorf("could not fetch l1 balance for %s: %w", d.signer.Address(), err)
	}
	return balance.Cmp(d.Params.InputAmount) >= 0, nil
}

// IsCompleted always reports false. Every depositV3 call mints a fresh
// depositId on the spoke pool, so there is no prior intent to recheck —
// whether this cycle should deposit at all is the control loop's threshold
// decision, not something this action can verify after the fact.
func (d *Deposit) IsCompleted(ctx context.Context) (bool, error) {
	return false, nil
}

func (d *Deposit) Execute(ctx context.Context) (Result, error) {
	ready, err := d.IsReady(ctx)
	if err != nil {
		return Result{}, err
	}
	if !ready {
		return Result{}, ErrNotReady
	}

	head, err := d.l1Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("could not fetch latest l1 header: %w", err)
	}
	quoteTimestamp := uint32(head.Time)

	chainID, err := d.l1Client.ChainID(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("could not fetch l1 chain id: %w", err)
	}

	opts := &bind.TransactOpts{
		From:    d.signer.Address(),
		Signer:  d.signer.SignerFn(chainID),
		Context: ctx,
		Value:   d.Params.InputAmount,
	}

	tx, err := transactions.PadGasEstimate(opts, client.GasHeadroomMultiplier, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return d.spokePool.DepositV3(opts, spokepool.DepositV3Params{
			Depositor:           d.signer.Address(),
			Recipient:           d.Params.Recipient,
			InputToken:          d.Params.InputToken,
			OutputToken:         d.Params.OutputToken,
			InputAmount:         d.Params.InputAmount,
			OutputAmount:        d.Params.OutputAmount,
			DestinationChainID:  d.Params.DestinationChainID,
			ExclusiveRelayer:    d.Params.ExclusiveRelayer,
			QuoteTimestamp:      quoteTimestamp,
			FillDeadline:        d.Params.FillDeadline,
			ExclusivityDeadline: d.Params.ExclusivityDeadline,
			Message:             d.Params.Message,
		})
	})
	if err != nil {
		return Result{}, fmt.Errorf("could not construct depositV3 transaction: %w", err)
	}

	receipt, err := wait.ForReceiptOK(ctx, d.l1Client, tx.Hash())
	if err != nil {
		var statusErr *wait.ReceiptStatusError
		if errors.As(err, &statusErr) {
			return Result{}, fmt.Errorf("%w: %s", ErrReverted, statusErr)
		}
		return Result{}, fmt.Errorf("could not fetch depositV3 receipt: %w", err)
	}

	return Result{TxHash: tx.Hash(), BlockNumber: receipt.BlockNumber.Uint64(), GasUsed: receipt.GasUsed}, nil
}
