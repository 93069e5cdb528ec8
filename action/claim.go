package action

import (
	"context"
	"errors"
	"fmt"

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

// Claim withdraws this relayer's accrued Across relayer refund for a token,
// the optional action behind the control loop's MaybeClaim step. Across
// relayers accrue a refund balance on the spoke pool after a relay's root
// bundle is proposed and disputed; claiming is opportunistic and never
// blocks the withdraw/prove/finalize/deposit cycle.
type Claim struct {
	l1Client  *ethclient.Client
	spokePool *spokepool.SpokePool
	signer    signer.Signer

	Token common.Address
}

// NewClaim builds a Claim action for token.
func NewClaim(l1Client *ethclient.Client, spokePool *spokepool.SpokePool, sgnr signer.Signer, token common.Address) *Claim {
	return &Claim{l1Client: l1Client, spokePool: spokePool, signer: sgnr, Token: token}
}

func (c *Claim) IsReady(ctx context.Context) (bool, error) {
	refund, err := c.spokePool.GetRelayerRefund(&bind.CallOpts{Context: ctx}, c.Token, c.signer.Address())
	if err != nil {
		return false, fmt.Errorf("could not fetch relayer refund for %s: %w", c.Token, err)
	}
	return refund.Sign() > 0, nil
}

// IsCompleted reports the inverse of IsReady: a zero refund balance means
// there is nothing outstanding to claim, whether because it was never
// accrued or because a prior Execute already swept it.
func (c *Claim) IsCompleted(ctx context.Context) (bool, error) {
	ready, err := c.IsReady(ctx)
	if err != nil {
		return false, err
	}
	return !ready, nil
}

func (c *Claim) Execute(ctx context.Context) (Result, error) {
	ready, err := c.IsReady(ctx)
	if err != nil {
		return Result{}, err
	}
	if !ready {
		return Result{}, ErrNotReady
	}

	chainID, err := c.l1Client.ChainID(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("could not fetch l1 chain id: %w", err)
	}

	opts := &bind.TransactOpts{
		From:    c.signer.Address(),
		Signer:  c.signer.SignerFn(chainID),
		Context: ctx,
	}

	tx, err := transactions.PadGasEstimate(opts, client.GasHeadroomMultiplier, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.spokePool.ClaimRelayerRefund(opts, c.Token)
	})
	if err != nil {
		return Result{}, fmt.Errorf("could not construct claimRelayerRefund transaction: %w", err)
	}

	receipt, err := wait.ForReceiptOK(ctx, c.l1Client, tx.Hash())
	if err != nil {
		var statusErr *wait.ReceiptStatusError
		if errors.As(err, &statusErr) {
			return Result{}, fmt.Errorf("%w: %s", ErrReverted, statusErr)
		}
		return Result{}, fmt.Errorf("could not fetch claimRelayerRefund receipt: %w", err)
	}

	return Result{TxHash: tx.Hash(), BlockNumber: receipt.BlockNumber.Uint64(), GasUsed: receipt.GasUsed}, nil
}
