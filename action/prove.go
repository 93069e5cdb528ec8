package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum-optimism/optimism/op-e2e/e2eutils/transactions"
	"github.com/ethereum-optimism/optimism/op-e2e/e2eutils/wait"
	"github.com/ethereum-optimism/optimism/op-node/bindings"
	bindingspreview "github.com/ethereum-optimism/optimism/op-node/bindings/preview"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"

	"github.com/0x00101010/fast-withdrawal/internal/client"
	"github.com/0x00101010/fast-withdrawal/internal/signer"
	"github.com/0x00101010/fast-withdrawal/withdrawal"
)

// Prove submits a proveWithdrawalTransaction for a withdrawal already
// included on L2, the action backing the control loop's prove step within
// ProcessWithdrawals and the adapted `withdraw prove` debug command.
// Grounded on Golem-Base/op-probe's cmd/withdraw/prove.go, generalized from
// withdrawals.ProveWithdrawalParametersFaultProofs (which this repo cannot
// call directly, since op-probe's devnet never ran with fault proofs wired
// to a non-stock dispute game factory) to withdrawal.GenerateProof.
type Prove struct {
	l1Client          *ethclient.Client
	l2Client          *ethclient.Client
	l2Geth            *gethclient.Client
	l1Caller          bind.ContractCaller
	factory           *bindings.DisputeGameFactoryCaller
	portal            *bindingspreview.OptimismPortal2
	messagePasserAddr common.Address
	signer            signer.Signer
	state             *withdrawal.StateProvider

	WithdrawalHash common.Hash
	Transaction    withdrawal.Transaction
	L2Block        uint64
}

// NewProve builds a Prove action for the given withdrawal.
func NewProve(
	l1Client *ethclient.Client,
	l2Client *ethclient.Client,
	l2Geth *gethclient.Client,
	l1Caller bind.ContractCaller,
	factory *bindings.DisputeGameFactoryCaller,
	portal *bindingspreview.OptimismPortal2,
	messagePasserAddr common.Address,
	sgnr signer.Signer,
	state *withdrawal.StateProvider,
	withdrawalHash common.Hash,
	tx withdrawal.Transaction,
	l2Block uint64,
) *Prove {
	return &Prove{
		l1Client:          l1Client,
		l2Client:          l2Client,
		l2Geth:            l2Geth,
		l1Caller:          l1Caller,
		factory:           factory,
		portal:            portal,
		messagePasserAddr: messagePasserAddr,
		signer:            sgnr,
		state:             state,
		WithdrawalHash:    withdrawalHash,
		Transaction:       tx,
		L2Block:           l2Block,
	}
}

func (p *Prove) IsReady(ctx context.Context) (bool, error) {
	_, proven, err := p.state.IsProven(ctx, p.WithdrawalHash, p.signer.Address())
	if err != nil {
		return false, err
	}
	return !proven, nil
}

func (p *Prove) IsCompleted(ctx context.Context) (bool, error) {
	_, proven, err := p.state.IsProven(ctx, p.WithdrawalHash, p.signer.Address())
	return proven, err
}

func (p *Prove) Execute(ctx context.Context) (Result, error) {
	ready, err := p.IsReady(ctx)
	if err != nil {
		return Result{}, err
	}
	if !ready {
		return Result{}, ErrNotReady
	}

	params, err := withdrawal.GenerateProof(
		ctx, p.l1Caller, p.l2Client, p.l2Geth, p.factory, &p.portal.OptimismPortal2Caller,
		p.messagePasserAddr, p.WithdrawalHash, p.Transaction, p.L2Block,
	)
	if err != nil {
		return Result{}, err
	}

	if computed := params.OutputRootProof.Hash(); computed != params.GameRootClaim {
		return Result{}, fmt.Errorf("%w: computed %s, game claims %s", ErrOutputRootMismatch, computed, params.GameRootClaim)
	}

	chainID, err := p.l1Client.ChainID(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("could not fetch l1 chain id: %w", err)
	}

	opts := &bind.TransactOpts{
		From:    p.signer.Address(),
		Signer:  p.signer.SignerFn(chainID),
		Context: ctx,
	}

	tx, err := transactions.PadGasEstimate(opts, client.GasHeadroomMultiplier, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return p.portal.ProveWithdrawalTransaction(
			opts,
			bindingspreview.TypesWithdrawalTransaction{
				Nonce:    params.Withdrawal.Nonce,
				Sender:   params.Withdrawal.Sender,
				Target:   params.Withdrawal.Target,
				Value:    params.Withdrawal.Value,
				GasLimit: params.Withdrawal.GasLimit,
				Data:     params.Withdrawal.Data,
			},
			params.DisputeGameIndex,
			bindingspreview.TypesOutputRootProof{
				Version:                  params.OutputRootProof.Version,
				StateRoot:                params.OutputRootProof.StateRoot,
				MessagePasserStorageRoot: params.OutputRootProof.MessagePasserStorageRoot,
				LatestBlockhash:          params.OutputRootProof.LatestBlockhash,
			},
			params.WithdrawalProof,
		)
	})
	if err != nil {
		return Result{}, fmt.Errorf("could not construct proveWithdrawalTransaction: %w", err)
	}

	receipt, err := wait.ForReceiptOK(ctx, p.l1Client, tx.Hash())
	if err != nil {
		var statusErr *wait.ReceiptStatusError
		if errors.As(err, &statusErr) {
			return Result{}, fmt.Errorf("%w: %s", ErrReverted, statusErr)
		}
		return Result{}, fmt.Errorf("could not fetch proveWithdrawalTransaction receipt: %w", err)
	}

	return Result{TxHash: tx.Hash(), BlockNumber: receipt.BlockNumber.Uint64(), GasUsed: receipt.GasUsed}, nil
}
