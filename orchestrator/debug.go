package orchestrator

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/0x00101010/fast-withdrawal/action"
	"github.com/0x00101010/fast-withdrawal/withdrawal"
)

// ListPendingWithdrawals scans the configured withdrawal lookback window
// and returns every non-finalized withdrawal, for the `withdraw list` debug
// command adapted from Golem-Base/op-probe's cmd/withdraw/list.go.
func (o *Orchestrator) ListPendingWithdrawals(ctx context.Context) ([]withdrawal.Pending, error) {
	l2Head, err := o.l2Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not resolve l2 head: %w", err)
	}
	fromBlock := blocksAgo(l2Head.Number.Uint64(), o.cfg.WithdrawalLookbackSecs, o.cfg.Network.Rollup.BlockTimeSecs)
	return o.state.GetPendingWithdrawals(ctx, fromBlock, withdrawal.LatestBlock, o.signer.Address())
}

// InitiateWithdrawal submits an unconditional withdraw action for the given
// amount/target/gasLimit/data, bypassing the threshold check MaybeInitiateWithdrawal
// applies — the `withdraw init` debug command's entry point.
func (o *Orchestrator) InitiateWithdrawal(ctx context.Context, target common.Address, amount, gasLimit *big.Int, data []byte) (action.Result, error) {
	w := action.NewWithdraw(o.l2Client, o.l2MessagePasser, o.signer, target, amount, gasLimit, data)
	return w.Execute(ctx)
}

// FindPendingByHash looks up a single pending withdrawal by its canonical
// hash within the configured lookback window, for debug commands that
// operate on one withdrawal at a time.
func (o *Orchestrator) FindPendingByHash(ctx context.Context, hash common.Hash) (withdrawal.Pending, error) {
	pending, err := o.ListPendingWithdrawals(ctx)
	if err != nil {
		return withdrawal.Pending{}, err
	}
	for _, w := range pending {
		if w.Hash == hash {
			return w, nil
		}
	}
	return withdrawal.Pending{}, fmt.Errorf("withdrawal %s not found in pending set (lookback %ds)", hash, o.cfg.WithdrawalLookbackSecs)
}

// ProveByHash proves a single withdrawal identified by hash, the
// `withdraw prove` debug command's entry point.
func (o *Orchestrator) ProveByHash(ctx context.Context, hash common.Hash) (action.Result, error) {
	w, err := o.FindPendingByHash(ctx, hash)
	if err != nil {
		return action.Result{}, err
	}
	prove := action.NewProve(o.l1Client, o.l2Client, o.l2Geth, o.l1Client, o.factory, o.portal,
		o.cfg.Network.Rollup.L2ToL1MessagePasser, o.signer, o.state, w.Hash, w.Transaction, w.L2Block)
	return prove.Execute(ctx)
}

// FinalizeByHash finalizes a single withdrawal identified by hash, the
// `withdraw finalize` debug command's entry point.
func (o *Orchestrator) FinalizeByHash(ctx context.Context, hash common.Hash) (action.Result, error) {
	w, err := o.FindPendingByHash(ctx, hash)
	if err != nil {
		return action.Result{}, err
	}
	finalize := action.NewFinalize(o.l1Client, o.portal, o.signer, o.state, w.Hash, w.Transaction, o.signer.Address())
	return finalize.Execute(ctx)
}

// DepositOnce submits a single depositV3 for amount, bypassing
// MaybeDeposit's projected-balance check — the `bridge deposit` debug
// command's entry point, adapted from op-probe's
// cmd/bridge_eth_and_finalize.go to target the Across spoke pool instead
// of the native L1StandardBridge.
func (o *Orchestrator) DepositOnce(ctx context.Context, amount *big.Int, fillWindow uint32) (action.Result, error) {
	l1Head, err := o.l1Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return action.Result{}, fmt.Errorf("could not fetch l1 head: %w", err)
	}

	params := action.DepositParams{
		Recipient:           o.signer.Address(),
		InputToken:          o.cfg.Network.Ethereum.WETH,
		OutputToken:         o.cfg.Network.Rollup.WETH,
		InputAmount:         amount,
		OutputAmount:        new(big.Int).Mul(amount, big.NewInt(2)),
		DestinationChainID:  new(big.Int).SetUint64(o.cfg.Network.Rollup.ChainID),
		ExclusiveRelayer:    common.Address{},
		FillDeadline:        uint32(l1Head.Time) + fillWindow,
		ExclusivityDeadline: 0,
		Message:             nil,
	}

	dep := action.NewDeposit(o.l1Client, o.l1SpokePool, o.signer, params)
	return dep.Execute(ctx)
}
