// Package orchestrator wires the withdrawal, deposit, balance, and action
// packages together into the control loop described by
// original_source's bin/orchestrator: advance in-flight L2-to-L1
// withdrawals, initiate new ones once the L2 EOA accumulates too much, and
// keep the L2 spoke pool topped up from L1. Grounded on Golem-Base/op-probe's
// cmd package for contract wiring, generalized from one-shot debug commands
// into a long-running cycle.
package orchestrator

import (
	"context"
	"fmt"

	opbindings "github.com/ethereum-optimism/optimism/op-e2e/bindings"
	"github.com/ethereum-optimism/optimism/op-node/bindings"
	bindingspreview "github.com/ethereum-optimism/optimism/op-node/bindings/preview"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"
	"github.com/ethereum/go-ethereum/log"

	"github.com/0x00101010/fast-withdrawal/balance"
	"github.com/0x00101010/fast-withdrawal/bindings/spokepool"
	"github.com/0x00101010/fast-withdrawal/deposit"
	"github.com/0x00101010/fast-withdrawal/internal/client"
	"github.com/0x00101010/fast-withdrawal/internal/config"
	"github.com/0x00101010/fast-withdrawal/internal/signer"
	"github.com/0x00101010/fast-withdrawal/metrics"
	"github.com/0x00101010/fast-withdrawal/withdrawal"
)

// Orchestrator holds every connection and contract binding the control loop
// needs across cycles, built once at startup and reused for the process's
// lifetime.
type Orchestrator struct {
	cfg    *config.Resolved
	signer signer.Signer

	l1Client *ethclient.Client
	l2Client *ethclient.Client
	l2Geth   *gethclient.Client

	l2MessagePasser *opbindings.L2ToL1MessagePasser
	portal          *bindingspreview.OptimismPortal2
	factory         *bindings.DisputeGameFactoryCaller

	l1SpokePool *spokepool.SpokePool
	l2SpokePool *spokepool.SpokePool

	state          *withdrawal.StateProvider
	balances       *balance.Monitor
	l2Balances     *balance.Monitor
	inflight       *deposit.Provider
	metrics        *metrics.Metrics
}

// New dials L1 and L2, binds every contract this orchestrator talks to, and
// returns a ready-to-run Orchestrator. It does not start the control loop —
// call Run for that.
func New(ctx context.Context, cfg *config.Resolved, sgnr signer.Signer, m *metrics.Metrics) (*Orchestrator, error) {
	l1Client, l1ChainID, err := client.Dial(ctx, cfg.L1RPCURL)
	if err != nil {
		return nil, fmt.Errorf("could not dial l1: %w", err)
	}
	if l1ChainID.Uint64() != cfg.Network.Ethereum.ChainID {
		return nil, fmt.Errorf("l1 rpc reports chain id %s, expected %d for network %s", l1ChainID, cfg.Network.Ethereum.ChainID, cfg.Network.Type)
	}

	l2Client, l2ChainID, err := client.Dial(ctx, cfg.L2RPCURL)
	if err != nil {
		return nil, fmt.Errorf("could not dial l2: %w", err)
	}
	if l2ChainID.Uint64() != cfg.Network.Rollup.ChainID {
		return nil, fmt.Errorf("l2 rpc reports chain id %s, expected %d for network %s", l2ChainID, cfg.Network.Rollup.ChainID, cfg.Network.Type)
	}

	l2Geth := gethclient.New(l2Client.Client())

	l2MessagePasser, err := opbindings.NewL2ToL1MessagePasser(cfg.Network.Rollup.L2ToL1MessagePasser, l2Client)
	if err != nil {
		return nil, fmt.Errorf("could not bind l2-to-l1 message passer: %w", err)
	}

	portal, err := bindingspreview.NewOptimismPortal2(cfg.Network.Rollup.L1Portal, l1Client)
	if err != nil {
		return nil, fmt.Errorf("could not bind optimism portal: %w", err)
	}

	factory, err := bindings.NewDisputeGameFactoryCaller(cfg.Network.Rollup.L1DisputeGameFactory, l1Client)
	if err != nil {
		return nil, fmt.Errorf("could not bind dispute game factory: %w", err)
	}

	l1SpokePool, err := spokepool.New(cfg.Network.Ethereum.SpokePool, l1Client)
	if err != nil {
		return nil, fmt.Errorf("could not bind l1 spoke pool: %w", err)
	}

	l2SpokePool, err := spokepool.New(cfg.Network.Rollup.SpokePool, l2Client)
	if err != nil {
		return nil, fmt.Errorf("could not bind l2 spoke pool: %w", err)
	}

	state := withdrawal.NewStateProvider(l2Client, &l2MessagePasser.L2ToL1MessagePasserFilterer, &portal.OptimismPortal2Caller)
	inflight := deposit.NewProvider(l1Client, l2Client, cfg.Network.Ethereum.SpokePool, cfg.Network.Rollup.SpokePool)

	return &Orchestrator{
		cfg:             cfg,
		signer:          sgnr,
		l1Client:        l1Client,
		l2Client:        l2Client,
		l2Geth:          l2Geth,
		l2MessagePasser: l2MessagePasser,
		portal:          portal,
		factory:         factory,
		l1SpokePool:     l1SpokePool,
		l2SpokePool:     l2SpokePool,
		state:           state,
		balances:        balance.NewMonitor(l1Client),
		l2Balances:      balance.NewMonitor(l2Client),
		inflight:        inflight,
		metrics:         m,
	}, nil
}

// Config returns the resolved configuration this Orchestrator was built
// with, for callers (the CLI's run and withdraw init commands) that need to report or
// act on it without reaching into orchestrator internals.
func (o *Orchestrator) Config() *config.Resolved {
	return o.cfg
}

// Close releases the underlying RPC connections.
func (o *Orchestrator) Close() {
	o.l1Client.Close()
	o.l2Client.Close()
}

func (o *Orchestrator) logDryRun(step string, keyvals ...any) {
	log.Info("dry run: skipping execute", append([]any{"step", step}, keyvals...)...)
}
