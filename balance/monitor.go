// Package balance provides a uniform query surface over the three kinds of
// balance the control loop cares about: an account's native ETH, an
// account's ERC-20 token balance, and a relayer's claimable refund parked in
// the spoke pool. Grounded on Golem-Base/op-probe's direct ethclient.BalanceAt
// calls in cmd/deposit.go, generalized into a reusable type instead of
// inline balance reads scattered across commands.
package balance

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/0x00101010/fast-withdrawal/bindings/erc20"
	"github.com/0x00101010/fast-withdrawal/bindings/spokepool"
)

// Monitor queries balances on a single chain.
type Monitor struct {
	client *ethclient.Client
}

// NewMonitor binds a Monitor to client.
func NewMonitor(client *ethclient.Client) *Monitor {
	return &Monitor{client: client}
}

// Native returns account's native-asset balance.
func (m *Monitor) Native(ctx context.Context, account common.Address) (*big.Int, error) {
	bal, err := m.client.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("could not fetch native balance for %s: %w", account, err)
	}
	return bal, nil
}

// ERC20 returns account's balance of the ERC-20 token at tokenAddr.
func (m *Monitor) ERC20(ctx context.Context, tokenAddr, account common.Address) (*big.Int, error) {
	token, err := erc20.New(tokenAddr, m.client)
	if err != nil {
		return nil, fmt.Errorf("could not bind erc20 token %s: %w", tokenAddr, err)
	}
	bal, err := token.BalanceOf(&bind.CallOpts{Context: ctx}, account)
	if err != nil {
		return nil, fmt.Errorf("could not fetch erc20 balance for %s on token %s: %w", account, tokenAddr, err)
	}
	return bal, nil
}

// SpokePoolBalance returns the spoke pool's held balance of tokenAddr — the
// "actual" half of the deposit action's projected-balance formula, read the
// same way any ERC-20 holder's balance is read.
func (m *Monitor) SpokePoolBalance(ctx context.Context, tokenAddr, spokePoolAddr common.Address) (*big.Int, error) {
	return m.ERC20(ctx, tokenAddr, spokePoolAddr)
}

// RelayerRefund returns the refund relayer has accrued in the spoke pool at
// spokePoolAddr for tokenAddr, the third balance kind this orchestrator's
// optional claim action consumes.
func (m *Monitor) RelayerRefund(ctx context.Context, spokePoolAddr, tokenAddr, relayer common.Address) (*big.Int, error) {
	pool, err := spokepool.New(spokePoolAddr, m.client)
	if err != nil {
		return nil, fmt.Errorf("could not bind spoke pool %s: %w", spokePoolAddr, err)
	}
	refund, err := pool.GetRelayerRefund(&bind.CallOpts{Context: ctx}, tokenAddr, relayer)
	if err != nil {
		return nil, fmt.Errorf("could not fetch relayer refund for %s: %w", relayer, err)
	}
	return refund, nil
}
