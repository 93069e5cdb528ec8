// Package client dials L1/L2 execution clients and waits for them to report
// block production, the way Golem-Base/op-probe's internal.ConnectClient
// does for its devnet tooling.
package client

import (
	"context"
	"fmt"
	"math/big"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
)

// GasHeadroomMultiplier is applied to the node's gas estimate to leave
// headroom for state changes between estimation and inclusion.
const GasHeadroomMultiplier = 1.2

// WaitForChainsStart polls every client once a second until each has
// produced at least one block, or ctx is cancelled.
func WaitForChainsStart(ctx context.Context, clients []*ethclient.Client) error {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	ready := make(map[*ethclient.Client]bool)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for all clients to report block production")

		case <-ticker.C:
			for _, c := range clients {
				if ready[c] {
					continue
				}

				header, err := c.HeaderByNumber(ctx, nil)
				if err != nil {
					log.Error("received error fetching header", "error", err)
					continue
				}

				if header.Number.Uint64() > 0 {
					ready[c] = true
				}
			}

			if len(ready) == len(clients) {
				return nil
			}
		}
	}
}

// Dial connects to rpcUrl and returns the client and its chain ID. It does
// not wait for block production — production L1/L2 endpoints are already
// live, unlike the ephemeral devnets op-probe's ConnectClient targets.
func Dial(ctx context.Context, rpcUrl string) (*ethclient.Client, *big.Int, error) {
	c, err := ethclient.DialContext(ctx, rpcUrl)
	if err != nil {
		return nil, nil, fmt.Errorf("could not dial rpc url at %s: %w", rpcUrl, err)
	}

	chainID, err := c.ChainID(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not fetch chain id from %s: %w", rpcUrl, err)
	}

	log.Info("connected to chain", "url", rpcUrl, "chainId", chainID)

	return c, chainID, nil
}

// DialAndWait is Dial followed by WaitForChainsStart, for devnet-style
// debug commands (mirrors op-probe's ConnectClient).
func DialAndWait(ctx context.Context, rpcUrl string) (*ethclient.Client, *big.Int, error) {
	c, err := ethclient.DialContext(ctx, rpcUrl)
	if err != nil {
		return nil, nil, fmt.Errorf("could not dial rpc url at %s: %w", rpcUrl, err)
	}

	log.Info("successfully dialed client", "url", rpcUrl)

	timeoutCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if err := WaitForChainsStart(timeoutCtx, []*ethclient.Client{c}); err != nil {
		return nil, nil, fmt.Errorf("client has not started: %w", err)
	}

	chainID, err := c.ChainID(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not fetch chain id: %w", err)
	}

	log.Info("successfully connected to chain", "chainId", chainID)

	return c, chainID, nil
}

// FillTransaction fills every unset field of tx (chain ID, nonce, EIP-1559
// fee fields, gas limit) by querying c, leaving any already-set field
// untouched. It is idempotent: calling it twice on an already-filled
// request is a no-op aside from repeated RPC calls.
func FillTransaction(ctx context.Context, c *ethclient.Client, from common.Address, tx *types.DynamicFeeTx) error {
	if tx.ChainID == nil {
		chainID, err := c.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("could not fetch chain id: %w", err)
		}
		tx.ChainID = chainID
	}

	if tx.Nonce == 0 {
		nonce, err := c.PendingNonceAt(ctx, from)
		if err != nil {
			return fmt.Errorf("could not fetch pending nonce for %s: %w", from, err)
		}
		tx.Nonce = nonce
	}

	if tx.GasTipCap == nil {
		tip, err := c.SuggestGasTipCap(ctx)
		if err != nil {
			return fmt.Errorf("could not fetch suggested gas tip cap: %w", err)
		}
		tx.GasTipCap = tip
	}

	if tx.GasFeeCap == nil {
		head, err := c.HeaderByNumber(ctx, nil)
		if err != nil {
			return fmt.Errorf("could not fetch latest header: %w", err)
		}
		if head.BaseFee == nil {
			return fmt.Errorf("chain does not report a base fee; cannot fill an EIP-1559 fee cap")
		}
		feeCap := new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tx.GasTipCap)
		tx.GasFeeCap = feeCap
	}

	if tx.Gas == 0 {
		estimate, err := c.EstimateGas(ctx, ethereum.CallMsg{
			From:      from,
			To:        tx.To,
			GasFeeCap: tx.GasFeeCap,
			GasTipCap: tx.GasTipCap,
			Value:     tx.Value,
			Data:      tx.Data,
		})
		if err != nil {
			return fmt.Errorf("could not estimate gas: %w", err)
		}
		tx.Gas = uint64(float64(estimate) * GasHeadroomMultiplier)
	}

	return nil
}
