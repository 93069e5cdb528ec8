// Package deposit correlates Across Protocol deposit events on L1 with
// their fills on L2 to compute the operator's in-flight (deposited but not
// yet filled) bridge total, the counterpart of original_source's
// InFlightDepositProvider. Grounded on the chunked-scan idiom already used
// by withdrawal.StateProvider and on bindings/spokepool's hand-authored
// event decoding.
package deposit

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/0x00101010/fast-withdrawal/bindings/spokepool"
	"github.com/0x00101010/fast-withdrawal/internal/addr"
	"github.com/0x00101010/fast-withdrawal/internal/scan"
)

// InFlight is a deposit observed on L1 with no matching fill yet observed on
// L2. Its correlation key is (OriginChainID, DepositID) — DepositID alone is
// not globally unique across spoke-pool pairs.
type InFlight struct {
	DepositID          uint32
	OriginChainID      *big.Int
	DestinationChainID *big.Int
	InputAmount        *big.Int
	Depositor          common.Address
	L1BlockNumber      uint64
}

// Provider correlates L1 FundsDeposited events against L2 FilledRelay events
// across a configured lookback window.
type Provider struct {
	l1Client        *ethclient.Client
	l2Client        *ethclient.Client
	l1SpokePoolAddr common.Address
	l2SpokePoolAddr common.Address
}

// NewProvider binds a Provider to the L1 and L2 spoke-pool deployments.
func NewProvider(l1Client, l2Client *ethclient.Client, l1SpokePoolAddr, l2SpokePoolAddr common.Address) *Provider {
	return &Provider{
		l1Client:        l1Client,
		l2Client:        l2Client,
		l1SpokePoolAddr: l1SpokePoolAddr,
		l2SpokePoolAddr: l2SpokePoolAddr,
	}
}

// GetInFlightDeposits returns every deposit from depositor, bound for
// destinationChainID, originated on originChainID, observed on L1 within
// lookbackSecs but with no corresponding FilledRelay observed on L2 within
// the same window.
func (p *Provider) GetInFlightDeposits(
	ctx context.Context,
	depositor common.Address,
	originChainID, destinationChainID *big.Int,
	lookbackSecs, l1BlockTimeSecs, l2BlockTimeSecs uint64,
) ([]InFlight, error) {
	l1Head, err := p.l1Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not resolve l1 head: %w", err)
	}
	l2Head, err := p.l2Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not resolve l2 head: %w", err)
	}

	l1From := blocksAgo(l1Head.Number.Uint64(), lookbackSecs, l1BlockTimeSecs)
	l2From := blocksAgo(l2Head.Number.Uint64(), lookbackSecs, l2BlockTimeSecs)

	deposits, err := p.scanFundsDeposited(ctx, l1From, l1Head.Number.Uint64(), depositor, destinationChainID)
	if err != nil {
		return nil, fmt.Errorf("could not scan FundsDeposited events: %w", err)
	}
	if len(deposits) == 0 {
		return nil, nil
	}

	filled, err := p.scanFilledDepositIDs(ctx, l2From, l2Head.Number.Uint64(), originChainID)
	if err != nil {
		return nil, fmt.Errorf("could not scan FilledRelay events: %w", err)
	}

	var inflight []InFlight
	for _, d := range deposits {
		if filled[d.DepositID] {
			continue
		}
		inflight = append(inflight, d)
	}
	return inflight, nil
}

// GetInFlightDepositTotal sums InputAmount across every in-flight deposit.
func (p *Provider) GetInFlightDepositTotal(
	ctx context.Context,
	depositor common.Address,
	originChainID, destinationChainID *big.Int,
	lookbackSecs, l1BlockTimeSecs, l2BlockTimeSecs uint64,
) (*big.Int, error) {
	deposits, err := p.GetInFlightDeposits(ctx, depositor, originChainID, destinationChainID, lookbackSecs, l1BlockTimeSecs, l2BlockTimeSecs)
	if err != nil {
		return nil, err
	}

	total := big.NewInt(0)
	for _, d := range deposits {
		total.Add(total, d.InputAmount)
	}
	return total, nil
}

func (p *Provider) scanFundsDeposited(ctx context.Context, from, to uint64, depositor common.Address, destinationChainID *big.Int) ([]InFlight, error) {
	depositorTopic := common.Hash(addr.ToBytes32(depositor))
	destinationTopic := common.BigToHash(destinationChainID)

	var deposits []InFlight
	err := scan.Each(ctx, from, to, func(ctx context.Context, r scan.Range) error {
		logs, err := p.l1Client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(r.From),
			ToBlock:   new(big.Int).SetUint64(r.To),
			Addresses: []common.Address{p.l1SpokePoolAddr},
			Topics: [][]common.Hash{
				{spokepool.FundsDepositedTopic()},
				{destinationTopic},
				nil,
				{depositorTopic},
			},
		})
		if err != nil {
			return err
		}

		for _, l := range logs {
			ev, err := spokepool.UnpackFundsDeposited(l)
			if err != nil {
				return fmt.Errorf("could not decode FundsDeposited log at block %d: %w", l.BlockNumber, err)
			}
			deposits = append(deposits, InFlight{
				DepositID:          ev.DepositID,
				OriginChainID:      ev.OriginChainID,
				DestinationChainID: ev.DestinationChainID,
				InputAmount:        ev.Amount,
				Depositor:          ev.Depositor,
				L1BlockNumber:      l.BlockNumber,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deposits, nil
}

func (p *Provider) scanFilledDepositIDs(ctx context.Context, from, to uint64, originChainID *big.Int) (map[uint32]bool, error) {
	originTopic := common.BigToHash(originChainID)

	filled := make(map[uint32]bool)
	err := scan.Each(ctx, from, to, func(ctx context.Context, r scan.Range) error {
		logs, err := p.l2Client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(r.From),
			ToBlock:   new(big.Int).SetUint64(r.To),
			Addresses: []common.Address{p.l2SpokePoolAddr},
			Topics: [][]common.Hash{
				{spokepool.FilledRelayTopic()},
				{originTopic},
			},
		})
		if err != nil {
			return err
		}

		for _, l := range logs {
			ev, err := spokepool.UnpackFilledRelay(l)
			if err != nil {
				return fmt.Errorf("could not decode FilledRelay log at block %d: %w", l.BlockNumber, err)
			}
			filled[ev.DepositID] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return filled, nil
}

// blocksAgo converts a lookback window in seconds into a starting block
// number, floored at zero.
func blocksAgo(head, lookbackSecs, blockTimeSecs uint64) uint64 {
	if blockTimeSecs == 0 {
		return head
	}
	blocks := lookbackSecs / blockTimeSecs
	if blocks >= head {
		return 0
	}
	return head - blocks
}
