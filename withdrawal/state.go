package withdrawal

import (
	"context"
	"fmt"

	opbindings "github.com/ethereum-optimism/optimism/op-e2e/bindings"
	bindingspreview "github.com/ethereum-optimism/optimism/op-node/bindings/preview"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"

	"github.com/0x00101010/fast-withdrawal/internal/scan"
)

// Status is a closed tagged variant describing where a withdrawal sits in
// the prove/finalize lifecycle. Adding a new status means editing this type
// and every switch over it — there is no catch-all fallback.
type Status struct {
	kind      statusKind
	Timestamp uint64 // valid only when kind == StatusProven
}

type statusKind int

const (
	StatusInitiated statusKind = iota
	StatusProven
	StatusFinalized
)

func Initiated() Status           { return Status{kind: StatusInitiated} }
func Proven(timestamp uint64) Status { return Status{kind: StatusProven, Timestamp: timestamp} }
func Finalized() Status           { return Status{kind: StatusFinalized} }

// Kind reports which variant this status holds.
func (s Status) Kind() statusKind { return s.kind }

func (s Status) String() string {
	switch s.kind {
	case StatusInitiated:
		return "Initiated"
	case StatusProven:
		return fmt.Sprintf("Proven{timestamp=%d}", s.Timestamp)
	case StatusFinalized:
		return "Finalized"
	default:
		return "Unknown"
	}
}

// Pending is a withdrawal this orchestrator still has work to do on.
type Pending struct {
	Transaction Transaction
	Hash        common.Hash
	L2Block     uint64
	Status      Status
}

// StateProvider answers questions about withdrawal lifecycle state by
// reading L1 portal storage and scanning L2 MessagePassed events, the Go
// counterpart to original_source's WithdrawalStateProvider.
type StateProvider struct {
	l2Client        *ethclient.Client
	l2MessagePasser *opbindings.L2ToL1MessagePasserFilterer
	portal          *bindingspreview.OptimismPortal2Caller
}

// NewStateProvider binds a StateProvider to the given contracts. l2Client is
// used only to resolve a "latest" block sentinel in GetPendingWithdrawals
// into a concrete number at call entry.
func NewStateProvider(l2Client *ethclient.Client, l2MessagePasser *opbindings.L2ToL1MessagePasserFilterer, portal *bindingspreview.OptimismPortal2Caller) *StateProvider {
	return &StateProvider{l2Client: l2Client, l2MessagePasser: l2MessagePasser, portal: portal}
}

// QueryWithdrawalStatus derives a withdrawal's current Status from portal
// storage: finalized takes priority, then proven (with its timestamp),
// else it is still only Initiated.
func (p *StateProvider) QueryWithdrawalStatus(ctx context.Context, hash common.Hash, proofSubmitter common.Address) (Status, error) {
	finalized, err := p.IsFinalized(ctx, hash)
	if err != nil {
		return Status{}, err
	}
	if finalized {
		return Finalized(), nil
	}

	provenAt, isProven, err := p.IsProven(ctx, hash, proofSubmitter)
	if err != nil {
		return Status{}, err
	}
	if isProven {
		return Proven(provenAt), nil
	}

	return Initiated(), nil
}

// IsFinalized reports whether hash has been finalized on the portal.
func (p *StateProvider) IsFinalized(ctx context.Context, hash common.Hash) (bool, error) {
	finalized, err := p.portal.FinalizedWithdrawals(&bind.CallOpts{Context: ctx}, hash)
	if err != nil {
		return false, fmt.Errorf("could not query finalizedWithdrawals(%s): %w", hash, err)
	}
	return finalized, nil
}

// IsProven reports whether proofSubmitter has proven hash, and the
// timestamp at which they did, per portal storage (a zero timestamp means
// not proven by this submitter).
func (p *StateProvider) IsProven(ctx context.Context, hash common.Hash, proofSubmitter common.Address) (timestamp uint64, proven bool, err error) {
	result, err := p.portal.ProvenWithdrawals(&bind.CallOpts{Context: ctx}, hash, proofSubmitter)
	if err != nil {
		return 0, false, fmt.Errorf("could not query provenWithdrawals(%s, %s): %w", hash, proofSubmitter, err)
	}
	if result.Timestamp == 0 {
		return 0, false, nil
	}
	return result.Timestamp, true, nil
}

// LatestBlock, passed as toBlock, asks GetPendingWithdrawals to resolve
// "latest" to a concrete L2 block number at call entry.
const LatestBlock uint64 = 0

// GetPendingWithdrawals scans MessagePassed events in [fromBlock, toBlock]
// (toBlock == LatestBlock resolves to the current L2 head, pinning a single
// snapshot before the scan starts so a load-balanced RPC backend can't drift
// mid-scan), recomputes each withdrawal's canonical hash (skipping, with a
// logged error, any event whose emitted hash doesn't match — a per-item
// fault that must never abort the batch), queries its current status, and
// returns everything that isn't yet Finalized. The scan proceeds in
// scan.ChunkSize-block chunks, each retried independently.
func (p *StateProvider) GetPendingWithdrawals(ctx context.Context, fromBlock, toBlock uint64, proofSubmitter common.Address) ([]Pending, error) {
	if toBlock == LatestBlock {
		head, err := p.l2Client.HeaderByNumber(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("could not resolve latest l2 block: %w", err)
		}
		toBlock = head.Number.Uint64()
	}
	if fromBlock > toBlock {
		return nil, fmt.Errorf("invalid withdrawal scan range: from %d > to %d", fromBlock, toBlock)
	}

	var pending []Pending
	err := scan.Each(ctx, fromBlock, toBlock, func(ctx context.Context, r scan.Range) error {
		chunk, err := p.scanChunk(ctx, r.From, r.To, proofSubmitter)
		if err != nil {
			return err
		}
		pending = append(pending, chunk...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pending, nil
}

func (p *StateProvider) scanChunk(ctx context.Context, fromBlock, toBlock uint64, proofSubmitter common.Address) ([]Pending, error) {
	iter, err := p.l2MessagePasser.FilterMessagePassed(&bind.FilterOpts{Start: fromBlock, End: &toBlock, Context: ctx}, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("could not filter MessagePassed events: %w", err)
	}
	defer iter.Close()

	var pending []Pending
	for iter.Next() {
		ev := iter.Event

		tx := Transaction{
			Nonce:    ev.Nonce,
			Sender:   ev.Sender,
			Target:   ev.Target,
			Value:    ev.Value,
			GasLimit: ev.GasLimit,
			Data:     ev.Data,
		}

		computed := Hash(tx)
		if computed != ev.WithdrawalHash {
			log.Error("withdrawal hash mismatch for event, skipping",
				"block", ev.Raw.BlockNumber, "computed", computed, "emitted", ev.WithdrawalHash)
			continue
		}

		status, err := p.QueryWithdrawalStatus(ctx, ev.WithdrawalHash, proofSubmitter)
		if err != nil {
			return nil, fmt.Errorf("could not query status for withdrawal %s: %w", ev.WithdrawalHash, err)
		}
		if status.Kind() == StatusFinalized {
			continue
		}

		pending = append(pending, Pending{
			Transaction: tx,
			Hash:        ev.WithdrawalHash,
			L2Block:     ev.Raw.BlockNumber,
			Status:      status,
		})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("error iterating MessagePassed events: %w", err)
	}

	return pending, nil
}
