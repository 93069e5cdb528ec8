package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum-optimism/optimism/op-node/bindings"
	bindingspreview "github.com/ethereum-optimism/optimism/op-node/bindings/preview"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"
)

// ErrInsufficientCoverage is returned when no dispute game of the portal's
// respected type yet commits to an L2 block at or after the withdrawal's —
// the newest known game is still older than the withdrawal. It is a
// distinct, non-retryable error class per spec: the caller must wait for a
// fresher game, not retry immediately.
var ErrInsufficientCoverage = errors.New("no dispute game covers this withdrawal's l2 block yet")

// OutputVersionV0 is the output-root version byte OP Stack chains have used
// since genesis.
var OutputVersionV0 = common.Hash{}

// OutputRootProof is the (version, stateRoot, messagePasserStorageRoot,
// latestBlockhash) tuple whose hash must equal a dispute game's root claim.
type OutputRootProof struct {
	Version                  common.Hash
	StateRoot                common.Hash
	MessagePasserStorageRoot common.Hash
	LatestBlockhash          common.Hash
}

// Hash computes keccak256(version || stateRoot || messagePasserStorageRoot
// || latestBlockhash), the L1's summary of L2 state. This MUST equal the
// selected dispute game's root claim before a proof is submitted — a
// mismatch is an invariant violation, not a retryable fault.
func (p OutputRootProof) Hash() common.Hash {
	return crypto.Keccak256Hash(
		p.Version.Bytes(),
		p.StateRoot.Bytes(),
		p.MessagePasserStorageRoot.Bytes(),
		p.LatestBlockhash.Bytes(),
	)
}

// ProveParams is everything proveWithdrawalTransaction needs.
type ProveParams struct {
	Withdrawal       Transaction
	DisputeGameIndex *big.Int
	OutputRootProof  OutputRootProof
	WithdrawalProof  [][]byte

	// GameRootClaim is the selected dispute game's rootClaim(), fetched once
	// during game selection so the caller can assert OutputRootProof.Hash()
	// == GameRootClaim before ever broadcasting a proveWithdrawalTransaction.
	GameRootClaim common.Hash
}

// ComputeStorageSlot returns the L2ToL1MessagePasser storage slot backing
// `sentMessages[withdrawalHash]`, a slot-0 mapping: keccak256(hash || 32
// zero bytes), matching original_source's compute_storage_slot.
func ComputeStorageSlot(withdrawalHash common.Hash) common.Hash {
	var buf [64]byte
	copy(buf[:32], withdrawalHash.Bytes())
	return crypto.Keccak256Hash(buf[:])
}

// GenerateProof assembles a ProveParams for a withdrawal already included on
// L2, following original_source's generate_proof: find a covering dispute
// game, fetch the game's L2 block header and a storage proof for the
// withdrawal's slot at that exact block, then build the output-root proof.
func GenerateProof(
	ctx context.Context,
	l1Caller bind.ContractCaller,
	l2Client *ethclient.Client,
	l2Geth *gethclient.Client,
	factory *bindings.DisputeGameFactoryCaller,
	portal *bindingspreview.OptimismPortal2Caller,
	messagePasserAddr common.Address,
	withdrawalHash common.Hash,
	tx Transaction,
	withdrawalL2Block uint64,
) (*ProveParams, error) {
	gameIndex, gameL2Block, rootClaim, err := findGameForWithdrawal(ctx, l1Caller, factory, portal, withdrawalL2Block)
	if err != nil {
		return nil, fmt.Errorf("could not find dispute game covering withdrawal block %d: %w", withdrawalL2Block, err)
	}

	header, err := l2Client.HeaderByNumber(ctx, new(big.Int).SetUint64(gameL2Block))
	if err != nil {
		return nil, fmt.Errorf("could not fetch l2 header for game block %d: %w", gameL2Block, err)
	}

	storageSlot := ComputeStorageSlot(withdrawalHash)
	proof, err := l2Geth.GetProof(ctx, messagePasserAddr, []string{storageSlot.Hex()}, new(big.Int).SetUint64(gameL2Block))
	if err != nil {
		return nil, fmt.Errorf("could not fetch storage proof at block %d: %w", gameL2Block, err)
	}
	if len(proof.StorageProof) == 0 {
		return nil, fmt.Errorf("node returned no storage proof for slot %s", storageSlot)
	}

	withdrawalProof := make([][]byte, len(proof.StorageProof[0].Proof))
	for i, node := range proof.StorageProof[0].Proof {
		decoded, err := hexutil.Decode(node)
		if err != nil {
			return nil, fmt.Errorf("could not decode storage proof node %d: %w", i, err)
		}
		withdrawalProof[i] = decoded
	}

	outputRootProof := OutputRootProof{
		Version:                  OutputVersionV0,
		StateRoot:                header.Root,
		MessagePasserStorageRoot: proof.StorageHash,
		LatestBlockhash:          header.Hash(),
	}

	return &ProveParams{
		Withdrawal:       tx,
		DisputeGameIndex: gameIndex,
		OutputRootProof:  outputRootProof,
		WithdrawalProof:  withdrawalProof,
		GameRootClaim:    rootClaim,
	}, nil
}

// findGameForWithdrawal performs the binary search described in
// original_source's find_game_for_withdrawal: fetch the latest
// maxGamesToCheck games of the portal's respected type (returned in
// descending L2-block order) and binary-search for the OLDEST one that
// still covers the withdrawal's L2 block, minimizing the post-prove
// maturity wait relative to always picking the newest game.
func findGameForWithdrawal(
	ctx context.Context,
	l1Caller bind.ContractCaller,
	factory *bindings.DisputeGameFactoryCaller,
	portal *bindingspreview.OptimismPortal2Caller,
	withdrawalL2Block uint64,
) (gameIndex *big.Int, gameL2Block uint64, rootClaim common.Hash, err error) {
	const maxGamesToCheck = 1000

	callOpts := &bind.CallOpts{Context: ctx}

	gameType, err := portal.RespectedGameType(callOpts)
	if err != nil {
		return nil, 0, common.Hash{}, fmt.Errorf("could not fetch respected game type: %w", err)
	}

	gameCount, err := factory.GameCount(callOpts)
	if err != nil {
		return nil, 0, common.Hash{}, fmt.Errorf("could not fetch game count: %w", err)
	}
	if gameCount.Sign() == 0 {
		return nil, 0, common.Hash{}, fmt.Errorf("no dispute games exist")
	}

	start := new(big.Int).Sub(gameCount, big.NewInt(1))
	games, err := factory.FindLatestGames(callOpts, gameType, start, big.NewInt(maxGamesToCheck))
	if err != nil {
		return nil, 0, common.Hash{}, fmt.Errorf("could not fetch latest games: %w", err)
	}
	if len(games) == 0 {
		return nil, 0, common.Hash{}, fmt.Errorf("no games of type %d found", gameType)
	}
	for _, g := range games {
		if g.Index.Cmp(gameCount) >= 0 {
			return nil, 0, common.Hash{}, fmt.Errorf("factory returned game index %s >= gameCount %s", g.Index, gameCount)
		}
	}

	gameAt := func(metadata [32]byte) (*bindings.FaultDisputeGameCaller, common.Address, error) {
		gameAddr := common.BytesToAddress(metadata[12:32])
		game, err := bindings.NewFaultDisputeGameCaller(gameAddr, l1Caller)
		if err != nil {
			return nil, common.Address{}, fmt.Errorf("could not bind dispute game %s: %w", gameAddr, err)
		}
		return game, gameAddr, nil
	}

	l2BlockOf := func(metadata [32]byte) (uint64, error) {
		game, gameAddr, err := gameAt(metadata)
		if err != nil {
			return 0, err
		}
		blockNum, err := game.L2BlockNumber(callOpts)
		if err != nil {
			return 0, fmt.Errorf("could not read l2BlockNumber from game %s: %w", gameAddr, err)
		}
		return blockNum.Uint64(), nil
	}

	var searchErr error
	idx := searchOldestCovering(len(games), func(i int) uint64 {
		blockNum, err := l2BlockOf(games[i].Metadata)
		if err != nil {
			searchErr = err
		}
		return blockNum
	}, withdrawalL2Block)
	if searchErr != nil {
		return nil, 0, common.Hash{}, searchErr
	}

	if idx < 0 {
		return nil, 0, common.Hash{}, fmt.Errorf("%w: newest game of type %d is older than l2 block %d", ErrInsufficientCoverage, gameType, withdrawalL2Block)
	}

	selected := games[idx]
	game, gameAddr, err := gameAt(selected.Metadata)
	if err != nil {
		return nil, 0, common.Hash{}, err
	}
	blockNum, err := game.L2BlockNumber(callOpts)
	if err != nil {
		return nil, 0, common.Hash{}, fmt.Errorf("could not re-read l2BlockNumber from selected game %s: %w", gameAddr, err)
	}
	claim, err := game.RootClaim(callOpts)
	if err != nil {
		return nil, 0, common.Hash{}, fmt.Errorf("could not read rootClaim from selected game %s: %w", gameAddr, err)
	}

	return selected.Index, blockNum.Uint64(), claim, nil
}

// searchOldestCovering binary-searches n games ordered descending by L2
// block (index 0 is newest) for the rightmost (oldest) one whose block is >=
// target. blockAt(i) must be monotonically non-increasing as i grows. It
// returns -1 if even the newest game (index 0) doesn't cover target.
//
// Loop invariant: after termination, blockAt(lo-1) >= target (covers) while
// blockAt(lo), if present, does not.
func searchOldestCovering(n int, blockAt func(i int) uint64, target uint64) int {
	lo, hi := 0, n
	for lo < hi {
		mi := lo + (hi-lo)/2
		if blockAt(mi) >= target {
			lo = mi + 1
		} else {
			hi = mi
		}
	}
	if lo == 0 {
		return -1
	}
	return lo - 1
}
