package withdrawal

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestComputeStorageSlotDeterministic(t *testing.T) {
	hash := common.Hash{1}

	slot1 := ComputeStorageSlot(hash)
	slot2 := ComputeStorageSlot(hash)
	require.Equal(t, slot1, slot2)

	otherSlot := ComputeStorageSlot(common.Hash{2})
	require.NotEqual(t, slot1, otherSlot)
}

func TestComputeStorageSlotFormat(t *testing.T) {
	var zero [64]byte
	expected := crypto.Keccak256Hash(zero[:])

	require.Equal(t, expected, ComputeStorageSlot(common.Hash{}))
}

func TestComputeStorageSlotRealExample(t *testing.T) {
	hash := common.HexToHash("0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef")
	slot := ComputeStorageSlot(hash)

	require.Len(t, slot.Bytes(), 32)
	require.NotEqual(t, common.Hash{}, slot)
}

func TestOutputRootProofHashIsKeccakOfAllFields(t *testing.T) {
	proof := OutputRootProof{
		Version:                  OutputVersionV0,
		StateRoot:                common.HexToHash("0xaaaa000000000000000000000000000000000000000000000000000000aaaa"),
		MessagePasserStorageRoot: common.HexToHash("0xbbbb000000000000000000000000000000000000000000000000000000bbbb"),
		LatestBlockhash:          common.HexToHash("0xcccc000000000000000000000000000000000000000000000000000000cccc"),
	}

	expected := crypto.Keccak256Hash(
		proof.Version.Bytes(),
		proof.StateRoot.Bytes(),
		proof.MessagePasserStorageRoot.Bytes(),
		proof.LatestBlockhash.Bytes(),
	)

	require.Equal(t, expected, proof.Hash())

	// Changing any single field must change the hash: a live game's
	// rootClaim commits to all four fields, not a subset.
	mutated := proof
	mutated.StateRoot = common.HexToHash("0xdead000000000000000000000000000000000000000000000000000000dead")
	require.NotEqual(t, proof.Hash(), mutated.Hash())
}

func blocksOf(blocks []uint64) func(int) uint64 {
	return func(i int) uint64 { return blocks[i] }
}

func TestSearchOldestCoveringFindsRightmostCoveringGame(t *testing.T) {
	// Descending l2 blocks, newest (index 0) first, exactly as
	// findLatestGames returns them.
	blocks := []uint64{100, 90, 80, 70, 60, 50}

	// Withdrawal at block 65: games at 70, 80, 90, 100 cover it (>= 65);
	// the oldest covering game is the one at block 70, index 3.
	idx := searchOldestCovering(len(blocks), blocksOf(blocks), 65)
	require.Equal(t, 3, idx)
	require.GreaterOrEqual(t, blocks[idx], uint64(65))
}

func TestSearchOldestCoveringExactMatch(t *testing.T) {
	blocks := []uint64{100, 90, 80, 70, 60}
	idx := searchOldestCovering(len(blocks), blocksOf(blocks), 80)
	require.Equal(t, 2, idx)
}

func TestSearchOldestCoveringNoGameCovers(t *testing.T) {
	blocks := []uint64{100, 90, 80}
	idx := searchOldestCovering(len(blocks), blocksOf(blocks), 150)
	require.Equal(t, -1, idx)
}

func TestSearchOldestCoveringOnlyNewestCovers(t *testing.T) {
	blocks := []uint64{100, 50, 10}
	idx := searchOldestCovering(len(blocks), blocksOf(blocks), 99)
	require.Equal(t, 0, idx)
}

func TestSearchOldestCoveringEmpty(t *testing.T) {
	require.Equal(t, -1, searchOldestCovering(0, blocksOf(nil), 1))
}
