package withdrawal

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestHashDeterministic(t *testing.T) {
	tx := Transaction{
		Nonce:    big.NewInt(1),
		Sender:   common.Address{0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01},
		Target:   common.Address{0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02},
		Value:    big.NewInt(1_000_000),
		GasLimit: big.NewInt(100_000),
		Data:     []byte{0xaa, 0xbb, 0xcc},
	}

	hash1 := Hash(tx)
	hash2 := Hash(tx)

	require.Equal(t, hash1, hash2)
	require.NotEqual(t, common.Hash{}, hash1)
}

func TestHashCollisionResistance(t *testing.T) {
	seen := make(map[common.Hash]struct{})

	for i := int64(100); i < 110; i++ {
		tx := Transaction{
			Nonce:    big.NewInt(i),
			Sender:   common.Address{0x01},
			Target:   common.Address{0x02},
			Value:    big.NewInt(1_000_000),
			GasLimit: big.NewInt(100_000),
			Data:     nil,
		}
		h := Hash(tx)
		_, exists := seen[h]
		require.False(t, exists, "hash collision detected at nonce %d", i)
		seen[h] = struct{}{}
	}

	require.Len(t, seen, 10)
}
