package signer

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	opcrypto "github.com/ethereum-optimism/optimism/op-service/crypto"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ecdsaSigner signs with a private key held in process memory. It is the
// default when an operator supplies a raw key on the CLI or config.
type ecdsaSigner struct {
	key *ecdsa.PrivateKey
}

func newECDSASigner(privateKeyHex string) (Signer, error) {
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("could not parse private key: %w", err)
	}
	return &ecdsaSigner{key: key}, nil
}

func (s *ecdsaSigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *ecdsaSigner) SignerFn(chainID *big.Int) bind.SignerFn {
	return opcrypto.PrivateKeySignerFn(s.key, chainID)
}

func (s *ecdsaSigner) SignData(data []byte) ([]byte, error) {
	sig, err := crypto.Sign(crypto.Keccak256(data), s.key)
	if err != nil {
		return nil, fmt.Errorf("could not sign data: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
