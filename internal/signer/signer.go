// Package signer abstracts transaction signing the way base-org/withdrawer's
// signer package does: a small interface with an address, a bind.SignerFn
// for go-ethereum's transactor helpers, and raw-data signing for the
// eth_sign style calls some RPC proxies expect. It adds a remote JSON-RPC
// signer alongside the local ECDSA and HD-wallet ones the teacher supports.
package signer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Signer signs transactions and raw data on behalf of the orchestrator's
// configured EOA, regardless of where the private key actually lives.
type Signer interface {
	Address() common.Address
	SignerFn(chainID *big.Int) bind.SignerFn
	SignData(data []byte) ([]byte, error)
}

// Config selects which Signer implementation to construct. Exactly one of
// PrivateKey, Mnemonic, or RemoteSignerURL should be set; an empty Config
// falls back to a local Ledger wallet, matching the teacher's CreateSigner.
type Config struct {
	PrivateKey string
	Mnemonic   string
	HDPath     string

	RemoteSignerURL string
	RemoteAddress   common.Address
}

// Create builds a Signer from cfg. Precedence matches base-org/withdrawer's
// CreateSigner: explicit private key, then mnemonic, then remote proxy, then
// a connected Ledger as the last resort.
func Create(cfg Config) (Signer, error) {
	if cfg.PrivateKey != "" {
		return newECDSASigner(cfg.PrivateKey)
	}

	if cfg.Mnemonic != "" {
		return newWalletSignerFromMnemonic(cfg.Mnemonic, cfg.HDPath)
	}

	if cfg.RemoteSignerURL != "" {
		return newRemoteSigner(cfg.RemoteSignerURL, cfg.RemoteAddress)
	}

	return newLedgerSigner(cfg.HDPath)
}
