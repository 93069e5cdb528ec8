package signer

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/hdkeychain/v3"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/usbwallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

const defaultHDPath = "m/44'/60'/0'/0/0"

// walletSigner delegates to a go-ethereum accounts.Wallet (a connected
// Ledger, in practice) rather than holding a key in process memory.
type walletSigner struct {
	wallet  accounts.Wallet
	account accounts.Account
}

func newLedgerSigner(hdPath string) (Signer, error) {
	if hdPath == "" {
		hdPath = defaultHDPath
	}
	path, err := accounts.ParseDerivationPath(hdPath)
	if err != nil {
		return nil, fmt.Errorf("invalid hd path %q: %w", hdPath, err)
	}

	hub, err := usbwallet.NewLedgerHub()
	if err != nil {
		return nil, fmt.Errorf("could not start ledger hub: %w", err)
	}
	wallets := hub.Wallets()
	switch len(wallets) {
	case 0:
		return nil, fmt.Errorf("no ledgers found, please connect your ledger")
	case 1:
	default:
		return nil, fmt.Errorf("multiple ledgers found, please use exactly one at a time")
	}

	wallet := wallets[0]
	if err := wallet.Open(""); err != nil {
		return nil, fmt.Errorf("could not open ledger: %w", err)
	}
	account, err := wallet.Derive(path, true)
	if err != nil {
		return nil, fmt.Errorf("could not derive ledger account (have you unlocked it?): %w", err)
	}

	return &walletSigner{wallet: wallet, account: account}, nil
}

// newWalletSignerFromMnemonic derives a single private key from a BIP-39
// mnemonic and hands it to the same ecdsaSigner an explicit private key
// would use, matching the teacher's CreateSigner's mnemonic branch.
func newWalletSignerFromMnemonic(mnemonic, hdPath string) (Signer, error) {
	if hdPath == "" {
		hdPath = defaultHDPath
	}
	path, err := accounts.ParseDerivationPath(hdPath)
	if err != nil {
		return nil, fmt.Errorf("invalid hd path %q: %w", hdPath, err)
	}

	key, err := derivePrivateKey(mnemonic, path)
	if err != nil {
		return nil, fmt.Errorf("could not derive key from mnemonic: %w", err)
	}
	return &ecdsaSigner{key: key}, nil
}

func (s *walletSigner) Address() common.Address {
	return s.account.Address
}

func (s *walletSigner) SignerFn(chainID *big.Int) bind.SignerFn {
	return func(address common.Address, tx *types.Transaction) (*types.Transaction, error) {
		return s.wallet.SignTx(s.account, tx, chainID)
	}
}

func (s *walletSigner) SignData(data []byte) ([]byte, error) {
	return s.wallet.SignData(s.account, accounts.MimetypeTypedData, data)
}

// derivePrivateKey walks a BIP-32 path from a BIP-39 mnemonic's seed,
// matching base-org/withdrawer's derivePrivateKey exactly (including its
// fakeNetworkParams trick to use dcrd's hdkeychain outside a Decred wallet).
func derivePrivateKey(mnemonic string, path accounts.DerivationPath) (*ecdsa.PrivateKey, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, err
	}

	privKey, err := hdkeychain.NewMaster(seed, fakeNetworkParams{})
	if err != nil {
		return nil, err
	}

	for _, child := range path {
		privKey, err = privKey.Child(child)
		if err != nil {
			return nil, err
		}
	}

	rawPrivKey, err := privKey.SerializedPrivKey()
	if err != nil {
		return nil, err
	}

	return crypto.ToECDSA(rawPrivKey)
}

type fakeNetworkParams struct{}

func (fakeNetworkParams) HDPrivKeyVersion() [4]byte { return [4]byte{} }
func (fakeNetworkParams) HDPubKeyVersion() [4]byte  { return [4]byte{} }
