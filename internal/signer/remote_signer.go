package signer

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// remoteSigner delegates signing to a signer-proxy service over
// eth_signTransaction JSON-RPC, the way original_source's RemoteSigner
// talks to an HSM-backed proxy instead of holding a key in process memory.
type remoteSigner struct {
	httpClient *http.Client
	proxyURL   string
	address    common.Address
}

func newRemoteSigner(proxyURL string, address common.Address) (Signer, error) {
	if proxyURL == "" {
		return nil, fmt.Errorf("remote signer url must not be empty")
	}
	return &remoteSigner{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		proxyURL:   proxyURL,
		address:    address,
	}, nil
}

func (s *remoteSigner) Address() common.Address {
	return s.address
}

// SignerFn signs with the chainID argument rather than a value fixed at
// construction: the orchestrator shares a single Signer across both the L1
// and L2 clients, so a construction-time chain ID would sign L2 transactions with L1's chain
// ID (or vice versa) whenever the two differ.
func (s *remoteSigner) SignerFn(chainID *big.Int) bind.SignerFn {
	return func(address common.Address, tx *types.Transaction) (*types.Transaction, error) {
		raw, err := s.signTransaction(context.Background(), tx, chainID.Uint64())
		if err != nil {
			return nil, err
		}
		signed := new(types.Transaction)
		if err := signed.UnmarshalBinary(raw); err != nil {
			return nil, fmt.Errorf("could not decode signed transaction returned by signer-proxy: %w", err)
		}
		return signed, nil
	}
}

func (s *remoteSigner) SignData(data []byte) ([]byte, error) {
	return nil, fmt.Errorf("remote signer does not support raw data signing")
}

type jsonRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type jsonRPCResponse struct {
	Result *signedTransactionResult `json:"result"`
	Error  *jsonRPCError            `json:"error"`
}

type signedTransactionResult struct {
	Raw string `json:"raw"`
}

// transactionParam mirrors eth_signTransaction's wire shape: every field is
// an optional hex string, matching what a signer-proxy expects.
type transactionParam struct {
	From                 string `json:"from"`
	To                   string `json:"to,omitempty"`
	Gas                  string `json:"gas,omitempty"`
	MaxFeePerGas         string `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas,omitempty"`
	Value                string `json:"value,omitempty"`
	Data                 string `json:"data,omitempty"`
	Nonce                string `json:"nonce,omitempty"`
	ChainID              string `json:"chainId,omitempty"`
}

func (s *remoteSigner) signTransaction(ctx context.Context, tx *types.Transaction, chainID uint64) ([]byte, error) {
	param := transactionParam{
		From:    s.address.Hex(),
		Gas:     hexutil.EncodeUint64(tx.Gas()),
		Value:   hexutil.EncodeBig(tx.Value()),
		Data:    hexutil.Encode(tx.Data()),
		Nonce:   hexutil.EncodeUint64(tx.Nonce()),
		ChainID: hexutil.EncodeUint64(chainID),
	}
	if to := tx.To(); to != nil {
		param.To = to.Hex()
	}
	if tip := tx.GasTipCap(); tip != nil {
		param.MaxPriorityFeePerGas = hexutil.EncodeBig(tip)
	}
	if fee := tx.GasFeeCap(); fee != nil {
		param.MaxFeePerGas = hexutil.EncodeBig(fee)
	}

	reqBody, err := json.Marshal(jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  "eth_signTransaction",
		Params:  []any{param},
		ID:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("could not marshal signer-proxy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.proxyURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("could not build signer-proxy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach signer-proxy at %s: %w", s.proxyURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("signer-proxy returned status %d", resp.StatusCode)
	}

	var rpcResp jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("could not decode signer-proxy response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("signer-proxy returned error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if rpcResp.Result == nil {
		return nil, fmt.Errorf("signer-proxy returned no result and no error")
	}

	raw, err := hex.DecodeString(trimHexPrefix(rpcResp.Result.Raw))
	if err != nil {
		return nil, fmt.Errorf("could not decode signed transaction hex: %w", err)
	}
	return raw, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
