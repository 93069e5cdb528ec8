// Package config loads the orchestrator's TOML configuration file, matching
// Golem-Base/op-probe's CLI-flags-as-source-of-truth style but for a
// long-running process that needs a declarative file instead of a one-shot
// command's flags.
package config

import (
	"fmt"
	"math/big"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"

	"github.com/0x00101010/fast-withdrawal/internal/addr"
	"github.com/0x00101010/fast-withdrawal/internal/network"
)

// Config is the orchestrator's complete, immutable runtime configuration for
// a single run.
type Config struct {
	L1RPCURL string `toml:"l1_rpc_url"`
	L2RPCURL string `toml:"l2_rpc_url"`

	Network network.Type `toml:"network"`

	EOAAddress string `toml:"eoa_address"`

	SpokePoolTargetWei string `toml:"spoke_pool_target_wei"`
	SpokePoolFloorWei  string `toml:"spoke_pool_floor_wei"`

	WithdrawalThresholdWei string `toml:"withdrawal_threshold_wei"`
	GasBufferWei           string `toml:"gas_buffer_wei"`

	DepositLookbackSecs    uint64 `toml:"deposit_lookback_secs"`
	WithdrawalLookbackSecs uint64 `toml:"withdrawal_lookback_secs"`

	CycleIntervalSecs uint64 `toml:"cycle_interval_secs"`
	MetricsPort       uint16 `toml:"metrics_port"`
	DryRun            bool   `toml:"dry_run"`

	// EnableClaim turns on the optional relayer-refund claim step at the end
	// of each cycle's action steps. Off by default, so a cycle runs only
	// ProcessWithdrawals, MaybeInitiateWithdrawal and MaybeDeposit unless an
	// operator opts in.
	EnableClaim bool `toml:"enable_claim"`

	// RemoteSignerURL, when set, selects the remote JSON-RPC signer instead
	// of a local private key. Mutually exclusive with supplying a private
	// key/mnemonic on the CLI. Both it and RemoteSignerAddress can also be
	// set per-invocation via --remote-signer-url/--remote-signer-address,
	// which take precedence over the config file.
	RemoteSignerURL     string `toml:"remote_signer_url"`
	RemoteSignerAddress string `toml:"remote_signer_address"`
}

// Resolved is a Config with its string/decimal fields parsed into concrete
// chain types, computed once at startup.
type Resolved struct {
	Config

	EOAAddress common.Address

	SpokePoolTargetWei     *big.Int
	SpokePoolFloorWei      *big.Int
	WithdrawalThresholdWei *big.Int
	GasBufferWei           *big.Int

	Network network.Config
}

const (
	defaultDepositLookbackSecs    = 43_200
	defaultWithdrawalLookbackSecs = 1_209_600
	defaultCycleIntervalSecs      = 30
	defaultMetricsPort            = 9090
)

var (
	defaultSpokePoolTargetWei     = new(big.Int).Mul(big.NewInt(75), big.NewInt(1e18))
	defaultSpokePoolFloorWei      = new(big.Int).Mul(big.NewInt(20), big.NewInt(1e18))
	defaultWithdrawalThresholdWei = new(big.Int).Mul(big.NewInt(75), big.NewInt(1e18))
	defaultGasBufferWei           = big.NewInt(10_000_000_000_000_000)
)

// applyDefaults fills every optional field left unset, per spec's defaults
// table (target 75 ETH, floor 20 ETH, threshold 75 ETH, buffer 0.01 ETH,
// cycle 30s, deposit lookback 12h, withdrawal lookback 14d, metrics port
// 9090).
func (c *Config) applyDefaults() {
	if c.SpokePoolTargetWei == "" {
		c.SpokePoolTargetWei = defaultSpokePoolTargetWei.String()
	}
	if c.SpokePoolFloorWei == "" {
		c.SpokePoolFloorWei = defaultSpokePoolFloorWei.String()
	}
	if c.WithdrawalThresholdWei == "" {
		c.WithdrawalThresholdWei = defaultWithdrawalThresholdWei.String()
	}
	if c.GasBufferWei == "" {
		c.GasBufferWei = defaultGasBufferWei.String()
	}
	if c.DepositLookbackSecs == 0 {
		c.DepositLookbackSecs = defaultDepositLookbackSecs
	}
	if c.WithdrawalLookbackSecs == 0 {
		c.WithdrawalLookbackSecs = defaultWithdrawalLookbackSecs
	}
	if c.CycleIntervalSecs == 0 {
		c.CycleIntervalSecs = defaultCycleIntervalSecs
	}
	if c.MetricsPort == 0 {
		c.MetricsPort = defaultMetricsPort
	}
	if c.Network == "" {
		c.Network = network.Mainnet
	}
}

// Load reads and parses a TOML config file from path, applies defaults to
// unset optional fields, and resolves it into concrete chain types.
func Load(path string) (*Resolved, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("could not parse config file at %s: %w", path, err)
	}
	return c.Resolve()
}

// Resolve validates and converts a raw Config into a Resolved one, applying
// defaults to any unset optional field first.
func (c Config) Resolve() (*Resolved, error) {
	c.applyDefaults()

	eoa, err := addr.Safe(c.EOAAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid eoa_address: %w", err)
	}

	target, err := parseWei("spoke_pool_target_wei", c.SpokePoolTargetWei)
	if err != nil {
		return nil, err
	}
	floor, err := parseWei("spoke_pool_floor_wei", c.SpokePoolFloorWei)
	if err != nil {
		return nil, err
	}
	threshold, err := parseWei("withdrawal_threshold_wei", c.WithdrawalThresholdWei)
	if err != nil {
		return nil, err
	}
	buffer, err := parseWei("gas_buffer_wei", c.GasBufferWei)
	if err != nil {
		return nil, err
	}

	if floor.Cmp(target) > 0 {
		return nil, fmt.Errorf("spoke_pool_floor_wei (%s) must be <= spoke_pool_target_wei (%s)", floor, target)
	}
	if buffer.Cmp(threshold) >= 0 {
		return nil, fmt.Errorf("gas_buffer_wei (%s) must be < withdrawal_threshold_wei (%s)", buffer, threshold)
	}

	net, err := network.FromType(c.Network)
	if err != nil {
		return nil, fmt.Errorf("invalid network: %w", err)
	}

	return &Resolved{
		Config:                 c,
		EOAAddress:             eoa,
		SpokePoolTargetWei:     target,
		SpokePoolFloorWei:      floor,
		WithdrawalThresholdWei: threshold,
		GasBufferWei:           buffer,
		Network:                net,
	}, nil
}

func parseWei(field, value string) (*big.Int, error) {
	n, err := addr.ParseUint256(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return n, nil
}
