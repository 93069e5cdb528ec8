// Package cmd wires the orchestrator's urfave/cli/v2 surface: the
// long-running `run` command, the one-shot `step` command spec.md §6
// names, and debug commands adapted from Golem-Base/op-probe's own
// cmd/withdraw and cmd/bridge_eth_and_finalize.go.
package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	addrutil "github.com/0x00101010/fast-withdrawal/internal/addr"
	"github.com/0x00101010/fast-withdrawal/internal/config"
	"github.com/0x00101010/fast-withdrawal/internal/signer"
	"github.com/0x00101010/fast-withdrawal/metrics"
	"github.com/0x00101010/fast-withdrawal/orchestrator"
)

// sharedFlags are accepted by every command that talks to the chain:
// --config selects the TOML file (spec.md §6's `--config PATH`, default
// config.toml); --dry-run overrides the config's dry_run to true;
// --private-key/-k and PRIVATE_KEY pick a local signer, matching
// op-probe's `--private-key` flags but sourced from the environment too.
var sharedFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "config",
		Usage: "path to the orchestrator's TOML config file",
		Value: "config.toml",
	},
	&cli.BoolFlag{
		Name:  "dry-run",
		Usage: "log every action that would be taken without broadcasting any transaction",
	},
	&cli.StringFlag{
		Name:    "private-key",
		Aliases: []string{"k"},
		Usage:   "private key hex for local signing (or set PRIVATE_KEY)",
		EnvVars: []string{"PRIVATE_KEY"},
	},
	&cli.StringFlag{
		Name:  "mnemonic",
		Usage: "BIP-39 mnemonic for local signing, as an alternative to --private-key",
	},
	&cli.StringFlag{
		Name:  "remote-signer-url",
		Usage: "JSON-RPC eth_signTransaction endpoint, as an alternative to a local key",
	},
	&cli.StringFlag{
		Name:  "remote-signer-address",
		Usage: "address held by the remote signer-proxy, required with --remote-signer-url",
	},
}

// loadConfig reads the config file named by --config and applies the
// --dry-run override, matching spec.md §6: "--dry-run (overrides config
// true)".
func loadConfig(c *cli.Context) (*config.Resolved, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.Bool("dry-run") {
		cfg.DryRun = true
	}
	return cfg, nil
}

// buildSigner constructs a Signer from the CLI flags, falling back to
// cfg's remote_signer_url/remote_signer_address when the corresponding
// flag isn't set, and finally to the connected-Ledger path signer.Create
// uses when none of private-key, mnemonic, or a remote signer is
// configured anywhere.
func buildSigner(c *cli.Context, cfg *config.Resolved) (signer.Signer, error) {
	remoteSignerURL := c.String("remote-signer-url")
	if remoteSignerURL == "" {
		remoteSignerURL = cfg.RemoteSignerURL
	}
	remoteSignerAddressHex := c.String("remote-signer-address")
	if remoteSignerAddressHex == "" {
		remoteSignerAddressHex = cfg.RemoteSignerAddress
	}

	var remoteAddress common.Address
	if remoteSignerURL != "" {
		if remoteSignerAddressHex == "" {
			return nil, fmt.Errorf("--remote-signer-address (or remote_signer_address in config) is required with a remote signer url")
		}
		addr, err := addrutil.Safe(remoteSignerAddressHex)
		if err != nil {
			return nil, fmt.Errorf("invalid remote signer address: %w", err)
		}
		remoteAddress = addr
	}

	return signer.Create(signer.Config{
		PrivateKey:      c.String("private-key"),
		Mnemonic:        c.String("mnemonic"),
		RemoteSignerURL: remoteSignerURL,
		RemoteAddress:   remoteAddress,
	})
}

// setup loads config, builds a signer, and dials a ready-to-run
// Orchestrator plus its Metrics instance. Every command under cmd/ that
// touches the chain goes through this single entry point so config
// loading, signer selection, and contract binding never drift between
// commands.
func setup(c *cli.Context) (*orchestrator.Orchestrator, *metrics.Metrics, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load config: %w", err)
	}

	sgnr, err := buildSigner(c, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("could not build signer: %w", err)
	}

	m := metrics.New()

	o, err := orchestrator.New(context.Background(), cfg, sgnr, m)
	if err != nil {
		return nil, nil, fmt.Errorf("could not build orchestrator: %w", err)
	}

	return o, m, nil
}
