package cmd

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/0x00101010/fast-withdrawal/internal/addr"
)

// WithdrawCommand groups the orchestrator's debug commands for inspecting
// and hand-driving individual withdrawals, adapted from Golem-Base/op-probe's
// cmd/withdraw package (list.go, init.go, prove.go, finalize.go) but
// retargeted at this repo's own withdrawal/action packages instead of
// op-node/withdrawals, so a debug run exercises exactly the code path the
// control loop uses.
var WithdrawCommand = &cli.Command{
	Name:  "withdraw",
	Usage: "inspect or hand-drive a single withdrawal outside the control loop",
	Subcommands: []*cli.Command{
		withdrawListCommand,
		withdrawInitCommand,
		withdrawProveCommand,
		withdrawFinalizeCommand,
	},
}

var withdrawListCommand = &cli.Command{
	Name:  "list",
	Usage: "list every non-finalized withdrawal in the configured lookback window",
	Flags: sharedFlags,
	Action: func(c *cli.Context) error {
		o, _, err := setup(c)
		if err != nil {
			return err
		}
		defer o.Close()

		pending, err := o.ListPendingWithdrawals(c.Context)
		if err != nil {
			return fmt.Errorf("could not list pending withdrawals: %w", err)
		}

		for _, w := range pending {
			log.Info("pending withdrawal", "hash", w.Hash, "l2_block", w.L2Block, "status", w.Status.String(), "value", w.Transaction.Value)
		}
		log.Info("listed pending withdrawals", "count", len(pending))
		return nil
	},
}

var withdrawInitCommand = &cli.Command{
	Name:  "init",
	Usage: "initiate a withdrawal for an explicit amount, bypassing the threshold check",
	Flags: append(append([]cli.Flag{}, sharedFlags...),
		&cli.StringFlag{Name: "amount", Usage: "amount to withdraw, in wei", Required: true},
		&cli.StringFlag{Name: "target", Usage: "L1 recipient (defaults to the signer's own address)"},
		&cli.Uint64Flag{Name: "gas-limit", Usage: "gas limit forwarded on L1 execution", Value: 300_000},
	),
	Action: func(c *cli.Context) error {
		o, _, err := setup(c)
		if err != nil {
			return err
		}
		defer o.Close()

		amount, err := addr.ParseUint256(c.String("amount"))
		if err != nil {
			return fmt.Errorf("invalid --amount: %w", err)
		}

		target := o.Config().EOAAddress
		if t := c.String("target"); t != "" {
			target, err = addr.Safe(t)
			if err != nil {
				return fmt.Errorf("invalid --target: %w", err)
			}
		}

		result, err := o.InitiateWithdrawal(c.Context, target, amount, new(big.Int).SetUint64(c.Uint64("gas-limit")), nil)
		if err != nil {
			return fmt.Errorf("could not initiate withdrawal: %w", err)
		}

		log.Info("initiated withdrawal", "tx", result.TxHash, "block", result.BlockNumber, "gas_used", result.GasUsed)
		return nil
	},
}

var withdrawProveCommand = &cli.Command{
	Name:  "prove",
	Usage: "prove a single pending withdrawal by its canonical hash",
	Flags: append(append([]cli.Flag{}, sharedFlags...),
		&cli.StringFlag{Name: "hash", Usage: "canonical withdrawal hash", Required: true},
	),
	Action: func(c *cli.Context) error {
		o, _, err := setup(c)
		if err != nil {
			return err
		}
		defer o.Close()

		result, err := o.ProveByHash(c.Context, common.HexToHash(c.String("hash")))
		if err != nil {
			return fmt.Errorf("could not prove withdrawal: %w", err)
		}

		log.Info("proved withdrawal", "tx", result.TxHash, "block", result.BlockNumber, "gas_used", result.GasUsed)
		return nil
	},
}

var withdrawFinalizeCommand = &cli.Command{
	Name:  "finalize",
	Usage: "finalize a single proven and matured withdrawal by its canonical hash",
	Flags: append(append([]cli.Flag{}, sharedFlags...),
		&cli.StringFlag{Name: "hash", Usage: "canonical withdrawal hash", Required: true},
	),
	Action: func(c *cli.Context) error {
		o, _, err := setup(c)
		if err != nil {
			return err
		}
		defer o.Close()

		result, err := o.FinalizeByHash(c.Context, common.HexToHash(c.String("hash")))
		if err != nil {
			return fmt.Errorf("could not finalize withdrawal: %w", err)
		}

		log.Info("finalized withdrawal", "tx", result.TxHash, "block", result.BlockNumber, "gas_used", result.GasUsed)
		return nil
	},
}
