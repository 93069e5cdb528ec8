package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/0x00101010/fast-withdrawal/internal/addr"
)

// BridgeCommand groups debug commands for the L1-to-L2 deposit side of the
// orchestrator, adapted from Golem-Base/op-probe's
// cmd/bridge_eth_and_finalize.go but retargeted at the Across spoke pool's
// depositV3 instead of the native L1StandardBridge, since this
// orchestrator's rebalancing always moves funds through the bridge
// described in spec.md §4.5.
var BridgeCommand = &cli.Command{
	Name:  "bridge",
	Usage: "hand-drive the L1-to-L2 spoke pool deposit outside the control loop",
	Subcommands: []*cli.Command{
		bridgeDepositCommand,
	},
}

var bridgeDepositCommand = &cli.Command{
	Name:  "deposit",
	Usage: "deposit an explicit amount into the L2 spoke pool, bypassing the projected-balance check",
	Flags: append(append([]cli.Flag{}, sharedFlags...),
		&cli.StringFlag{Name: "amount", Usage: "amount to deposit, in wei", Required: true},
		&cli.Uint64Flag{Name: "fill-window-secs", Usage: "seconds until the deposit's fill deadline", Value: 3600},
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

		result, err := o.DepositOnce(c.Context, amount, uint32(c.Uint64("fill-window-secs")))
		if err != nil {
			return fmt.Errorf("could not submit deposit: %w", err)
		}

		log.Info("deposited into spoke pool", "tx", result.TxHash, "block", result.BlockNumber, "gas_used", result.GasUsed)
		return nil
	},
}
