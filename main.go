package main

import (
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/0x00101010/fast-withdrawal/cmd"
)

func main() {
	log.SetDefault(log.NewLogger(log.JSONHandlerWithLevel(os.Stdout, log.LevelInfo)))

	app := &cli.App{
		Name:  "fast-withdrawal",
		Usage: "rebalances operator liquidity between L1, an OP Stack rollup, and a cross-chain spoke pool",
		Commands: []*cli.Command{
			cmd.RunCommand,
			cmd.StepCommand,
			cmd.WithdrawCommand,
			cmd.BridgeCommand,
		},
		Flags:  cmd.RunCommand.Flags,
		Action: cmd.RunCommand.Action,
	}

	if err := app.Run(os.Args); err != nil {
		log.Crit("", app.Name, err)
	}
}
