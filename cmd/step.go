package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/0x00101010/fast-withdrawal/orchestrator"
)

// StepCommand runs exactly one control loop step and exits, grounded on
// original_source/bin/orchestrator/src/bin/step.rs's single-shot Command
// enum and matching spec.md §6's "Subcommand binary `step
// {process-withdrawals | initiate-withdrawal | deposit}` runs one step
// once and exits."
var StepCommand = &cli.Command{
	Name:  "step",
	Usage: "run a single control loop step once and exit",
	Subcommands: []*cli.Command{
		stepSubcommand("process-withdrawals", "scan and advance pending withdrawals once", func(o *orchestrator.Orchestrator, ctx context.Context) (orchestrator.Outcome, error) {
			return o.ProcessWithdrawals(ctx)
		}),
		stepSubcommand("initiate-withdrawal", "initiate a new L2-to-L1 withdrawal if the threshold is crossed", func(o *orchestrator.Orchestrator, ctx context.Context) (orchestrator.Outcome, error) {
			return o.MaybeInitiateWithdrawal(ctx)
		}),
		stepSubcommand("deposit", "deposit into the L2 spoke pool if the projected balance is under target", func(o *orchestrator.Orchestrator, ctx context.Context) (orchestrator.Outcome, error) {
			return o.MaybeDeposit(ctx)
		}),
	},
}

func stepSubcommand(name, usage string, run func(*orchestrator.Orchestrator, context.Context) (orchestrator.Outcome, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: sharedFlags,
		Action: func(c *cli.Context) error {
			o, _, err := setup(c)
			if err != nil {
				return err
			}
			defer o.Close()

			outcome, err := run(o, c.Context)
			if err != nil {
				return fmt.Errorf("step %s failed: %w", name, err)
			}

			log.Info("step complete", "step", name, "outcome", outcome.String())
			return nil
		},
	}
}
