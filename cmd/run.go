package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/0x00101010/fast-withdrawal/metrics"
)

// RunCommand drives the continuous control loop described by spec.md §4.6
// and §5: Tick, wait out the cycle interval, repeat, until SIGINT/SIGTERM
// requests shutdown between cycles.
var RunCommand = &cli.Command{
	Name:  "run",
	Usage: "run the control loop continuously until shutdown is requested",
	Flags: sharedFlags,
	Action: func(c *cli.Context) error {
		o, m, err := setup(c)
		if err != nil {
			return err
		}
		defer o.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		metricsAddr := fmt.Sprintf(":%d", o.Config().MetricsPort)
		metricsServer := metrics.NewServer(metricsAddr, m)

		errCh := make(chan error, 1)
		go func() {
			errCh <- metricsServer.Run(ctx)
		}()

		log.Info("starting control loop", "dry_run", o.Config().DryRun, "cycle_interval_secs", o.Config().CycleIntervalSecs, "metrics_addr", metricsAddr)
		if err := o.Run(ctx); err != nil {
			return fmt.Errorf("control loop exited with error: %w", err)
		}

		stop()
		if err := <-errCh; err != nil {
			return fmt.Errorf("metrics server exited with error: %w", err)
		}

		return nil
	},
}
