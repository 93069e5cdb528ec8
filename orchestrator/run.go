package orchestrator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// shutdownPollInterval is how often Run checks the shutdown flag against the
// cycle timer while a cycle isn't already in progress — fine-grained enough
// that SIGINT/SIGTERM feels immediate without busy-looping.
const shutdownPollInterval = 100 * time.Millisecond

// Run drives the control loop until ctx is cancelled: it runs one Tick,
// then waits out the configured cycle interval (polling for shutdown every
// shutdownPollInterval instead of blocking the full interval), then repeats.
// A Tick already in progress when ctx is cancelled always runs to
// completion before Run returns — shutdown never interrupts a cycle
// mid-step.
func (o *Orchestrator) Run(ctx context.Context) error {
	var shuttingDown atomic.Bool

	interval := time.Duration(o.cfg.CycleIntervalSecs) * time.Second

	for {
		o.Tick(context.WithoutCancel(ctx))

		if shuttingDown.Load() {
			return nil
		}

		deadline := time.Now().Add(interval)
		ticker := time.NewTicker(shutdownPollInterval)
		for time.Now().Before(deadline) {
			select {
			case <-ctx.Done():
				shuttingDown.Store(true)
			case <-ticker.C:
			}
			if shuttingDown.Load() {
				break
			}
		}
		ticker.Stop()

		if shuttingDown.Load() {
			log.Info("shutdown requested, exiting after current cycle")
			return nil
		}
	}
}
