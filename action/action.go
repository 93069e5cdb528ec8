// Package action implements the three-verb (IsReady/IsCompleted/Execute)
// contract the control loop drives every on-chain mutation through:
// withdraw, prove, finalize, deposit, and the optional relayer-refund
// claim. Grounded on Golem-Base/op-probe's PadGasEstimate + wait.ForReceiptOK
// submission idiom (cmd/withdraw/init.go, cmd/deposit.go), generalized from
// one-shot CLI commands into reusable, idempotency-checked actions the
// control loop can call every cycle.
package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNotReady is returned by Execute (or checked by callers before calling
// it) when IsReady reported false. A readiness violation bubbles as a step
// failure per spec — the cycle continues but this action did not run.
var ErrNotReady = errors.New("action is not ready to execute")

// ErrReverted marks an Execute whose transaction was included but whose
// receipt status was 0.
var ErrReverted = errors.New("transaction reverted")

// ErrOutputRootMismatch marks a failed soundness check: the locally computed
// output-root proof hash did not match the selected dispute game's root
// claim. This is an invariant violation, never a transient fault — Execute
// returns it without ever broadcasting a proveWithdrawalTransaction.
var ErrOutputRootMismatch = errors.New("output root proof hash does not match dispute game root claim")

// MaturityError reports that a finalize was attempted before the portal's
// proof maturity delay elapsed, carrying how much longer the caller must
// wait.
type MaturityError struct {
	RemainingSeconds uint64
}

func (e *MaturityError) Error() string {
	return fmt.Sprintf("withdrawal proof has not matured: %d seconds remaining", e.RemainingSeconds)
}

// Result is what a successful Execute returns.
type Result struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
}

// Action is the contract every on-chain mutation in this orchestrator
// implements. IsReady and IsCompleted must not mutate state; Execute may
// perform exactly one broadcast-and-wait.
type Action interface {
	// IsReady reports whether the action's preconditions hold right now.
	IsReady(ctx context.Context) (bool, error)

	// IsCompleted reports whether this exact intent has already been
	// fulfilled on-chain — the idempotency check that makes at-least-once
	// re-submission safe.
	IsCompleted(ctx context.Context) (bool, error)

	// Execute builds, fills, signs, broadcasts, and awaits the action's
	// transaction, returning its inclusion result.
	Execute(ctx context.Context) (Result, error)
}
