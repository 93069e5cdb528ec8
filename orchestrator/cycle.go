package orchestrator

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/0x00101010/fast-withdrawal/action"
	"github.com/0x00101010/fast-withdrawal/internal/format"
	"github.com/0x00101010/fast-withdrawal/withdrawal"
)

// withdrawalGasLimit is the gas limit passed to initiateWithdrawal for the
// operator's self-send rebalancing withdrawal. 300,000 comfortably covers a
// plain ETH transfer to an EOA with generous headroom for a future target
// that isn't a bare EOA.
const withdrawalGasLimit = 300_000

// depositFillWindow is how long a relayer has to fill a rebalancing deposit
// before it can be refunded back to the depositor.
const depositFillWindow = time.Hour

// ErrInsufficientL1Balance is returned by MaybeDeposit when the operator's
// L1 balance can't cover the amount the projected-balance formula says
// should be deposited. The cycle logs and skips rather than partially
// funding a deposit below the formula's output.
var ErrInsufficientL1Balance = errors.New("l1 balance insufficient to cover computed deposit amount")

// Outcome is a closed tagged variant describing what happened to one control
// loop step. There is no catch-all "unknown" variant — every step must
// resolve to exactly one of these.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CycleResult is the outcome of one full Tick, one Outcome per step. Claim
// stays OutcomeSkipped whenever the optional claim step isn't enabled, so
// disabling it never turns into a reported failure.
type CycleResult struct {
	ProcessWithdrawals Outcome
	InitiateWithdrawal Outcome
	Deposit            Outcome
	Claim              Outcome
	Duration           time.Duration
}

// Success reports whether every step in the cycle avoided failure. A
// skipped step (nothing to do) still counts as success; only a step that
// actively errored fails the cycle.
func (r CycleResult) Success() bool {
	return r.ProcessWithdrawals != OutcomeFailed && r.InitiateWithdrawal != OutcomeFailed &&
		r.Deposit != OutcomeFailed && r.Claim != OutcomeFailed
}

// Tick runs one full control loop cycle: ProcessWithdrawals, then
// MaybeInitiateWithdrawal, then MaybeDeposit, then (if enabled) the
// optional relayer-refund Claim, then UpdateGauges, then LogSummary. Every
// step's error is caught and turned into an Outcome — one step failing
// never prevents the rest of the cycle from running.
func (o *Orchestrator) Tick(ctx context.Context) CycleResult {
	start := time.Now()

	pw := o.runStep(ctx, "process_withdrawals", o.ProcessWithdrawals)
	iw := o.runStep(ctx, "initiate_withdrawal", o.MaybeInitiateWithdrawal)
	dep := o.runStep(ctx, "deposit", o.MaybeDeposit)

	claim := OutcomeSkipped
	if o.cfg.EnableClaim {
		claim = o.runStep(ctx, "claim", o.MaybeClaim)
	}

	result := CycleResult{
		ProcessWithdrawals: pw,
		InitiateWithdrawal: iw,
		Deposit:            dep,
		Claim:              claim,
		Duration:           time.Since(start),
	}

	if err := o.UpdateGauges(ctx); err != nil {
		log.Error("could not update gauges", "error", err)
	}

	o.metrics.RecordCycle(result.Success(), result.Duration)
	o.LogSummary(result)

	return result
}

func (o *Orchestrator) runStep(ctx context.Context, name string, step func(ctx context.Context) (Outcome, error)) Outcome {
	outcome, err := step(ctx)
	if err != nil {
		log.Error("step failed", "step", name, "error", err)
		o.metrics.RecordStepFailure(name)
		return OutcomeFailed
	}
	if outcome == OutcomeSucceeded {
		o.metrics.RecordStepSuccess(name)
	}
	return outcome
}

// ProcessWithdrawals scans pending withdrawals over the configured lookback
// window and advances each one exactly one step: an Initiated withdrawal is
// proven, a Proven withdrawal is finalized (once matured), and a Finalized
// withdrawal is left alone. A single withdrawal's failure is logged and
// does not abort the rest of the batch — the whole step only reports
// OutcomeFailed if the initial scan itself fails.
func (o *Orchestrator) ProcessWithdrawals(ctx context.Context) (Outcome, error) {
	l2Head, err := o.l2Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return OutcomeFailed, err
	}

	fromBlock := blocksAgo(l2Head.Number.Uint64(), o.cfg.WithdrawalLookbackSecs, o.cfg.Network.Rollup.BlockTimeSecs)

	pending, err := o.state.GetPendingWithdrawals(ctx, fromBlock, withdrawal.LatestBlock, o.signer.Address())
	if err != nil {
		return OutcomeFailed, err
	}
	if len(pending) == 0 {
		return OutcomeSkipped, nil
	}

	anyAdvanced := false
	for _, w := range pending {
		switch w.Status.Kind() {
		case withdrawal.StatusInitiated:
			if o.advanceProve(ctx, w) {
				anyAdvanced = true
			}
		case withdrawal.StatusProven:
			if o.advanceFinalize(ctx, w) {
				anyAdvanced = true
			}
		case withdrawal.StatusFinalized:
			// nothing to do
		}
	}

	if anyAdvanced {
		return OutcomeSucceeded, nil
	}
	return OutcomeSkipped, nil
}

func (o *Orchestrator) advanceProve(ctx context.Context, w withdrawal.Pending) bool {
	prove := action.NewProve(o.l1Client, o.l2Client, o.l2Geth, o.l1Client, o.factory, o.portal,
		o.cfg.Network.Rollup.L2ToL1MessagePasser, o.signer, o.state, w.Hash, w.Transaction, w.L2Block)

	ready, err := prove.IsReady(ctx)
	if err != nil {
		log.Error("could not check prove readiness", "withdrawal", w.Hash, "error", err)
		return false
	}
	if !ready {
		return false
	}

	if o.cfg.DryRun {
		o.logDryRun("prove", "withdrawal", w.Hash)
		return false
	}

	result, err := prove.Execute(ctx)
	if err != nil {
		if errors.Is(err, withdrawal.ErrInsufficientCoverage) {
			log.Info("no dispute game covers this withdrawal yet, will retry next cycle", "withdrawal", w.Hash)
			return false
		}
		log.Error("could not prove withdrawal", "withdrawal", w.Hash, "error", err)
		return false
	}

	log.Info("proved withdrawal", "withdrawal", w.Hash, "tx", result.TxHash)
	return true
}

func (o *Orchestrator) advanceFinalize(ctx context.Context, w withdrawal.Pending) bool {
	finalize := action.NewFinalize(o.l1Client, o.portal, o.signer, o.state, w.Hash, w.Transaction, o.signer.Address())

	ready, err := finalize.IsReady(ctx)
	if err != nil {
		var maturityErr *action.MaturityError
		if errors.As(err, &maturityErr) {
			log.Info("withdrawal proof not yet matured", "withdrawal", w.Hash, "remaining_seconds", maturityErr.RemainingSeconds)
			return false
		}
		log.Error("could not check finalize readiness", "withdrawal", w.Hash, "error", err)
		return false
	}
	if !ready {
		return false
	}

	if o.cfg.DryRun {
		o.logDryRun("finalize", "withdrawal", w.Hash)
		return false
	}

	result, err := finalize.Execute(ctx)
	if err != nil {
		log.Error("could not finalize withdrawal", "withdrawal", w.Hash, "error", err)
		return false
	}

	log.Info("finalized withdrawal", "withdrawal", w.Hash, "tx", result.TxHash)
	o.metrics.RecordWithdrawalFinalized()
	return true
}

// withdrawAmount computes how much the operator should self-send from L2 to
// L1 this cycle: nothing if the L2 balance hasn't crossed threshold, and
// nothing if subtracting the gas buffer leaves zero or less.
func withdrawAmount(l2Balance, threshold, gasBuffer *big.Int) (*big.Int, bool) {
	if l2Balance.Cmp(threshold) <= 0 {
		return nil, false
	}
	amount := new(big.Int).Sub(l2Balance, gasBuffer)
	if amount.Sign() <= 0 {
		return nil, false
	}
	return amount, true
}

// MaybeInitiateWithdrawal starts a new L2-to-L1 withdrawal once the
// operator's L2 balance exceeds the configured threshold, self-sending the
// balance less a gas buffer to the same operator address on L1.
func (o *Orchestrator) MaybeInitiateWithdrawal(ctx context.Context) (Outcome, error) {
	l2Balance, err := o.l2Balances.Native(ctx, o.signer.Address())
	if err != nil {
		return OutcomeFailed, err
	}

	amount, ok := withdrawAmount(l2Balance, o.cfg.WithdrawalThresholdWei, o.cfg.GasBufferWei)
	if !ok {
		return OutcomeSkipped, nil
	}

	if o.cfg.DryRun {
		o.logDryRun("initiate_withdrawal", "amount_eth", format.WeiToEth(amount))
		return OutcomeSkipped, nil
	}

	w := action.NewWithdraw(o.l2Client, o.l2MessagePasser, o.signer, o.signer.Address(), amount, big.NewInt(withdrawalGasLimit), nil)
	result, err := w.Execute(ctx)
	if err != nil {
		return OutcomeFailed, err
	}

	log.Info("initiated withdrawal", "amount_eth", format.WeiToEth(amount), "tx", result.TxHash)
	return OutcomeSucceeded, nil
}

// projectedSpokePoolBalance is max(0, actual - inflight): the L2 spoke
// pool's balance once every currently in-flight deposit has landed.
func projectedSpokePoolBalance(actual, inflight *big.Int) *big.Int {
	projected := new(big.Int).Sub(actual, inflight)
	if projected.Sign() < 0 {
		return big.NewInt(0)
	}
	return projected
}

// depositAmount computes how much to bridge from L1 once the L2 spoke pool's
// projected balance is at or below target: the projected balance minus floor.
// It returns ErrInsufficientL1Balance, rather than a smaller amount, when
// l1Balance can't cover what the formula computed — this orchestrator never
// partially funds a deposit below the formula's output.
func depositAmount(projected, target, floor, l1Balance *big.Int) (*big.Int, bool, error) {
	if projected.Cmp(target) > 0 {
		return nil, false, nil
	}
	amount := new(big.Int).Sub(projected, floor)
	if amount.Sign() <= 0 {
		return nil, false, nil
	}
	if l1Balance.Cmp(amount) < 0 {
		return nil, false, ErrInsufficientL1Balance
	}
	return amount, true, nil
}

// MaybeDeposit bridges L1 funds into the L2 spoke pool via depositV3 once
// its projected balance (actual minus everything already in flight) falls
// at or below target.
func (o *Orchestrator) MaybeDeposit(ctx context.Context) (Outcome, error) {
	actual, err := o.l2Balances.SpokePoolBalance(ctx, o.cfg.Network.Rollup.WETH, o.cfg.Network.Rollup.SpokePool)
	if err != nil {
		return OutcomeFailed, err
	}

	inflight, err := o.inflight.GetInFlightDepositTotal(ctx, o.signer.Address(),
		new(big.Int).SetUint64(o.cfg.Network.Ethereum.ChainID), new(big.Int).SetUint64(o.cfg.Network.Rollup.ChainID),
		o.cfg.DepositLookbackSecs, o.cfg.Network.Ethereum.BlockTimeSecs, o.cfg.Network.Rollup.BlockTimeSecs)
	if err != nil {
		return OutcomeFailed, err
	}

	projected := projectedSpokePoolBalance(actual, inflight)

	l1Balance, err := o.balances.Native(ctx, o.signer.Address())
	if err != nil {
		return OutcomeFailed, err
	}

	amount, ok, err := depositAmount(projected, o.cfg.SpokePoolTargetWei, o.cfg.SpokePoolFloorWei, l1Balance)
	if err != nil {
		if errors.Is(err, ErrInsufficientL1Balance) {
			log.Warn("l1 balance insufficient to fund computed deposit, skipping", "l1_balance_eth", format.WeiToEth(l1Balance))
			return OutcomeSkipped, nil
		}
		return OutcomeFailed, err
	}
	if !ok {
		return OutcomeSkipped, nil
	}

	if o.cfg.DryRun {
		o.logDryRun("deposit", "amount_eth", format.WeiToEth(amount))
		return OutcomeSkipped, nil
	}

	l1Head, err := o.l1Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return OutcomeFailed, err
	}
	fillDeadline := uint32(l1Head.Time) + uint32(depositFillWindow.Seconds())

	params := action.DepositParams{
		Recipient:           o.signer.Address(),
		InputToken:          o.cfg.Network.Ethereum.WETH,
		OutputToken:         o.cfg.Network.Rollup.WETH,
		InputAmount:         amount,
		OutputAmount:        new(big.Int).Mul(amount, big.NewInt(2)),
		DestinationChainID:  new(big.Int).SetUint64(o.cfg.Network.Rollup.ChainID),
		ExclusiveRelayer:    common.Address{},
		FillDeadline:        fillDeadline,
		ExclusivityDeadline: 0,
		Message:             nil,
	}

	dep := action.NewDeposit(o.l1Client, o.l1SpokePool, o.signer, params)
	result, err := dep.Execute(ctx)
	if err != nil {
		return OutcomeFailed, err
	}

	o.metrics.RecordDeposit(format.WeiToEth(amount))
	log.Info("deposited into spoke pool", "amount_eth", format.WeiToEth(amount), "tx", result.TxHash)
	return OutcomeSucceeded, nil
}

// MaybeClaim sweeps this operator's accrued Across relayer refund on the L1
// spoke pool, opportunistic housekeeping that never blocks the rest of the
// cycle: a refund only accrues if the operator has also acted as a relayer
// for someone else's fill, which the withdraw/prove/finalize/deposit cycle
// never does on its own.
func (o *Orchestrator) MaybeClaim(ctx context.Context) (Outcome, error) {
	claim := action.NewClaim(o.l1Client, o.l1SpokePool, o.signer, o.cfg.Network.Ethereum.WETH)

	ready, err := claim.IsReady(ctx)
	if err != nil {
		return OutcomeFailed, err
	}
	if !ready {
		return OutcomeSkipped, nil
	}

	if o.cfg.DryRun {
		o.logDryRun("claim", "token", claim.Token)
		return OutcomeSkipped, nil
	}

	result, err := claim.Execute(ctx)
	if err != nil {
		return OutcomeFailed, err
	}

	log.Info("claimed relayer refund", "token", claim.Token, "tx", result.TxHash)
	return OutcomeSucceeded, nil
}

// UpdateGauges refreshes every balance and pending-withdrawal gauge. A
// failure here is logged, never fatal to the cycle — gauges reflect the
// best information available, not a precondition for doing work.
func (o *Orchestrator) UpdateGauges(ctx context.Context) error {
	l1Balance, err := o.balances.Native(ctx, o.signer.Address())
	if err != nil {
		return err
	}
	o.metrics.SetL1EOABalance(format.WeiToEth(l1Balance))

	l2Balance, err := o.l2Balances.Native(ctx, o.signer.Address())
	if err != nil {
		return err
	}
	o.metrics.SetL2EOABalance(format.WeiToEth(l2Balance))

	spokeBalance, err := o.l2Balances.SpokePoolBalance(ctx, o.cfg.Network.Rollup.WETH, o.cfg.Network.Rollup.SpokePool)
	if err != nil {
		return err
	}
	o.metrics.SetSpokePoolBalance(format.WeiToEth(spokeBalance))

	deposits, err := o.inflight.GetInFlightDeposits(ctx, o.signer.Address(),
		new(big.Int).SetUint64(o.cfg.Network.Ethereum.ChainID), new(big.Int).SetUint64(o.cfg.Network.Rollup.ChainID),
		o.cfg.DepositLookbackSecs, o.cfg.Network.Ethereum.BlockTimeSecs, o.cfg.Network.Rollup.BlockTimeSecs)
	if err != nil {
		return err
	}
	depositTotal := big.NewInt(0)
	for _, d := range deposits {
		depositTotal.Add(depositTotal, d.InputAmount)
	}
	o.metrics.SetInflightDeposits(len(deposits), format.WeiToEth(depositTotal))

	l2Head, err := o.l2Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return err
	}
	fromBlock := blocksAgo(l2Head.Number.Uint64(), o.cfg.WithdrawalLookbackSecs, o.cfg.Network.Rollup.BlockTimeSecs)
	pending, err := o.state.GetPendingWithdrawals(ctx, fromBlock, withdrawal.LatestBlock, o.signer.Address())
	if err != nil {
		return err
	}

	initiatedCount, provenCount := 0, 0
	initiatedTotal, provenTotal := big.NewInt(0), big.NewInt(0)
	for _, w := range pending {
		switch w.Status.Kind() {
		case withdrawal.StatusInitiated:
			initiatedCount++
			initiatedTotal.Add(initiatedTotal, w.Transaction.Value)
		case withdrawal.StatusProven:
			provenCount++
			provenTotal.Add(provenTotal, w.Transaction.Value)
		}
	}
	o.metrics.SetWithdrawalsInitiated(initiatedCount, format.WeiToEth(initiatedTotal))
	o.metrics.SetWithdrawalsProven(provenCount, format.WeiToEth(provenTotal))
	inflightWithdrawalTotal := new(big.Int).Add(initiatedTotal, provenTotal)
	o.metrics.SetInflightWithdrawals(initiatedCount+provenCount, format.WeiToEth(inflightWithdrawalTotal))

	return nil
}

// LogSummary emits one structured line per cycle summarizing every step's
// outcome, the way a long-running reconciliation loop logs its heartbeat.
func (o *Orchestrator) LogSummary(r CycleResult) {
	log.Info("cycle complete",
		"process_withdrawals", r.ProcessWithdrawals.String(),
		"initiate_withdrawal", r.InitiateWithdrawal.String(),
		"deposit", r.Deposit.String(),
		"claim", r.Claim.String(),
		"success", r.Success(),
		"duration", r.Duration,
	)
}

// blocksAgo converts a lookback window in seconds into a starting block
// number, floored at zero.
func blocksAgo(head, lookbackSecs, blockTimeSecs uint64) uint64 {
	if blockTimeSecs == 0 {
		return head
	}
	blocks := lookbackSecs / blockTimeSecs
	if blocks >= head {
		return 0
	}
	return head - blocks
}
