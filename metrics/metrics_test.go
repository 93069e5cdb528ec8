package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordCycleIncrementsCounters(t *testing.T) {
	m := New()

	m.RecordCycle(true, 2*time.Second)
	m.RecordCycle(false, time.Second)

	require.Equal(t, float64(2), testutil.ToFloat64(m.cyclesTotal))
	require.Equal(t, float64(1), testutil.ToFloat64(m.cyclesSuccessTotal))
	require.Equal(t, float64(1), testutil.ToFloat64(m.cyclesFailureTotal))
}

func TestRecordDepositAndFinalizedTotals(t *testing.T) {
	m := New()

	m.RecordDeposit(1.5)
	m.RecordDeposit(0.5)
	require.Equal(t, float64(2), testutil.ToFloat64(m.depositsTotal))
	require.Equal(t, float64(2), testutil.ToFloat64(m.depositAmountEthTotal))

	m.RecordWithdrawalFinalized()
	require.Equal(t, float64(1), testutil.ToFloat64(m.withdrawalsFinalizedTotal))
}

func TestSetWithdrawalGauges(t *testing.T) {
	m := New()

	m.SetWithdrawalsInitiated(3, 9.5)
	m.SetWithdrawalsProven(1, 2.0)
	m.SetInflightWithdrawals(4, 11.5)

	require.Equal(t, float64(3), testutil.ToFloat64(m.withdrawalsInitiatedCount))
	require.Equal(t, float64(9.5), testutil.ToFloat64(m.withdrawalsInitiatedEth))
	require.Equal(t, float64(1), testutil.ToFloat64(m.withdrawalsProvenCount))
	require.Equal(t, float64(2), testutil.ToFloat64(m.withdrawalsProvenEth))
	require.Equal(t, float64(4), testutil.ToFloat64(m.inflightWithdrawalsCount))
	require.Equal(t, float64(11.5), testutil.ToFloat64(m.inflightWithdrawalsEth))
}

func TestSetBalanceAndDepositGauges(t *testing.T) {
	m := New()

	m.SetL1EOABalance(10.25)
	m.SetL2EOABalance(1.5)
	m.SetSpokePoolBalance(50)
	m.SetInflightDeposits(2, 7.25)

	require.Equal(t, float64(10.25), testutil.ToFloat64(m.l1EOABalanceEth))
	require.Equal(t, float64(1.5), testutil.ToFloat64(m.l2EOABalanceEth))
	require.Equal(t, float64(50), testutil.ToFloat64(m.spokePoolBalanceEth))
	require.Equal(t, float64(2), testutil.ToFloat64(m.inflightDepositsCount))
	require.Equal(t, float64(7.25), testutil.ToFloat64(m.inflightDepositsEth))
}
