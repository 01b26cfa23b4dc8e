package monitoring

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type WithdrawRejectedReason string

const (
	WithdrawLiquidityRestricted WithdrawRejectedReason = "liquidity_restrictions"
	WithdrawWouldKillAccount    WithdrawRejectedReason = "would_kill_account"
	WithdrawInsufficientBalance WithdrawRejectedReason = "insufficient_balance"
	WithdrawOverflow            WithdrawRejectedReason = "overflow"
	WithdrawRejectedUnknown     WithdrawRejectedReason = "other"
)

type ledgerPromMetrics struct {
	totalIssuance     prometheus.Gauge
	accountCount      prometheus.Gauge
	reapedAccounts    prometheus.Counter
	mintedTotal       prometheus.Counter
	burnedTotal       prometheus.Counter
	dilutionEvents    prometheus.Counter
	rejectedWithdraws *prometheus.CounterVec
	operations        *prometheus.CounterVec
}

func newLedgerPromMetrics(reg prometheus.Registerer) *ledgerPromMetrics {
	factory := promauto.With(reg)
	return &ledgerPromMetrics{
		totalIssuance: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "currency_total_issuance",
				Help: "Total amount of currency in existence (float approximation)",
			},
		),
		accountCount: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "currency_accounts",
				Help: "Number of live account records",
			},
		),
		reapedAccounts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "currency_reaped_accounts_total",
				Help: "Accounts deleted after both balances fell below the existential deposit",
			},
		),
		mintedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "currency_minted_total",
				Help: "Sum of unbalanced increases (float approximation)",
			},
		),
		burnedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "currency_burned_total",
				Help: "Sum of unbalanced decreases, including dust (float approximation)",
			},
		),
		dilutionEvents: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "currency_dilution_events_total",
				Help: "Number of minting events that diluted existing holders",
			},
		),
		rejectedWithdraws: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "currency_rejected_withdrawals_total",
				Help: "Withdrawal-class operations rejected by the ledger",
			},
			[]string{"reason"},
		),
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "currency_operations_total",
				Help: "Ledger mutations applied, by operation",
			},
			[]string{"op"},
		),
	}
}

var (
	initOnce      sync.Once
	ledgerMetrics *ledgerPromMetrics
)

// InitMetrics registers the ledger metrics with the default registry. Calling it more than
// once is harmless. Until it is called every recorder below is a no-op.
func InitMetrics() {
	initOnce.Do(func() {
		ledgerMetrics = newLedgerPromMetrics(prometheus.DefaultRegisterer)
	})
}

func balanceToFloat(v *uint256.Int) float64 {
	return v.Float64()
}

func SetTotalIssuance(v *uint256.Int) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.totalIssuance.Set(balanceToFloat(v))
}

func SetAccountCount(n int) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.accountCount.Set(float64(n))
}

func IncreaseReapedAccounts() {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.reapedAccounts.Inc()
}

func RecordMinted(v *uint256.Int) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.mintedTotal.Add(balanceToFloat(v))
}

func RecordBurned(v *uint256.Int) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.burnedTotal.Add(balanceToFloat(v))
}

func IncreaseDilutionEvents() {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.dilutionEvents.Inc()
}

func IncreaseRejectedWithdrawal(reason WithdrawRejectedReason) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.rejectedWithdraws.With(prometheus.Labels{"reason": string(reason)}).Inc()
}

func IncreaseOperation(op string) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.operations.With(prometheus.Labels{"op": op}).Inc()
}
