package observability

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"zkusd/protoerrors"
)

type operationMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

type liquidationMetrics struct {
	liquidations      *prometheus.CounterVec
	collateralSeized  prometheus.Counter
	debtCovered       prometheus.Counter
	absorptionCount   prometheus.Counter
}

type redemptionMetrics struct {
	redemptions   prometheus.Counter
	netRedeemed   prometheus.Counter
	feeCollected  prometheus.Counter
	legsTouched   prometheus.Counter
}

type protocolMetrics struct {
	recoveryMode    prometheus.Gauge
	tcrPercent      prometheus.Gauge
	totalCollateral prometheus.Gauge
	totalDebt       prometheus.Gauge
}

var (
	operationOnce sync.Once
	operationReg  *operationMetrics

	liquidationOnce sync.Once
	liquidationReg  *liquidationMetrics

	redemptionOnce sync.Once
	redemptionReg  *redemptionMetrics

	protocolOnce sync.Once
	protocolReg  *protocolMetrics
)

// Operations returns the lazily-initialised registry tracking every
// orchestrator operation wrapped by instrument (position, transfer, price,
// liquidation, redemption, stability-pool and parameter-change operations)
// by outcome and latency.
func Operations() *operationMetrics {
	operationOnce.Do(func() {
		operationReg = &operationMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "zkusd",
				Subsystem: "orchestrator",
				Name:      "operations_total",
				Help:      "Total operations executed segmented by operation and outcome.",
			}, []string{"operation", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "zkusd",
				Subsystem: "orchestrator",
				Name:      "operation_errors_total",
				Help:      "Total rejected operations segmented by operation and error code.",
			}, []string{"operation", "code"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "zkusd",
				Subsystem: "orchestrator",
				Name:      "operation_duration_seconds",
				Help:      "Latency distribution for orchestrator operations.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"operation"}),
		}
		prometheus.MustRegister(operationReg.requests, operationReg.errors, operationReg.latency)
	})
	return operationReg
}

// Observe records the outcome and latency of one orchestrator operation. err
// is the operation's own result, not a transport-level failure.
func (m *operationMetrics) Observe(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	op := normalizeLabel(operation)
	outcome := "success"
	if err != nil {
		outcome = "error"
		m.errors.WithLabelValues(op, errorCode(err)).Inc()
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(duration.Seconds())
}

// Liquidations returns the lazily-initialised liquidation-volume registry.
func Liquidations() *liquidationMetrics {
	liquidationOnce.Do(func() {
		liquidationReg = &liquidationMetrics{
			liquidations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "zkusd",
				Subsystem: "liquidation",
				Name:      "liquidations_total",
				Help:      "Count of liquidations segmented by whether the stability pool absorbed them.",
			}, []string{"absorbed"}),
			collateralSeized: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "zkusd",
				Subsystem: "liquidation",
				Name:      "collateral_seized_sats_total",
				Help:      "Cumulative collateral, in satoshis, seized via liquidation.",
			}),
			debtCovered: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "zkusd",
				Subsystem: "liquidation",
				Name:      "debt_covered_cents_total",
				Help:      "Cumulative debt, in cents, covered via liquidation.",
			}),
			absorptionCount: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "zkusd",
				Subsystem: "stability_pool",
				Name:      "absorptions_total",
				Help:      "Count of liquidations the stability pool has absorbed.",
			}),
		}
		prometheus.MustRegister(
			liquidationReg.liquidations,
			liquidationReg.collateralSeized,
			liquidationReg.debtCovered,
			liquidationReg.absorptionCount,
		)
	})
	return liquidationReg
}

// Observe records one completed liquidation.
func (m *liquidationMetrics) Observe(debtCoveredCents, collateralSeizedSats uint64, absorbed bool) {
	if m == nil {
		return
	}
	label := "false"
	if absorbed {
		label = "true"
		m.absorptionCount.Inc()
	}
	m.liquidations.WithLabelValues(label).Inc()
	m.debtCovered.Add(float64(debtCoveredCents))
	m.collateralSeized.Add(float64(collateralSeizedSats))
}

// Redemptions returns the lazily-initialised redemption-volume registry.
func Redemptions() *redemptionMetrics {
	redemptionOnce.Do(func() {
		redemptionReg = &redemptionMetrics{
			redemptions: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "zkusd",
				Subsystem: "redemption",
				Name:      "redemptions_total",
				Help:      "Count of completed redemptions.",
			}),
			netRedeemed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "zkusd",
				Subsystem: "redemption",
				Name:      "net_redeemed_cents_total",
				Help:      "Cumulative debt-token cents redeemed, excluding fees.",
			}),
			feeCollected: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "zkusd",
				Subsystem: "redemption",
				Name:      "fee_cents_total",
				Help:      "Cumulative redemption fee, in cents, collected.",
			}),
			legsTouched: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "zkusd",
				Subsystem: "redemption",
				Name:      "legs_total",
				Help:      "Cumulative number of positions touched across all redemptions.",
			}),
		}
		prometheus.MustRegister(
			redemptionReg.redemptions,
			redemptionReg.netRedeemed,
			redemptionReg.feeCollected,
			redemptionReg.legsTouched,
		)
	})
	return redemptionReg
}

// Observe records one completed redemption.
func (m *redemptionMetrics) Observe(netRedeemedCents, feeCents uint64, legs int) {
	if m == nil {
		return
	}
	m.redemptions.Inc()
	m.netRedeemed.Add(float64(netRedeemedCents))
	m.feeCollected.Add(float64(feeCents))
	m.legsTouched.Add(float64(legs))
}

// Protocol returns the lazily-initialised system-health gauge registry.
func Protocol() *protocolMetrics {
	protocolOnce.Do(func() {
		protocolReg = &protocolMetrics{
			recoveryMode: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "zkusd",
				Subsystem: "system",
				Name:      "recovery_mode",
				Help:      "Indicates whether the system is in recovery mode (1) or not (0).",
			}),
			tcrPercent: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "zkusd",
				Subsystem: "system",
				Name:      "total_collateral_ratio_percent",
				Help:      "System-wide total collateralization ratio, in integer percent.",
			}),
			totalCollateral: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "zkusd",
				Subsystem: "system",
				Name:      "total_collateral_sats",
				Help:      "Total collateral locked across all open positions, in satoshis.",
			}),
			totalDebt: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "zkusd",
				Subsystem: "system",
				Name:      "total_debt_cents",
				Help:      "Total outstanding debt across all open positions, in cents.",
			}),
		}
		prometheus.MustRegister(
			protocolReg.recoveryMode,
			protocolReg.tcrPercent,
			protocolReg.totalCollateral,
			protocolReg.totalDebt,
		)
	})
	return protocolReg
}

// Observe updates the system-health gauges after an operation settles.
func (m *protocolMetrics) Observe(inRecovery bool, tcrPercent, totalCollateralSats, totalDebtCents uint64) {
	if m == nil {
		return
	}
	if inRecovery {
		m.recoveryMode.Set(1)
	} else {
		m.recoveryMode.Set(0)
	}
	m.tcrPercent.Set(float64(tcrPercent))
	m.totalCollateral.Set(float64(totalCollateralSats))
	m.totalDebt.Set(float64(totalDebtCents))
}

func normalizeLabel(op string) string {
	trimmed := strings.TrimSpace(op)
	if trimmed == "" {
		return "unknown"
	}
	return strings.ToLower(trimmed)
}

// errorCode reports a stable label for a protocol error: *protoerrors.Error's
// numeric Code, or "unknown" for anything else. Falling back to the error's
// free-text message would blow up label cardinality.
func errorCode(err error) string {
	if pe, ok := err.(*protoerrors.Error); ok {
		return strconv.Itoa(pe.Code)
	}
	return "unknown"
}
