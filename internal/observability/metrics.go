// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/rewards"
	"zombie-scanner/internal/scancache"
	"zombie-scanner/internal/scanner"
	"zombie-scanner/internal/solana"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "zombie_scanner"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	factory   promauto.Factory
	namespace string

	// Scan metrics
	ScansTotal     *prometheus.CounterVec
	ScanDuration   *prometheus.HistogramVec
	AssetsDetected *prometheus.CounterVec

	// Solana metrics
	RPCCallLatency  *prometheus.HistogramVec
	RPCCallErrors   *prometheus.CounterVec
	WSNotifications prometheus.Counter
	WSSubscriptions prometheus.Gauge

	// Session metrics
	WalletConnects   prometheus.Counter
	ConnectedWallets prometheus.Gauge

	// Claim metrics
	ClaimsTotal   *prometheus.CounterVec
	PointsClaimed prometheus.Counter
	BreakerState  prometheus.Gauge

	// Health metrics
	LastSuccessfulScan prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		factory:   factory,
		namespace: namespace,

		// Scan metrics
		ScansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "scans_total",
			Help:      "Total number of wallet scans by source and status",
		}, []string{"source", "status"}),
		ScanDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "scan_duration_seconds",
			Help:      "Wallet scan duration in seconds",
			Buckets:   []float64{0.005, 0.05, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		AssetsDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "assets_detected_total",
			Help:      "Total number of zombie assets detected by ledger scans, by category",
		}, []string{"category"}),

		// Solana metrics
		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCCallErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_errors_total",
			Help:      "Total number of failed Solana RPC calls by method and class",
		}, []string{"method", "class"}),
		WSNotifications: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "ws_notifications_total",
			Help:      "Total number of wallet activity notifications received",
		}),
		WSSubscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "ws_subscriptions",
			Help:      "Current number of wallet activity subscriptions",
		}),

		// Session metrics
		WalletConnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "wallet_connects_total",
			Help:      "Total number of wallet connections",
		}),
		ConnectedWallets: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "connected_wallets",
			Help:      "Current number of connected wallets",
		}),

		// Claim metrics
		ClaimsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rewards",
			Name:      "claims_total",
			Help:      "Total number of claim attempts by provider and status",
		}, []string{"provider", "status"}),
		PointsClaimed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rewards",
			Name:      "points_claimed_total",
			Help:      "Total number of points claimed successfully",
		}),
		BreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rewards",
			Name:      "primary_breaker_state",
			Help:      "Primary rewards provider breaker state (0 closed, 1 open, 2 half-open)",
		}),

		// Health metrics
		LastSuccessfulScan: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_scan_timestamp",
			Help:      "Unix timestamp of last successful ledger scan",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint serving g.
// A nil g serves the default gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ScanObserver returns a scanner observer recording scan counts and latency.
func (m *Metrics) ScanObserver() scanner.Observer {
	return func(_ context.Context, res scanner.Result) {
		m.RecordScan(res)
	}
}

// RecordScan records one scan result.
func (m *Metrics) RecordScan(res scanner.Result) {
	source := "ledger"
	if res.FromCache {
		source = "cache"
	}
	status := "ok"
	if res.Err != nil {
		status = "error"
	}

	m.ScansTotal.WithLabelValues(source, status).Inc()
	if res.Err != nil {
		return
	}
	m.ScanDuration.WithLabelValues(source).Observe(res.Duration.Seconds())
	if res.FromCache {
		return
	}
	for category, n := range domain.CountByCategory(res.Assets) {
		m.AssetsDetected.WithLabelValues(category.String()).Add(float64(n))
	}
	if !res.CompletedAt.IsZero() {
		m.LastSuccessfulScan.Set(float64(res.CompletedAt.Unix()))
	}
}

// RPCObserver returns a solana client observer recording call latency and errors.
func (m *Metrics) RPCObserver() solana.Observer {
	return func(method string, elapsed time.Duration, err error) {
		m.RPCCallLatency.WithLabelValues(method).Observe(elapsed.Seconds())
		if err != nil {
			m.RPCCallErrors.WithLabelValues(method, solana.ErrorClass(err)).Inc()
		}
	}
}

// ClaimObserver returns a rewards observer counting claim attempts.
func (m *Metrics) ClaimObserver() rewards.Observer {
	return func(rec *domain.ClaimRecord) {
		m.ClaimsTotal.WithLabelValues(string(rec.Provider), string(rec.Status)).Inc()
		if rec.Status == domain.ClaimStatusSuccess {
			m.PointsClaimed.Add(float64(rec.Points))
		}
	}
}

// BreakerStateChange tracks the primary rewards breaker.
func (m *Metrics) BreakerStateChange(_, to rewards.BreakerState) {
	m.BreakerState.Set(float64(to))
}

// RegisterCache exports cumulative cache counters read from src at scrape time.
func (m *Metrics) RegisterCache(src scancache.Cache) {
	m.factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total number of scan cache hits",
	}, func() float64 { return float64(src.Stats().Hits) })
	m.factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total number of scan cache misses",
	}, func() float64 { return float64(src.Stats().Misses) })
	m.factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "cache",
		Name:      "evictions_total",
		Help:      "Total number of scan cache evictions",
	}, func() float64 { return float64(src.Stats().Evictions) })
	m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Current number of cached scans",
	}, func() float64 { return float64(src.Stats().Size) })
}

// WalletConnected implements session.Listener.
func (m *Metrics) WalletConnected(string) {
	m.WalletConnects.Inc()
	m.ConnectedWallets.Inc()
}

// WalletDisconnected implements session.Listener.
func (m *Metrics) WalletDisconnected(string) {
	m.ConnectedWallets.Dec()
}
