package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics содержит метрики операций документного хранилища.
type StoreMetrics struct {
	// Счётчик операций по их виду (read, query, create, patch, delete).
	ops *prometheus.CounterVec
	// Счётчик ошибок операций по виду.
	opErrors *prometheus.CounterVec
	// Гистограмма длительности операций по виду.
	opDuration *prometheus.HistogramVec

	// Счётчики транзакций.
	txStarted   prometheus.Counter
	txRetried   prometheus.Counter
	txCommitted prometheus.Counter
	txFailed    prometheus.Counter

	// Гистограмма длительности транзакций.
	txDuration prometheus.Histogram
}

// NewStoreMetrics создаёт метрики хранилища в default-реестре Prometheus.
func NewStoreMetrics() *StoreMetrics {
	return newStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		ops: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_store_ops_total",
			Help: "Total number of document store operations",
		}, []string{"op"}),
		opErrors: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_store_op_errors_total",
			Help: "Total number of failed document store operations",
		}, []string{"op"}),
		opDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "storefront_store_op_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"op"}),
		txStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_store_tx_started_total",
			Help: "Total number of transactions started",
		}),
		txRetried: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_store_tx_retried_total",
			Help: "Total number of transaction bodies re-run after a conflict",
		}),
		txCommitted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_store_tx_committed_total",
			Help: "Total number of transactions committed",
		}),
		txFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_store_tx_failed_total",
			Help: "Total number of transactions that did not commit",
		}),
		txDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_store_tx_duration_seconds",
			Help:    "Duration of store transactions in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOp записывает выполненную операцию хранилища и её длительность.
func (m *StoreMetrics) RecordOp(op string, duration time.Duration, err error) {
	m.ops.WithLabelValues(op).Inc()
	m.opDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		m.opErrors.WithLabelValues(op).Inc()
	}
}

// RecordTxStarted увеличивает счётчик начатых транзакций.
func (m *StoreMetrics) RecordTxStarted() {
	m.txStarted.Inc()
}

// RecordTxRetried увеличивает счётчик повторов тела транзакции.
func (m *StoreMetrics) RecordTxRetried() {
	m.txRetried.Inc()
}

// RecordTxCommitted фиксирует успешную транзакцию и её длительность.
func (m *StoreMetrics) RecordTxCommitted(duration time.Duration) {
	m.txCommitted.Inc()
	m.txDuration.Observe(duration.Seconds())
}

// RecordTxFailed увеличивает счётчик незафиксированных транзакций.
func (m *StoreMetrics) RecordTxFailed() {
	m.txFailed.Inc()
}
