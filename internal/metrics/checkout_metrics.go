package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты отправки заказа для метки result.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// CheckoutMetrics содержит метрики корзины и отправки заказов.
type CheckoutMetrics struct {
	// Счётчики операций
	submissions *prometheus.CounterVec
	cartUpdates prometheus.Counter
	cartClears  prometheus.Counter

	// Гистограммы
	submitDuration prometheus.Histogram
	orderAmount    prometheus.Histogram

	// Отправки, ожидающие ответа API
	inFlight prometheus.Gauge
}

// NewCheckoutMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewCheckoutMetrics() *CheckoutMetrics {
	return NewCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCheckoutMetricsWithRegisterer регистрирует метрики в переданном registerer.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		submissions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "rahmet_checkout_submissions_total",
			Help: "Total number of order submissions grouped by result",
		}, []string{"result"}),
		cartUpdates: registerCounter(registerer, prometheus.CounterOpts{
			Name: "rahmet_cart_updates_total",
			Help: "Total number of cart quantity changes",
		}),
		cartClears: registerCounter(registerer, prometheus.CounterOpts{
			Name: "rahmet_cart_clears_total",
			Help: "Total number of carts cleared after a confirmed order",
		}),
		submitDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "rahmet_checkout_submit_duration_seconds",
			Help:    "Duration of order submission calls in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}),
		orderAmount: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "rahmet_checkout_order_amount",
			Help:    "Total amount of submitted orders in whole currency units",
			Buckets: []float64{500, 1000, 2000, 5000, 10000, 20000, 50000},
		}),
		inFlight: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "rahmet_checkout_submissions_in_flight",
			Help: "Number of order submissions waiting for the remote API",
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

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
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

// RecordCartUpdate увеличивает счётчик изменений корзины.
func (m *CheckoutMetrics) RecordCartUpdate() {
	m.cartUpdates.Inc()
}

// RecordSubmitStarted отмечает начало отправки заказа.
func (m *CheckoutMetrics) RecordSubmitStarted() {
	m.inFlight.Inc()
}

// RecordSubmitSucceeded фиксирует принятый заказ, его сумму и очистку корзины.
func (m *CheckoutMetrics) RecordSubmitSucceeded(duration time.Duration, amount int64) {
	m.inFlight.Dec()
	m.submissions.WithLabelValues(ResultSuccess).Inc()
	m.submitDuration.Observe(duration.Seconds())
	m.orderAmount.Observe(float64(amount))
	m.cartClears.Inc()
}

// RecordSubmitFailed фиксирует неудачную отправку.
func (m *CheckoutMetrics) RecordSubmitFailed(duration time.Duration) {
	m.inFlight.Dec()
	m.submissions.WithLabelValues(ResultFailure).Inc()
	m.submitDuration.Observe(duration.Seconds())
}
