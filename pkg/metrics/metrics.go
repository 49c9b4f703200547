package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics коллектор Prometheus-метрик сервиса
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration    *prometheus.HistogramVec
	dbOpenConnections  prometheus.Gauge
	dbInUseConnections prometheus.Gauge
	dbIdleConnections  prometheus.Gauge
	dbWaitCount        prometheus.Gauge

	exchangeOutcomes       *prometheus.CounterVec
	chainHops              *prometheus.CounterVec
	negotiationTransitions *prometheus.CounterVec
	roomLockWait           prometheus.Histogram
	travelModeConfirmed    prometheus.Counter
}

// New регистрирует метрики в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegistry регистрирует метрики в переданном реестре (для тестов)
func NewWithRegistry(reg prometheus.Registerer, serviceName string) *Metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		dbQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation", "status"}),
		dbOpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: labels,
		}),
		dbInUseConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: labels,
		}),
		dbIdleConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: labels,
		}),
		dbWaitCount: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}),

		exchangeOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "exchange_outcomes_total",
			Help:        "Exchange request outcomes by resolution type",
			ConstLabels: labels,
		}, []string{"type"}),
		chainHops: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "chain_hops_total",
			Help:        "Chain exchange hops by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		negotiationTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "negotiation_transitions_total",
			Help:        "Negotiation state transitions",
			ConstLabels: labels,
		}, []string{"type", "outcome"}),
		roomLockWait: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "room_lock_wait_seconds",
			Help:        "Time spent waiting for the per-room writer lock",
			ConstLabels: labels,
			Buckets:     []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}),
		travelModeConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Name:        "travel_mode_auto_confirmed_total",
			Help:        "Travel mode decisions confirmed by the background scheduler",
			ConstLabels: labels,
		}),
	}
}

// ObserveHTTPRequest записывает метрики HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveQuery записывает длительность запроса к БД
func (m *Metrics) ObserveQuery(operation string, duration time.Duration, err error) {
	status := "ok"
	if err != nil && err != sql.ErrNoRows {
		status = "error"
	}
	m.dbQueryDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// SetPoolStats обновляет метрики пула соединений
func (m *Metrics) SetPoolStats(stats sql.DBStats) {
	m.dbOpenConnections.Set(float64(stats.OpenConnections))
	m.dbInUseConnections.Set(float64(stats.InUse))
	m.dbIdleConnections.Set(float64(stats.Idle))
	m.dbWaitCount.Set(float64(stats.WaitCount))
}

// IncExchangeOutcome учитывает исход запроса на обмен (direct, relocated, chain_started, ...)
func (m *Metrics) IncExchangeOutcome(exchangeType string) {
	m.exchangeOutcomes.WithLabelValues(exchangeType).Inc()
}

// IncChainHop учитывает исход шага цепочки (accepted, declined, completed, failed)
func (m *Metrics) IncChainHop(outcome string) {
	m.chainHops.WithLabelValues(outcome).Inc()
}

// IncNegotiationTransition учитывает переход переговоров
func (m *Metrics) IncNegotiationTransition(negotiationType, outcome string) {
	m.negotiationTransitions.WithLabelValues(negotiationType, outcome).Inc()
}

// ObserveRoomLockWait записывает время ожидания блокировки комнаты
func (m *Metrics) ObserveRoomLockWait(duration time.Duration) {
	m.roomLockWait.Observe(duration.Seconds())
}

// IncTravelModeConfirmed учитывает автоматически подтвержденные решения о режиме поездки
func (m *Metrics) IncTravelModeConfirmed(count int) {
	m.travelModeConfirmed.Add(float64(count))
}
