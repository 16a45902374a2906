package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector interface for data layer metrics
type Collector interface {
	DBQuery(duration time.Duration, err error)
	DBTransaction(err error)
	RedisCommand(command string, err error)
	MQPublish(system string, err error)
	HealthCheck(component string, healthy bool)
}

// NoOpCollector implements Collector with no-op methods
type NoOpCollector struct{}

func (NoOpCollector) DBQuery(time.Duration, error) {}
func (NoOpCollector) DBTransaction(error)          {}
func (NoOpCollector) RedisCommand(string, error)   {}
func (NoOpCollector) MQPublish(string, error)      {}
func (NoOpCollector) HealthCheck(string, bool)     {}

// PrometheusCollector exports data layer metrics to a prometheus registry.
type PrometheusCollector struct {
	dbQueries     *prometheus.HistogramVec
	dbTxs         *prometheus.CounterVec
	redisCommands *prometheus.CounterVec
	mqPublished   *prometheus.CounterVec
	health        *prometheus.GaugeVec
}

// NewPrometheusCollector registers data layer metrics on reg.
func NewPrometheusCollector(namespace string, reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		dbQueries: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "db_query_duration_seconds",
			Help:      "Duration of database statements.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		dbTxs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "db_transactions_total",
			Help:      "Database transactions by outcome.",
		}, []string{"outcome"}),
		redisCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "redis_commands_total",
			Help:      "Redis commands by name and outcome.",
		}, []string{"command", "outcome"}),
		mqPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "mq_published_total",
			Help:      "Messages published by broker and outcome.",
		}, []string{"system", "outcome"}),
		health: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "component_healthy",
			Help:      "1 when the last health check of a component passed.",
		}, []string{"component"}),
	}
	reg.MustRegister(c.dbQueries, c.dbTxs, c.redisCommands, c.mqPublished, c.health)
	return c
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (c *PrometheusCollector) DBQuery(d time.Duration, err error) {
	c.dbQueries.WithLabelValues(outcome(err)).Observe(d.Seconds())
}

func (c *PrometheusCollector) DBTransaction(err error) {
	c.dbTxs.WithLabelValues(outcome(err)).Inc()
}

func (c *PrometheusCollector) RedisCommand(command string, err error) {
	c.redisCommands.WithLabelValues(command, outcome(err)).Inc()
}

func (c *PrometheusCollector) MQPublish(system string, err error) {
	c.mqPublished.WithLabelValues(system, outcome(err)).Inc()
}

func (c *PrometheusCollector) HealthCheck(component string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1
	}
	c.health.WithLabelValues(component).Set(v)
}
