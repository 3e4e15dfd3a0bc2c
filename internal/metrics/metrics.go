// Package metrics records prometheus metrics about executed operations and
// pushes them to a pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/logfields"
)

const loggerName = "metrics"

const metricNamespace = "prflow"

const (
	operationsMetricName        = "operations_total"
	operationDurationMetricName = "operation_duration_seconds"
)

const (
	repositoryLabel = "repository"
	operationLabel  = "operation"
	resultLabel     = "result"
)

// Collector records metrics in its own registry.
// A nil *Collector is valid, all methods are no-ops.
type Collector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		logger:   zap.L().Named(loggerName),
		registry: reg,
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      operationsMetricName,
				Help:      "count of executed operations by result",
			},
			[]string{repositoryLabel, operationLabel, resultLabel},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricNamespace,
				Name:      operationDurationMetricName,
				Help:      "duration of executed operations",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{repositoryLabel, operationLabel},
		),
	}
}

func (c *Collector) logGetMetricFailed(metricName string, err error) {
	c.logger.Warn(
		"could not record metric",
		zap.String("metric", metricName),
		logfields.Event("recording_metric_failed"),
		zap.Error(err),
	)
}

// ObserveOperation records that operation finished with result after
// duration d.
func (c *Collector) ObserveOperation(repository, operation, result string, d time.Duration) {
	if c == nil {
		return
	}

	cnt, err := c.operations.GetMetricWith(prometheus.Labels{
		repositoryLabel: repository,
		operationLabel:  operation,
		resultLabel:     result,
	})
	if err != nil {
		c.logGetMetricFailed(operationsMetricName, err)
		return
	}

	cnt.Inc()

	hist, err := c.operationDuration.GetMetricWith(prometheus.Labels{
		repositoryLabel: repository,
		operationLabel:  operation,
	})
	if err != nil {
		c.logGetMetricFailed(operationDurationMetricName, err)
		return
	}

	hist.Observe(d.Seconds())
}

// Push pushes all recorded metrics to the pushgateway at url.
// Metrics with the same job and grouping labels are replaced.
func (c *Collector) Push(ctx context.Context, url, job string, grouping map[string]string) error {
	if c == nil {
		return nil
	}

	pusher := push.New(url, job).Gatherer(c.registry)
	for k, v := range grouping {
		pusher = pusher.Grouping(k, v)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s failed: %w", url, err)
	}

	c.logger.Debug("pushed metrics", zap.String("pushgateway_url", url), zap.String("job", job))

	return nil
}
