package sharepoint

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ShapesDiscovered holds the shape count of the last successful discovery.
	ShapesDiscovered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sharepoint_publisher",
			Subsystem: "discovery",
			Name:      "shapes",
			Help:      "Number of shapes in the current catalog",
		},
	)

	// DiscoveryDuration tracks how long discovery takes.
	DiscoveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sharepoint_publisher",
			Subsystem: "discovery",
			Name:      "duration_seconds",
			Help:      "Duration of discovery calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// DiscoveryTotal counts discovery calls.
	// Labels: result (success, error)
	DiscoveryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharepoint_publisher",
			Subsystem: "discovery",
			Name:      "runs_total",
			Help:      "Total number of discovery calls",
		},
		[]string{"result"},
	)

	// DataPointsPublished counts data points accepted by sinks.
	// Labels: entity
	DataPointsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharepoint_publisher",
			Subsystem: "publish",
			Name:      "data_points_total",
			Help:      "Total number of data points sent to sinks",
		},
		[]string{"entity"},
	)

	// PublishTotal counts publish calls.
	// Labels: result (success, error, unknown_shape)
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharepoint_publisher",
			Subsystem: "publish",
			Name:      "runs_total",
			Help:      "Total number of publish calls",
		},
		[]string{"result"},
	)
)

// RecordDiscovery records the outcome of a discovery call.
func RecordDiscovery(seconds float64, shapes int, err error) {
	DiscoveryDuration.Observe(seconds)
	if err != nil {
		DiscoveryTotal.WithLabelValues("error").Inc()
		return
	}
	DiscoveryTotal.WithLabelValues("success").Inc()
	ShapesDiscovered.Set(float64(shapes))
}

// RecordPublish records the outcome of a publish call.
func RecordPublish(entity string, dataPoints int64, result string) {
	if dataPoints > 0 {
		DataPointsPublished.WithLabelValues(entity).Add(float64(dataPoints))
	}
	PublishTotal.WithLabelValues(result).Inc()
}
