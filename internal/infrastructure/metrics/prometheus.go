package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CapturedRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "traffic_log_requests_captured_total",
			Help: "Intercepted HTTP exchanges",
		},
	)

	DroppedWrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "traffic_log_writes_dropped_total",
			Help: "Log writes dropped after a sink failure",
		},
	)

	WriteLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "traffic_log_write_latency_milliseconds",
			Help:    "Latency of log writes per sink in milliseconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sink"},
	)

	PurgedEntries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "traffic_log_entries_purged_total",
			Help: "Entries removed by retention cleanup",
		},
	)
)

func init() {
	prometheus.Register(CapturedRequests)
	prometheus.Register(DroppedWrites)
	prometheus.Register(WriteLatency)
	prometheus.Register(PurgedEntries)
}
