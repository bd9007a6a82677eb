package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for dataset metrics.
const (
	LoadResultOK    = "ok"
	LoadResultError = "error"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

var (
	DatasetLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_dataset_loads_total",
		Help: "Number of times the dataset file was read and parsed",
	}, []string{"result"})

	DatasetCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_dataset_cache_lookups_total",
		Help: "Dataset cache lookups by outcome",
	}, []string{"result"})

	DatasetLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_dataset_load_duration_seconds",
		Help:    "Time spent reading and parsing the dataset file",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	DatasetRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_dataset_records",
		Help: "Number of records in the cached dataset",
	})

	DatasetIncompleteRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_dataset_incomplete_records",
		Help: "Number of cached records missing a subject or type",
	})

	DatasetLastLoadTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_dataset_last_load_timestamp_seconds",
		Help: "Unix time of the last successful dataset load",
	})
)
