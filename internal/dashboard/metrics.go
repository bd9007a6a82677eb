package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values.
const (
	StatusOK       = "200"
	StatusNotFound = "404"
	StatusMethod   = "405"
	StatusLimited  = "429"
	StatusError    = "500"

	RoutePage      = "page"
	RouteAPI       = "api"
	RouteChart     = "chart"
	RouteNotFound  = "not_found"
	RouteAnonymous = "unknown"

	ReasonRateLimited = "rate_limited"

	ErrorTypeDataset = "dataset_error"
	ErrorTypeRender  = "render_error"
	ErrorTypeEncode  = "encode_error"
)

var (
	// HitsTotal counts requests by route and HTTP status code.
	HitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_hits_total",
		Help: "Total number of dashboard requests",
	}, []string{"route", "status"})

	// DeniedTotal counts denied requests by reason.
	DeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_denied_total",
		Help: "Total number of denied dashboard requests",
	}, []string{"reason"})

	// ErrorsTotal counts errors by type.
	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_errors_total",
		Help: "Total number of dashboard errors",
	}, []string{"type"})

	// ChartRendersTotal counts rendered chart images.
	ChartRendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_chart_renders_total",
		Help: "Total number of rendered charts",
	}, []string{"chart", "format"})

	// LatencyHistogram measures request latency.
	LatencyHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_latency_seconds",
		Help:    "Latency of dashboard request handling",
		Buckets: prometheus.DefBuckets,
	})
)
