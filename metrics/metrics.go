// Package metrics 定义 Prometheus 指标，并提供记录函数。
// 指标在包初始化时通过 promauto 注册到默认 Registry，由 server 在 /metrics 暴露。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline
	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animerec_node_duration_seconds",
			Help:    "Duration of pipeline node execution in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"kind", "node"},
	)

	NodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_node_errors_total",
			Help: "Total number of pipeline node failures",
		},
		[]string{"kind", "node"},
	)

	NodeItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animerec_node_output_items",
			Help:    "Number of items produced by a pipeline node",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"kind", "node"},
	)

	SkippedCandidates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "animerec_skipped_candidates_total",
			Help: "Total number of candidates dropped because they could not be resolved in the item index",
		},
	)

	// 推荐请求
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // ok, empty, not_found, invalid, error
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "animerec_recommend_duration_seconds",
			Help:    "End-to-end duration of a recommendation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// 结果缓存
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "animerec_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "animerec_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_cache_errors_total",
			Help: "Total number of cache backend failures",
		},
		[]string{"operation"}, // get, set, decode, encode
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "animerec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// 启动加载
	ResourceSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "animerec_resource_size",
			Help: "Number of rows loaded per resource at startup",
		},
		[]string{"resource"}, // user_embeddings, item_embeddings, ratings, catalog
	)

	ResourceLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "animerec_resource_load_duration_seconds",
			Help:    "Duration of loading all startup resources in seconds",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// HTTP
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animerec_api_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animerec_api_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// RecordNode 记录一次 Node 执行。
func RecordNode(kind, node string, duration time.Duration, items int, err error) {
	NodeDuration.WithLabelValues(kind, node).Observe(duration.Seconds())
	if err != nil {
		NodeErrors.WithLabelValues(kind, node).Inc()
		return
	}
	NodeItems.WithLabelValues(kind, node).Observe(float64(items))
}

// RecordSkippedCandidates 记录被跳过的候选数量。
func RecordSkippedCandidates(n int) {
	if n > 0 {
		SkippedCandidates.Add(float64(n))
	}
}

// RecordRecommend 记录一次推荐请求。
func RecordRecommend(outcome string, duration time.Duration) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
}

func RecordCacheHit()  { CacheHits.Inc() }
func RecordCacheMiss() { CacheMisses.Inc() }

func RecordCacheError(operation string) {
	CacheErrors.WithLabelValues(operation).Inc()
}

// SetCircuitBreakerState 0=closed 1=half-open 2=open
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func SetResourceSize(resource string, n int) {
	ResourceSize.WithLabelValues(resource).Set(float64(n))
}

func RecordResourceLoad(duration time.Duration) {
	ResourceLoadDuration.Observe(duration.Seconds())
}

// RecordAPIRequest 记录一次 HTTP 请求；route 使用路由模板而非原始路径，避免标签爆炸。
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest inc=true 表示请求开始，false 表示结束。
func TrackActiveRequest(inc bool) {
	if inc {
		ActiveRequests.Inc()
	} else {
		ActiveRequests.Dec()
	}
}
