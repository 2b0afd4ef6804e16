// Package metrics 提供 Prometheus helper，包含本系统的业务与 HTTP 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数（按方法、路径、状态码）
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 外部行情 API 调用计数（按结果：ok, provider_error, parse_error）
	ProviderCallsTotal *prometheus.CounterVec
	// 行情调用预算拒绝计数（按窗口：minute, day）
	ProviderThrottledTotal *prometheus.CounterVec
	// 行情缓存命中计数（按来源：fresh, stale_fallback, miss）
	QuoteLookupsTotal *prometheus.CounterVec

	// 成交计数（按方向与结果）
	TradesTotal *prometheus.CounterVec
	// 钱包版本冲突计数
	WalletConflictsTotal prometheus.Counter

	// 预警扫描轮次计数
	AlertScansTotal prometheus.Counter
	// 触发的预警计数
	AlertsTriggeredTotal prometheus.Counter
}

// New 创建指标实例并注册到独立 registry
func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "platform",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "platform",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		ProviderCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "platform",
			Subsystem: serviceName,
			Name:      "provider_calls_total",
			Help:      "Calls made to the external market data provider",
		}, []string{"result"}),
		ProviderThrottledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "platform",
			Subsystem: serviceName,
			Name:      "provider_throttled_total",
			Help:      "Provider calls rejected by the call budget",
		}, []string{"window"}),
		QuoteLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "platform",
			Subsystem: serviceName,
			Name:      "quote_lookups_total",
			Help:      "Quote price resolutions by outcome",
		}, []string{"outcome"}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "platform",
			Subsystem: serviceName,
			Name:      "trades_total",
			Help:      "Executed trade attempts",
		}, []string{"side", "result"}),
		WalletConflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "platform",
			Subsystem: serviceName,
			Name:      "wallet_version_conflicts_total",
			Help:      "Optimistic concurrency conflicts on wallet writes",
		}),
		AlertScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "platform",
			Subsystem: serviceName,
			Name:      "alert_scans_total",
			Help:      "Completed alert scan cycles",
		}),
		AlertsTriggeredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "platform",
			Subsystem: serviceName,
			Name:      "alerts_triggered_total",
			Help:      "Price alerts triggered",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ProviderCallsTotal,
		m.ProviderThrottledTotal,
		m.QuoteLookupsTotal,
		m.TradesTotal,
		m.WalletConflictsTotal,
		m.AlertScansTotal,
		m.AlertsTriggeredTotal,
	)

	return m
}

// Handler 返回 /metrics 的 gin 处理函数
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
