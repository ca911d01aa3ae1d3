// Package metrics 店铺 Prometheus 指标。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result 标签取值
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultExists  = "exists"
)

// Metrics 店铺指标集合，nil 接收者上的方法均为空操作
type Metrics struct {
	gatherer        prometheus.Gatherer
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ordersPlaced    prometheus.Counter
	orderFailures   prometheus.Counter
	orderLines      prometheus.Counter
	registrations   *prometheus.CounterVec
	logins          *prometheus.CounterVec
}

// New 在给定 registry 上注册指标，reg 为 nil 时返回 nil
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders placed successfully.",
		}),
		orderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_failed_total",
			Help: "Orders whose ledger write failed.",
		}),
		orderLines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_lines_written_total",
			Help: "Order ledger lines written.",
		}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Registration attempts by result.",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.requests, m.requestDuration, m.ordersPlaced, m.orderFailures, m.orderLines, m.registrations, m.logins)
	return m
}

// NewDefault 使用带 Go/进程采集器的独立 registry
func NewDefault() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(reg)
}

// Handler /metrics 输出
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest 记录一次 HTTP 请求
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// OrderPlaced 记录成功下单与写入的台账行数
func (m *Metrics) OrderPlaced(lines int) {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
	m.orderLines.Add(float64(lines))
}

// OrderFailed 记录下单失败
func (m *Metrics) OrderFailed() {
	if m == nil {
		return
	}
	m.orderFailures.Inc()
}

// Registration 记录注册结果
func (m *Metrics) Registration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

// Login 记录登录结果
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}
