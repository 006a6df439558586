package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics interface {
	Registry() *prometheus.Registry
}

const namespace = "workforce"

// Client API 客户端指标
type Client struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	decisions *prometheus.CounterVec
}

// NewClient 在 reg 上注册客户端指标
func NewClient(reg prometheus.Registerer) *Client {
	return &Client{
		requests: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by method and response status.",
		}, []string{"method", "status"})),
		duration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"})),
		decisions: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "auth_decisions_total",
			Help:      "Central reactions to authorization failures.",
		}, []string{"action"})),
	}
}

// ObserveRequest status 为 0 表示没有拿到响应
func (m *Client) ObserveRequest(method string, status int, d time.Duration) {
	label := "network"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, label).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Client) ObserveDecision(action string) {
	m.decisions.WithLabelValues(action).Inc()
}

// Session 会话指标
type Session struct {
	authenticated prometheus.Gauge
	transitions   *prometheus.CounterVec
}

// NewSession 在 reg 上注册会话指标
func NewSession(reg prometheus.Registerer) *Session {
	return &Session{
		authenticated: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "authenticated",
			Help:      "1 while a session is active.",
		})),
		transitions: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session state changes by reason.",
		}, []string{"reason"})),
	}
}

// Transition 记录一次状态变化
func (m *Session) Transition(reason string, authenticated bool) {
	m.transitions.WithLabelValues(reason).Inc()
	if authenticated {
		m.authenticated.Set(1)
	} else {
		m.authenticated.Set(0)
	}
}
