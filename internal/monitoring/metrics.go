package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP 请求指标
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csoportal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "csoportal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// 信函指标
var (
	LettersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "csoportal_letters_created_total",
			Help: "Total number of letters created",
		},
	)

	LettersMarkedRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "csoportal_letters_marked_read_total",
			Help: "Total number of letter read receipts recorded",
		},
	)

	// RecipientDecodeFailures 收件人列表无法解码的次数。
	// 每次命中都意味着数据库里有一条需要人工关注的脏数据。
	RecipientDecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "csoportal_recipient_decode_failures_total",
			Help: "Total number of recipient lists that could not be decoded",
		},
	)
)

// 业务指标
var (
	ApplicationsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "csoportal_applications_submitted_total",
			Help: "Total number of form applications submitted",
		},
	)

	MailsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "csoportal_mails_sent_total",
			Help: "Total number of notification mails sent",
		},
	)

	MailSendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "csoportal_mail_send_failures_total",
			Help: "Total number of notification mails that failed to send",
		},
	)

	LoginFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "csoportal_login_failures_total",
			Help: "Total number of failed login attempts",
		},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "csoportal_websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)
)

// RecordHTTPRequest 记录 HTTP 请求指标
func RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Handler 返回 Prometheus HTTP 处理器
func Handler() http.Handler {
	return promhttp.Handler()
}
