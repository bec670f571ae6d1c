package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spirit_orders_created_total",
		Help: "Total number of committed orders",
	}, []string{"source"})

	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spirit_order_status_transitions_total",
		Help: "Total number of applied order status transitions",
	}, []string{"to"})

	OrderTransitionsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spirit_order_status_transitions_rejected_total",
		Help: "Total number of rejected order status transitions",
	})

	OperatorNotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spirit_operator_notifications_failed_total",
		Help: "Total number of operator notifications that could not be delivered",
	})

	TelegramUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spirit_telegram_updates_total",
		Help: "Total number of handled telegram updates",
	}, []string{"kind"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spirit_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spirit_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
