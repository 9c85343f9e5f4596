package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrderStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_updates_total",
		Help: "Total number of order status updates applied",
	}, []string{"status"})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of orders cancelled by their owner",
	})

	OrdersDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_deleted_total",
		Help: "Total number of orders deleted by an admin",
	})

	StockAdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Total number of stock ledger adjustments",
	}, []string{"op"})

	StockAdjustmentsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_adjustments_skipped_total",
		Help: "Total number of stock adjustments skipped because the product was missing",
	})

	DealsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deals_expired_total",
		Help: "Total number of deals expired by the reconciliation pass",
	})

	DealsActivatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deals_activated_total",
		Help: "Total number of deal sale windows applied by the reconciliation pass",
	})

	DealReconcileRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deal_reconcile_runs_total",
		Help: "Total number of deal reconciliation passes",
	})

	DealReconcileLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "deal_reconcile_latency_seconds",
		Help:    "Latency of deal reconciliation passes",
		Buckets: prometheus.DefBuckets,
	})

	NotificationsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Total number of notifications persisted",
	}, []string{"type"})

	PushSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_sent_total",
		Help: "Total number of push messages delivered",
	})

	PushFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_failed_total",
		Help: "Total number of push messages that failed to deliver",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
