// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meal_admin_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meal_admin_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ordersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meal_admin_orders_placed_total",
		Help: "Meal order units created.",
	})

	portionsGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meal_admin_portions_granted_total",
		Help: "Order units that received the daily company portion.",
	})

	ordersPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meal_admin_orders_paid_total",
		Help: "Order units transitioned to paid.",
	})

	amountCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meal_admin_amount_collected_total",
		Help: "Sum of net amounts marked as paid.",
	})

	directorySyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meal_admin_directory_syncs_total",
		Help: "Employee directory sync runs by result.",
	}, []string{"result"})
)

func RecordHTTPRequest(method, route, status string, d time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordOrdersPlaced(units, portions int) {
	ordersPlaced.Add(float64(units))
	portionsGranted.Add(float64(portions))
}

func RecordPayment(count int, amount float64) {
	ordersPaid.Add(float64(count))
	amountCollected.Add(amount)
}

func RecordDirectorySync(ok bool) {
	if ok {
		directorySyncs.WithLabelValues("ok").Inc()
		return
	}
	directorySyncs.WithLabelValues("error").Inc()
}
