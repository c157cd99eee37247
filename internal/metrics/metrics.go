package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repairshop_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repairshop_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SalesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repairshop_sales_total",
			Help: "Completed sales by kind.",
		},
		[]string{"kind"},
	)

	SalesAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "repairshop_sales_amount_total",
			Help: "Sum of sale totals.",
		},
	)

	TicketEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repairshop_ticket_events_total",
			Help: "Repair ticket lifecycle events.",
		},
		[]string{"event"},
	)

	DebtsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "repairshop_debts_opened_total",
			Help: "Debts created for unpaid balances.",
		},
	)

	TillMovements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repairshop_till_movements_total",
			Help: "Till movements by kind.",
		},
		[]string{"kind"},
	)

	LowStockProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "repairshop_low_stock_products",
			Help: "Active products at or under their low-stock threshold at last check.",
		},
	)

	AdminLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repairshop_admin_logins_total",
			Help: "Admin unlock attempts by result.",
		},
		[]string{"result"},
	)
)
