package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "The total number of HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route and method",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "The total number of committed orders",
	})

	TicketsBooked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickets_booked_total",
		Help: "The total number of committed tickets",
	})

	BookingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_failures_total",
		Help: "Rejected or failed order attempts by reason",
	}, []string{"reason"})
)

// Booking failure reasons.
const (
	ReasonValidation = "validation"
	ReasonConflict   = "conflict"
	ReasonNotFound   = "not_found"
	ReasonInternal   = "internal"
)
