package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stock_engine"

var (
	ReservationsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_created_total",
		Help:      "Reservations successfully created.",
	})
	ReservationsReleased = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_released_total",
		Help:      "Reservations removed from the table, by cause.",
	}, []string{"cause"}) // released | expired | consumed
	SalesCommitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_committed_total",
		Help:      "Permanent stock decrements committed.",
	})
	ReturnsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "returns_processed_total",
		Help:      "Stock increments from returns.",
	})
	OperationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_failures_total",
		Help:      "Engine operations that returned a structured failure.",
	}, []string{"operation", "code"})
)

func init() {
	prometheus.MustRegister(
		ReservationsCreated,
		ReservationsReleased,
		SalesCommitted,
		ReturnsProcessed,
		OperationFailures,
	)
}
