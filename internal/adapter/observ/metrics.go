package observ

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_scans_total",
			Help: "RFID scans by result",
		},
		[]string{"result"},
	)

	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_checkouts_total",
			Help: "Checkout attempts by terminal outcome",
		},
		[]string{"outcome"},
	)
)

func ScanResult(result string) {
	scansTotal.WithLabelValues(result).Inc()
}

func CheckoutOutcome(outcome string) {
	checkoutsTotal.WithLabelValues(outcome).Inc()
}
