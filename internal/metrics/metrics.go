package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appointment",
			Name:      "validation_total",
			Help:      "Count of timeslot validations by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appointment",
			Name:      "http_requests_total",
			Help:      "Count of API requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appointment",
			Name:      "cache_lookups_total",
			Help:      "Count of working-hours cache lookups by result.",
		},
		[]string{"result"},
	)

	doctorsReloaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "appointment",
			Name:      "doctors_reloaded_total",
			Help:      "Count of successful doctor directory reloads.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(validations, httpRequests, cacheLookups, doctorsReloaded)
	})
}

func IncValidation(outcome string) {
	validations.WithLabelValues(outcome).Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

func IncDoctorsReloaded() {
	doctorsReloaded.Inc()
}
