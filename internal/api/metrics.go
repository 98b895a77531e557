package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the per-endpoint request counters.
type metrics struct {
	requests       prometheus.Counter
	healthcheck    prometheus.Counter
	main           prometheus.Counter
	frequencies    prometheus.Counter
	studentsCreate prometheus.Counter
	studentsUpdate prometheus.Counter
	rateLimited    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		requests:       f.NewCounter(prometheus.CounterOpts{Name: "server_requests_total", Help: "Total number of requests to this webserver"}),
		healthcheck:    f.NewCounter(prometheus.CounterOpts{Name: "healthcheck_requests_total", Help: "Total number of requests to healthcheck"}),
		main:           f.NewCounter(prometheus.CounterOpts{Name: "main_requests_total", Help: "Total number of requests to main endpoint"}),
		frequencies:    f.NewCounter(prometheus.CounterOpts{Name: "frequencies_requests_total", Help: "Total number of requests to the frequency analyzer"}),
		studentsCreate: f.NewCounter(prometheus.CounterOpts{Name: "students_create_total", Help: "Total number of requests to the endpoint to create a student"}),
		studentsUpdate: f.NewCounter(prometheus.CounterOpts{Name: "students_update_total", Help: "Total number of requests to the endpoint to update a student"}),
		rateLimited:    f.NewCounter(prometheus.CounterOpts{Name: "rate_limited_requests_total", Help: "Total number of requests rejected by the rate limiter"}),
	}
}
