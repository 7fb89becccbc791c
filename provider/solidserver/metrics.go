package solidserver

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all prometheus metrics recorded by the backend.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec
	ErrorsTotal   prometheus.Counter
	RequestTime   prometheus.Histogram
}

// Init initializes the metrics
func (m *Metrics) Init() error {
	// -- RequestsTotal ----------------------------------------------------------
	m.RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "solidserver",
			Name:      "api_requests_total",
			Help:      "Number of api requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	err := prometheus.Register(m.RequestsTotal)
	if err != nil {
		return fmt.Errorf("couldn't register RequestsTotal counterVec, see: %v", err)
	}

	// -- ErrorsTotal ------------------------------------------------------------
	m.ErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "solidserver",
			Name:      "api_errors_total",
			Help:      "Total number of failed api requests.",
		})

	err = prometheus.Register(m.ErrorsTotal)
	if err != nil {
		return fmt.Errorf("couldn't register ErrorsTotal counter, see: %v", err)
	}

	// -- RequestTime --------------------------------------------------------
	m.RequestTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Subsystem: "solidserver",
		Name:      "api_request_time",
		Help:      "Time an api request takes in ms.",
		Buckets:   prometheus.ExponentialBuckets(20, 2, 10),
	})

	err = prometheus.Register(m.RequestTime)
	if err != nil {
		return fmt.Errorf("couldn't register RequestTime histogram, see: %v", err)
	}

	return nil
}
