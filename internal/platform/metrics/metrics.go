// Package metrics holds the Prometheus instruments for the dev backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the auth-flow instruments. Construction registers them on
// the given registry so tests can use isolated registries.
type Metrics struct {
	Logins          *prometheus.CounterVec
	Registrations   *prometheus.CounterVec
	GoogleExchanges *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "educonnect_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "educonnect_registrations_total",
			Help: "Completed registrations by role.",
		}, []string{"role"}),
		GoogleExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "educonnect_google_exchanges_total",
			Help: "OAuth code exchanges by outcome.",
		}, []string{"outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "educonnect_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	reg.MustRegister(m.Logins, m.Registrations, m.GoogleExchanges, m.RequestDuration)
	return m
}

func (m *Metrics) ObserveLogin(outcome string)     { m.Logins.WithLabelValues(outcome).Inc() }
func (m *Metrics) ObserveRegistration(role string) { m.Registrations.WithLabelValues(role).Inc() }
func (m *Metrics) ObserveGoogleExchange(outcome string) {
	m.GoogleExchanges.WithLabelValues(outcome).Inc()
}
