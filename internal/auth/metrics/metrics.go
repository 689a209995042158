// Package metrics holds the Prometheus collectors for the auth service.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "auth"

// Metrics is the set of service counters. A nil *Metrics is valid and
// records nothing, so components can be built without a registry.
type Metrics struct {
	LoginAttempts    *prometheus.CounterVec // result
	RefreshExchanges *prometheus.CounterVec // outcome
	Rotations        prometheus.Counter
	RotationLosses   prometheus.Counter
	Rejections       *prometheus.CounterVec // kind
	RateLimited      *prometheus.CounterVec // path
}

// New creates the collectors and registers them with r. A nil r means
// prometheus.DefaultRegisterer. Collectors registered earlier under the same
// names are reused.
func New(r prometheus.Registerer) *Metrics {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "login_attempts_total",
			Help: "Password logins by result.",
		}, []string{"result"}),
		RefreshExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "refresh_exchanges_total",
			Help: "Refresh token exchanges by outcome.",
		}, []string{"outcome"}),
		Rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "refresh_rotations_total",
			Help: "Refresh records replaced because they were close to expiry.",
		}),
		RotationLosses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "refresh_rotation_conflicts_total",
			Help: "Rotations that lost the compare-and-swap to a concurrent rotation.",
		}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rejections_total",
			Help: "Error responses by error code.",
		}, []string{"kind"}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rate_limited_total",
			Help: "Requests rejected by a rate limiter, by path.",
		}, []string{"path"}),
	}

	m.LoginAttempts = register(r, m.LoginAttempts)
	m.RefreshExchanges = register(r, m.RefreshExchanges)
	m.Rotations = register(r, m.Rotations)
	m.RotationLosses = register(r, m.RotationLosses)
	m.Rejections = register(r, m.Rejections)
	m.RateLimited = register(r, m.RateLimited)
	return m
}

func register[C prometheus.Collector](r prometheus.Registerer, c C) C {
	if err := r.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) Refresh(outcome string) {
	if m == nil {
		return
	}
	m.RefreshExchanges.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Rotated() {
	if m == nil {
		return
	}
	m.Rotations.Inc()
}

func (m *Metrics) RotationLost() {
	if m == nil {
		return
	}
	m.RotationLosses.Inc()
}

func (m *Metrics) Rejected(kind string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(kind).Inc()
}

func (m *Metrics) Limited(path string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(path).Inc()
}
