// Package metrics declares the backend's custom Prometheus collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	LoginSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coursehub_logins_success_total",
		Help: "Total number of successful logins.",
	})
	LoginFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coursehub_logins_failure_total",
		Help: "Total number of failed logins.",
	})
	SessionsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coursehub_sessions_created_total",
		Help: "Total number of device sessions created.",
	})
	SessionsRevokedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coursehub_sessions_revoked_total",
		Help: "Total number of device sessions revoked (logout, logout-all and eviction).",
	})
	SessionEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coursehub_session_evictions_total",
		Help: "Total number of sessions revoked by the device-limit policy.",
	})
	DeviceLimitHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coursehub_device_limit_hits_total",
		Help: "Total number of logins that triggered device-limit eviction.",
	})
	ActiveSessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "coursehub_active_sessions",
		Help: "Current number of active device sessions (process-local view).",
	})
)

// Register attaches the custom collectors to reg. Called once at startup;
// the collectors are usable before registration, which keeps unit tests free
// of registry setup.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		LoginSuccessTotal,
		LoginFailureTotal,
		SessionsCreatedTotal,
		SessionsRevokedTotal,
		SessionEvictionsTotal,
		DeviceLimitHitsTotal,
		ActiveSessionsGauge,
	)
}
