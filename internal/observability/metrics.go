package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	CycleRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "coachrelay_cycle_runs_total", Help: "Poll cycle job outcomes"},
		[]string{"job", "result"},
	)
	GatewaySend = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "coachrelay_gateway_send_total", Help: "Gateway send outcomes"},
		[]string{"kind", "result"},
	)
	GatewayLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "coachrelay_gateway_send_latency_seconds", Help: "Gateway send latency"},
	)
	DispatchSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "coachrelay_dispatch_skipped_total", Help: "Schedules skipped or parked"},
		[]string{"reason"},
	)
	RenewalAlerts = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "coachrelay_renewal_alerts_total", Help: "Renewal alerts sent to the operator"},
	)
	AutomationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "coachrelay_automation_rule_runs_total", Help: "Feedback rule run outcomes"},
		[]string{"result"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(CycleRuns, GatewaySend, GatewayLatency, DispatchSkipped, RenewalAlerts, AutomationRuns)
}
