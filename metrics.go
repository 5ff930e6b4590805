package ros2client

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// nodeMetrics bundles the prometheus collectors a Node and its
// Spinner report through. Each is a vector labeled per call site with
// the node, action, service, or topic name it reports on.
type nodeMetrics struct {
	broadcastDropped  *prometheus.CounterVec
	activeGoals       *prometheus.GaugeVec
	inflightRequests  *prometheus.GaugeVec
	samplesPublished  *prometheus.CounterVec
	samplesTaken      *prometheus.CounterVec
}

var (
	metricsMu         sync.Mutex
	metricsByRegistry = make(map[prometheus.Registerer]*nodeMetrics)
)

// newNodeMetrics registers the collectors on reg the first time it is
// called for reg; later Contexts sharing reg reuse the same collectors.
func newNodeMetrics(reg prometheus.Registerer) *nodeMetrics {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if m, ok := metricsByRegistry[reg]; ok {
		return m
	}
	factory := promauto.With(reg)
	m := &nodeMetrics{
		broadcastDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ros2client_spinner_broadcast_dropped_total",
			Help: "Status events dropped because a listener's channel was full.",
		}, []string{"node"}),
		activeGoals: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ros2client_action_server_active_goals",
			Help: "Goals currently tracked by an action server, by status.",
		}, []string{"action", "status"}),
		inflightRequests: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ros2client_service_client_inflight_requests",
			Help: "Service requests sent but not yet answered.",
		}, []string{"service"}),
		samplesPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ros2client_publisher_samples_total",
			Help: "Samples published, by topic.",
		}, []string{"topic"}),
		samplesTaken: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ros2client_subscription_samples_total",
			Help: "Samples taken by a subscription, by topic.",
		}, []string{"topic"}),
	}
	metricsByRegistry[reg] = m
	return m
}
