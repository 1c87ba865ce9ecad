package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tradelink_go/internal/domain"
)

// Metrics exports monitor state to Prometheus.
//
//	tradelink_gateway_container_running     1 while the gateway answers probes
//	tradelink_gateway_connectivity_online   1 while a chain reports progress
//	tradelink_gateway_probes_total{result}  probe outcomes (ok|fail)
//	tradelink_gateway_config_keys           size of the cached key list
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ContainerRunning   prometheus.Gauge
	ConnectivityOnline prometheus.Gauge
	Probes             *prometheus.CounterVec
	ConfigKeys         prometheus.Gauge
}

// NewMetrics registers the monitor metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ContainerRunning: f.NewGauge(prometheus.GaugeOpts{
			Name: "tradelink_gateway_container_running",
			Help: "1 when the gateway process answers health probes",
		}),
		ConnectivityOnline: f.NewGauge(prometheus.GaugeOpts{
			Name: "tradelink_gateway_connectivity_online",
			Help: "1 when at least one gateway chain reports a positive block height",
		}),
		Probes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tradelink_gateway_probes_total",
			Help: "Gateway health probes by result",
		}, []string{"result"}),
		ConfigKeys: f.NewGauge(prometheus.GaugeOpts{
			Name: "tradelink_gateway_config_keys",
			Help: "Number of cached gateway configuration keys",
		}),
	}
}

func (m *Metrics) observeState(s domain.GatewayState) {
	if m == nil {
		return
	}
	m.ContainerRunning.Set(boolGauge(s.Container() == domain.ContainerRunning))
	m.ConnectivityOnline.Set(boolGauge(s.Connectivity() == domain.ConnectivityOnline))
}

func (m *Metrics) observeProbe(ok bool) {
	if m == nil {
		return
	}
	result := "fail"
	if ok {
		result = "ok"
	}
	m.Probes.WithLabelValues(result).Inc()
}

func (m *Metrics) observeConfigKeys(n int) {
	if m == nil {
		return
	}
	m.ConfigKeys.Set(float64(n))
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
