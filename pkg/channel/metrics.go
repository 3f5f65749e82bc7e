package channel

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// metrics holds one channel's Prometheus collectors. Each Dual gets its own
// private registry rather than registering onto the global default one: two
// channels opened in the same process would otherwise collide on metric
// names, which prometheus.MustRegister panics on.
type metrics struct {
	registry        *prometheus.Registry
	bytesSent       prometheus.Counter
	bytesReceived   prometheus.Counter
	recordsSent     prometheus.Counter
	recordsReceived prometheus.Counter
	recordsDropped  prometheus.Counter
	connects        prometheus.Counter
	disconnects     prometheus.Counter
	activeReaders   prometheus.Gauge
}

func newMetrics(name string) *metrics {
	labels := prometheus.Labels{"channel": name}
	m := &metrics{
		registry: prometheus.NewRegistry(),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xshm_bytes_sent_total", Help: "Bytes written to the outbound ring.", ConstLabels: labels,
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xshm_bytes_received_total", Help: "Bytes read from the inbound ring.", ConstLabels: labels,
		}),
		recordsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xshm_records_sent_total", Help: "Records written to the outbound ring.", ConstLabels: labels,
		}),
		recordsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xshm_records_received_total", Help: "Records read from the inbound ring.", ConstLabels: labels,
		}),
		recordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xshm_records_dropped_total", Help: "Records overwritten before being read.", ConstLabels: labels,
		}),
		connects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xshm_connect_total", Help: "CONNECT events observed.", ConstLabels: labels,
		}),
		disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xshm_disconnect_total", Help: "DISCONNECT events observed.", ConstLabels: labels,
		}),
		activeReaders: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "xshm_active_readers", Help: "Current active_readers on the inbound ring.", ConstLabels: labels,
		}),
	}
	m.registry.MustRegister(
		m.bytesSent, m.bytesReceived,
		m.recordsSent, m.recordsReceived, m.recordsDropped,
		m.connects, m.disconnects, m.activeReaders,
	)
	return m
}

// Gather dumps the current metric families, for the debug-dump feature and
// for callers that want to federate into their own registry.
func (m *metrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}
