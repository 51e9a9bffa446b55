// Package prometheus provides the concrete Prometheus instrumentation for
// pkg/channel, mirroring the teacher's pkg/metrics/prometheus adapters
// (one small struct of promauto-registered collectors per subsystem).
package prometheus

import (
	"github.com/jrdwe/floodfile/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ChannelMetrics instruments one Channel's frame traffic. A nil
// *ChannelMetrics is valid and every method on it is a no-op, so callers
// can unconditionally pass the result of NewChannelMetrics without a
// metrics.IsEnabled() check at every call site.
type ChannelMetrics struct {
	framesSent        *prometheus.CounterVec
	framesReceived    *prometheus.CounterVec
	framesDropped     *prometheus.CounterVec
	reassemblyBuckets *prometheus.GaugeVec
}

// NewChannelMetrics builds the collectors for interfaceName, or returns
// nil if metrics.Init was never called.
func NewChannelMetrics(interfaceName string) *ChannelMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()

	return &ChannelMetrics{
		framesSent: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "floodfile_frames_sent_total",
				Help: "Total number of ARP carrier frames successfully written to the wire",
			},
			[]string{"interface", "opcode"},
		),
		framesReceived: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "floodfile_frames_received_total",
				Help: "Total number of ARP carrier frames that completed reassembly",
			},
			[]string{"interface", "opcode"},
		),
		framesDropped: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "floodfile_frames_dropped_total",
				Help: "Total number of frames discarded: malformed, not ours, or queue full",
			},
			[]string{"interface", "reason"},
		),
		reassemblyBuckets: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "floodfile_reassembly_buckets_active",
				Help: "Number of logical payloads currently mid-reassembly",
			},
			[]string{"interface"},
		),
	}
}

func (m *ChannelMetrics) FrameSent(interfaceName string, opcode string) {
	if m == nil {
		return
	}
	m.framesSent.WithLabelValues(interfaceName, opcode).Inc()
}

func (m *ChannelMetrics) FrameReceived(interfaceName string, opcode string) {
	if m == nil {
		return
	}
	m.framesReceived.WithLabelValues(interfaceName, opcode).Inc()
}

func (m *ChannelMetrics) FrameDropped(interfaceName string, reason string) {
	if m == nil {
		return
	}
	m.framesDropped.WithLabelValues(interfaceName, reason).Inc()
}

func (m *ChannelMetrics) SetReassemblyBuckets(interfaceName string, count int) {
	if m == nil {
		return
	}
	m.reassemblyBuckets.WithLabelValues(interfaceName).Set(float64(count))
}
