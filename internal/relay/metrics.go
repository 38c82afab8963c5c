package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Message results, used as the "result" label.
const (
	resultUploaded     = "uploaded"
	resultUploadFailed = "upload_failed"
	resultDecodeError  = "decode_error"
	resultIOError      = "io_error"
)

// Metrics holds the relay's Prometheus collectors.
type Metrics struct {
	activeConnections prometheus.Gauge
	messages          *prometheus.CounterVec
	uploadDuration    prometheus.Histogram
	uploadedBytes     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		activeConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "wsupload",
			Name:      "active_connections",
			Help:      "Number of open upload sockets.",
		}),
		messages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wsupload",
			Name:      "messages_total",
			Help:      "Messages processed, by result.",
		}, []string{"result"}),
		uploadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wsupload",
			Name:      "upload_duration_seconds",
			Help:      "Time spent in the storage upload call.",
			Buckets:   prometheus.DefBuckets,
		}),
		uploadedBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "wsupload",
			Name:      "uploaded_bytes_total",
			Help:      "Bytes successfully uploaded.",
		}),
	}
}

func (m *Metrics) observe(err *Error) {
	switch {
	case err == nil:
		m.messages.WithLabelValues(resultUploaded).Inc()
	case err.Kind == KindUpload:
		m.messages.WithLabelValues(resultUploadFailed).Inc()
	case err.Kind == KindDecode:
		m.messages.WithLabelValues(resultDecodeError).Inc()
	default:
		m.messages.WithLabelValues(resultIOError).Inc()
	}
}
