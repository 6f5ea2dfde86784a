package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	commandsTotal      *prometheus.CounterVec
	commandConfidence  *prometheus.HistogramVec
	confirmationsTotal *prometheus.CounterVec
	tradesTotal        *prometheus.CounterVec
	errorsTotal        *prometheus.CounterVec
	lastPrice          *prometheus.GaugeVec
	latency            *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		commandsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whalewhisperer_voice_commands_total",
				Help: "Total voice commands interpreted, by intent",
			},
			[]string{"intent"},
		),
		commandConfidence: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "whalewhisperer_command_confidence",
				Help:    "Confidence scores of interpreted commands",
				Buckets: []float64{0.1, 0.25, 0.5, 0.65, 0.7, 0.8, 0.9, 0.95, 1},
			},
			[]string{"intent"},
		),
		confirmationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whalewhisperer_confirmations_total",
				Help: "Confirmation dialogue outcomes",
			},
			[]string{"outcome"},
		),
		tradesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whalewhisperer_trades_executed_total",
				Help: "Total simulated trades executed",
			},
			[]string{"action", "symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whalewhisperer_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "whalewhisperer_last_price",
				Help: "Last simulated price for a token",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "whalewhisperer_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCommand records one interpreted command and its confidence.
func (r *Recorder) RecordCommand(intent string, confidence float64) {
	r.commandsTotal.WithLabelValues(intent).Inc()
	r.commandConfidence.WithLabelValues(intent).Observe(confidence)
}

// RecordConfirmation records a confirmation dialogue outcome.
func (r *Recorder) RecordConfirmation(outcome string) {
	r.confirmationsTotal.WithLabelValues(outcome).Inc()
}

// RecordTradeExecuted records a completed simulated trade.
func (r *Recorder) RecordTradeExecuted(action, symbol string) {
	r.tradesTotal.WithLabelValues(action, symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last simulated price for a token.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
