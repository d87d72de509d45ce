package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "rentroll_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	invoiceCreateTotal   *prometheus.CounterVec
	invoiceCreateLatency *prometheus.HistogramVec
	invoiceUpdateTotal   *prometheus.CounterVec
	invoiceUpdateLatency *prometheus.HistogramVec

	readingRejections prometheus.Counter
	readingFallbacks  prometheus.Counter

	reportGenerateTotal   *prometheus.CounterVec
	reportGenerateLatency *prometheus.HistogramVec
	exportTotal           *prometheus.CounterVec
	exportLatency         *prometheus.HistogramVec

	assistantTotal   *prometheus.CounterVec
	assistantLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		invoiceCreateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_create_total",
				Help: "Total invoice create operations by result",
			},
			[]string{"result"},
		)
		invoiceCreateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "invoice_create_latency_seconds",
				Help:    "Invoice create latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		invoiceUpdateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_update_total",
				Help: "Total invoice update operations by result",
			},
			[]string{"result"},
		)
		invoiceUpdateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "invoice_update_latency_seconds",
				Help:    "Invoice update latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		readingRejections = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "meter_reading_rejections_total",
				Help: "Total rejected electricity readings (current below previous)",
			},
		)
		readingFallbacks = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "meter_reading_fallbacks_total",
				Help: "Total unverified previous-reading fallbacks during edits",
			},
		)

		reportGenerateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_generate_total",
				Help: "Total report generate operations by type and result",
			},
			[]string{"type", "result"},
		)
		reportGenerateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_generate_latency_seconds",
				Help:    "Report generate latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type", "result"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total export operations by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		assistantTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "assistant_requests_total",
				Help: "Total assistant gateway requests by result",
			},
			[]string{"result"},
		)
		assistantLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "assistant_latency_seconds",
				Help:    "Assistant gateway latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			invoiceCreateTotal,
			invoiceCreateLatency,
			invoiceUpdateTotal,
			invoiceUpdateLatency,
			readingRejections,
			readingFallbacks,
			reportGenerateTotal,
			reportGenerateLatency,
			exportTotal,
			exportLatency,
			assistantTotal,
			assistantLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveInvoiceCreate records create latency and result.
func ObserveInvoiceCreate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if invoiceCreateTotal != nil {
		invoiceCreateTotal.WithLabelValues(result).Inc()
	}
	if invoiceCreateLatency != nil {
		invoiceCreateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveInvoiceUpdate records update latency and result.
func ObserveInvoiceUpdate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if invoiceUpdateTotal != nil {
		invoiceUpdateTotal.WithLabelValues(result).Inc()
	}
	if invoiceUpdateLatency != nil {
		invoiceUpdateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncReadingRejected increments the rejected reading counter.
func IncReadingRejected() {
	if readingRejections != nil {
		readingRejections.Inc()
	}
}

// IncReadingFallback increments the unverified fallback counter.
func IncReadingFallback() {
	if readingFallbacks != nil {
		readingFallbacks.Inc()
	}
}

// ObserveReportGenerate records report latency and result.
func ObserveReportGenerate(reportType, result string, duration time.Duration) {
	if reportType == "" {
		reportType = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportGenerateTotal != nil {
		reportGenerateTotal.WithLabelValues(reportType, result).Inc()
	}
	if reportGenerateLatency != nil {
		reportGenerateLatency.WithLabelValues(reportType, result).Observe(duration.Seconds())
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveAssistant records assistant request latency and result.
func ObserveAssistant(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if assistantTotal != nil {
		assistantTotal.WithLabelValues(result).Inc()
	}
	if assistantLatency != nil {
		assistantLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
