package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"safetx/logx"
)

// SubmissionRejectedReason labels the rejected-submission counter.
type SubmissionRejectedReason string

var (
	RejectedMalformedInput SubmissionRejectedReason = "malformed_input"
	RejectedUnprocessable  SubmissionRejectedReason = "unprocessable_wallet"
	RejectedDigestMismatch SubmissionRejectedReason = "digest_mismatch"
	RejectedNotApproved    SubmissionRejectedReason = "not_approved"
	RejectedInconsistent   SubmissionRejectedReason = "inconsistent_transaction"
	RejectedRateLimited    SubmissionRejectedReason = "rate_limited"
	RejectedUnknown        SubmissionRejectedReason = "other"
)

type servicePromMetrics struct {
	serviceUpUnixSeconds  prometheus.Gauge
	submissionCount       prometheus.Counter
	rejectedCount         *prometheus.CounterVec
	confirmationsStored   prometheus.Counter
	transactionsCreated   prometheus.Counter
	duplicateSubmissions  prometheus.Counter
	oracleFailureCount    prometheus.Counter
	requestDurationSecond prometheus.Histogram
	panicCount            prometheus.Counter
}

func newServicePromMetrics() *servicePromMetrics {
	return &servicePromMetrics{
		serviceUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "safetx_up_timestamp_unix_seconds",
				Help: "Unix timestamp the service started at",
			},
		),
		submissionCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "safetx_submissions_total",
				Help: "Confirmation submissions received",
			},
		),
		rejectedCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "safetx_submissions_rejected_total",
				Help: "Confirmation submissions rejected, by reason",
			},
			[]string{"reason"},
		),
		confirmationsStored: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "safetx_confirmations_stored_total",
				Help: "Confirmations persisted",
			},
		),
		transactionsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "safetx_transactions_created_total",
				Help: "Transactions created by a first confirmation",
			},
		),
		duplicateSubmissions: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "safetx_duplicate_submissions_total",
				Help: "Idempotent resubmissions of an already stored confirmation",
			},
		),
		oracleFailureCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "safetx_oracle_failures_total",
				Help: "Oracle calls that failed with an infrastructure error",
			},
		),
		requestDurationSecond: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "safetx_request_duration_seconds",
				Help:    "HTTP request handling latency",
				Buckets: prometheus.DefBuckets,
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "safetx_panics_total",
				Help: "Recovered panics",
			},
		),
	}
}

var metrics = newServicePromMetrics()

func MarkServiceUp() {
	metrics.serviceUpUnixSeconds.Set(float64(time.Now().Unix()))
}

func IncreaseSubmissionCount() {
	metrics.submissionCount.Inc()
}

func IncreaseRejectedCount(reason SubmissionRejectedReason) {
	metrics.rejectedCount.WithLabelValues(string(reason)).Inc()
}

func IncreaseConfirmationsStored() {
	metrics.confirmationsStored.Inc()
}

func IncreaseTransactionsCreated() {
	metrics.transactionsCreated.Inc()
}

func IncreaseDuplicateSubmissions() {
	metrics.duplicateSubmissions.Inc()
}

func IncreaseOracleFailureCount() {
	metrics.oracleFailureCount.Inc()
}

func ObserveRequestDuration(d time.Duration) {
	metrics.requestDurationSecond.Observe(d.Seconds())
}

func IncreasePanicCount() {
	metrics.panicCount.Inc()
}

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve runs a standalone metrics listener when the main API listener should
// not carry scrape traffic.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	logx.Info("MONITORING", "metrics listening on ", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logx.Error("MONITORING", "metrics listener stopped: ", err)
	}
}
