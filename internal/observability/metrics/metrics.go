package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                         sync.Once
	metricsRouter                *chi.Mux
	opDurationHistogram          *prometheus.HistogramVec
	httpRequestDurationHistogram *prometheus.HistogramVec
	pollerDurationHistogram      *prometheus.HistogramVec
	snapshotDurationHistogram    *prometheus.HistogramVec
	queueSendErrorCounter        prometheus.Counter
	journalAppendErrorCounter    prometheus.Counter
	ledgerSeqGauge               prometheus.Gauge
	currentSeasonGauge           prometheus.Gauge
	activeListingsGauge          prometheus.Gauge
	dbLatency                    *prometheus.HistogramVec
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	// ledger operations run in memory, the journal append dominates the tail
	opDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_op_duration_seconds",
			Help:    "Histogram of ledger operation durations in seconds, split by record kind.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		},
		[]string{"kind", "status"},
	)

	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of incoming http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "path", "status"},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	snapshotDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapshot_duration_seconds",
			Help:    "Histogram of ledger snapshot serialization and persistence durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"status"},
	)

	// add a counter for the number of errors from the fail to push message into queue
	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending messages to the queue",
		},
	)

	journalAppendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_append_error_count",
			Help: "The total number of journal appends that failed after exhausting retries",
		},
	)

	ledgerSeqGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_seq",
			Help: "Sequence number of the last committed ledger record",
		},
	)

	currentSeasonGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_current_season",
			Help: "Number of the current season",
		},
	)

	activeListingsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_active_listings",
			Help: "Number of open marketplace listings",
		},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)

	prometheus.MustRegister(
		opDurationHistogram,
		httpRequestDurationHistogram,
		pollerDurationHistogram,
		snapshotDurationHistogram,
		queueSendErrorCounter,
		journalAppendErrorCounter,
		ledgerSeqGauge,
		currentSeasonGauge,
		activeListingsGauge,
		dbLatency,
	)
}

func RecordOpDuration(d time.Duration, kind string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	opDurationHistogram.WithLabelValues(kind, status.String()).Observe(d.Seconds())
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	dbLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

func RecordSnapshotDuration(d time.Duration, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	snapshotDurationHistogram.WithLabelValues(status.String()).Observe(d.Seconds())
}

func RecordLedgerSeq(seq uint64) {
	ledgerSeqGauge.Set(float64(seq))
}

func RecordCurrentSeason(season uint32) {
	currentSeasonGauge.Set(float64(season))
}

func RecordActiveListings(count int) {
	activeListingsGauge.Set(float64(count))
}

// StartHttpRequestDurationTimer starts a timer to measure incoming http request
// duration. The matched route pattern is only known once routing finished, so
// the returned observer takes it together with the status code.
func StartHttpRequestDurationTimer(method string) func(path string, statusCode int) {
	startTime := time.Now()
	return func(path string, statusCode int) {
		duration := time.Since(startTime).Seconds()
		httpRequestDurationHistogram.WithLabelValues(
			method,
			path,
			fmt.Sprintf("%d", statusCode),
		).Observe(duration)
	}
}

func RecordQueueSendError() {
	queueSendErrorCounter.Inc()
}

func RecordJournalAppendError() {
	journalAppendErrorCounter.Inc()
}
