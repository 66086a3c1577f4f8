package smcmetrics

import (
	"time"

	"github.com/bassosimone/errclass"
	"github.com/prometheus/client_golang/prometheus"
)

// -------------------------------------------------------------------------
// Prometheus Metric Constants
// -------------------------------------------------------------------------

const namespace = "smcecho"

// Label names for smcecho metrics.
const (
	labelOp     = "op"
	labelFamily = "family"
	labelResult = "result"
	labelErrno  = "errno"
)

// Values of the result label.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// syscallBuckets spans loopback syscalls (microseconds) up to a slow
// connect on a congested link.
var syscallBuckets = prometheus.ExponentialBuckets(0.00001, 4, 10)

// -------------------------------------------------------------------------
// Collector — Prometheus smcecho Metrics
// -------------------------------------------------------------------------

// Collector holds all smcecho Prometheus metrics.
type Collector struct {
	// Syscalls counts raw socket syscalls per operation, family and
	// outcome.
	Syscalls *prometheus.CounterVec

	// SyscallErrors counts failed syscalls labeled with the errno class
	// (e.g., ECONNREFUSED, EADDRINUSE).
	SyscallErrors *prometheus.CounterVec

	// SyscallDuration observes the wall time of each raw syscall.
	SyscallDuration *prometheus.HistogramVec

	// Sessions counts accepted echo sessions.
	Sessions *prometheus.CounterVec

	// EchoedBytes counts payload bytes echoed back to peers.
	EchoedBytes *prometheus.CounterVec
}

// NewCollector creates a Collector with all metrics registered against
// the provided prometheus.Registerer. If reg is nil,
// prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()

	reg.MustRegister(
		c.Syscalls,
		c.SyscallErrors,
		c.SyscallDuration,
		c.Sessions,
		c.EchoedBytes,
	)

	return c
}

// newMetrics creates all Prometheus metric vectors without registering them.
func newMetrics() *Collector {
	return &Collector{
		Syscalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syscalls_total",
			Help:      "Total raw socket syscalls issued.",
		}, []string{labelOp, labelFamily, labelResult}),

		SyscallErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syscall_errors_total",
			Help:      "Total failed raw socket syscalls by errno class.",
		}, []string{labelOp, labelFamily, labelErrno}),

		SyscallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "syscall_duration_seconds",
			Help:      "Duration of raw socket syscalls.",
			Buckets:   syscallBuckets,
		}, []string{labelOp, labelFamily}),

		Sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total accepted echo sessions.",
		}, []string{labelFamily}),

		EchoedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "echoed_bytes_total",
			Help:      "Total bytes echoed back to peers.",
		}, []string{labelFamily}),
	}
}

// -------------------------------------------------------------------------
// Syscalls
// -------------------------------------------------------------------------

// RecordSyscall counts one syscall and observes its duration. A non-nil
// err is additionally counted under its errno class.
func (c *Collector) RecordSyscall(op, family string, elapsed time.Duration, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
		c.SyscallErrors.WithLabelValues(op, family, errclass.New(err)).Inc()
	}

	c.Syscalls.WithLabelValues(op, family, result).Inc()
	c.SyscallDuration.WithLabelValues(op, family).Observe(elapsed.Seconds())
}

// -------------------------------------------------------------------------
// Sessions
// -------------------------------------------------------------------------

// IncSessions counts one accepted session.
func (c *Collector) IncSessions(family string) {
	c.Sessions.WithLabelValues(family).Inc()
}

// AddEchoedBytes adds n to the echoed bytes counter. Non-positive n is
// ignored.
func (c *Collector) AddEchoedBytes(family string, n int64) {
	if n <= 0 {
		return
	}
	c.EchoedBytes.WithLabelValues(family).Add(float64(n))
}
