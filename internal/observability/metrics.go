package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "multishell",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests served by the status endpoint.",
		},
		[]string{"instance", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "multishell",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"instance", "method", "path", "status"},
	)
	poolExhausted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "multishell",
			Subsystem: "pool",
			Name:      "exhausted_total",
			Help:      "Checkout requests refused because every slot of the pool was in use.",
		},
		[]string{"pool"},
	)
	poolFree = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "multishell",
			Subsystem: "pool",
			Name:      "free_slots",
			Help:      "Free slots per pool at the last status snapshot.",
		},
		[]string{"pool"},
	)
	tasksCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "multishell",
			Subsystem: "dispatch",
			Name:      "tasks_completed_total",
			Help:      "Output tasks fully written to a stream.",
		},
		[]string{"kind"},
	)
	dispatchDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "multishell",
			Subsystem: "dispatch",
			Name:      "dropped_total",
			Help:      "Dispatch calls that failed and dropped their output.",
		},
		[]string{"kind"},
	)
	streamBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "multishell",
			Subsystem: "stream",
			Name:      "bytes_written_total",
			Help:      "Bytes handed to stream backends.",
		},
		[]string{"stream"},
	)
	commandsHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "multishell",
			Subsystem: "shell",
			Name:      "commands_total",
			Help:      "Commands routed to handlers, by protocol and result.",
		},
		[]string{"shell", "protocol", "result"},
	)
	inputErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "multishell",
			Subsystem: "shell",
			Name:      "input_errors_total",
			Help:      "Input lines rejected by the line parser.",
		},
		[]string{"shell", "kind"},
	)
)

// counterCache resolves label values to a counter once, so the engine's
// per-tick recorders do not build label slices on every call.
type counterCache struct {
	mu  sync.Mutex
	vec *prometheus.CounterVec
	n   int
	m   map[[3]string]prometheus.Counter
}

func newCounterCache(vec *prometheus.CounterVec, labels int) *counterCache {
	return &counterCache{vec: vec, n: labels, m: make(map[[3]string]prometheus.Counter)}
}

func (c *counterCache) get(a, b, d string) prometheus.Counter {
	key := [3]string{a, b, d}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctr, ok := c.m[key]; ok {
		return ctr
	}
	values := make([]string, c.n)
	copy(values, key[:c.n])
	ctr := c.vec.WithLabelValues(values...)
	c.m[key] = ctr
	return ctr
}

var (
	poolExhaustedBy   = newCounterCache(poolExhausted, 1)
	tasksCompletedBy  = newCounterCache(tasksCompleted, 1)
	dispatchDroppedBy = newCounterCache(dispatchDropped, 1)
	streamBytesBy     = newCounterCache(streamBytes, 1)
	commandsHandledBy = newCounterCache(commandsHandled, 3)
	inputErrorsBy     = newCounterCache(inputErrors, 2)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			poolExhausted, poolFree,
			tasksCompleted, dispatchDropped,
			streamBytes, commandsHandled, inputErrors,
		)
	})
}

func RecordHTTPRequest(instance, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(instance, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(instance, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordPoolExhausted(pool string) {
	RegisterMetrics()
	poolExhaustedBy.get(pool, "", "").Inc()
}

func RecordPoolFree(pool string, free int) {
	RegisterMetrics()
	poolFree.WithLabelValues(pool).Set(float64(free))
}

func RecordTaskCompleted(kind string) {
	RegisterMetrics()
	tasksCompletedBy.get(kind, "", "").Inc()
}

func RecordDispatchDropped(kind string) {
	RegisterMetrics()
	dispatchDroppedBy.get(kind, "", "").Inc()
}

func RecordStreamBytes(stream string, n int) {
	RegisterMetrics()
	streamBytesBy.get(stream, "", "").Add(float64(n))
}

func RecordCommand(shell, protocol, result string) {
	RegisterMetrics()
	commandsHandledBy.get(shell, protocol, result).Inc()
}

func RecordInputError(shell, kind string) {
	RegisterMetrics()
	inputErrorsBy.get(shell, kind, "").Inc()
}
