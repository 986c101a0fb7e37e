package monitoring

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/uiloop/dispatch"
	"github.com/dshills/uiloop/loop"
)

const namespace = "uiloop"

var (
	_ prometheus.Collector = (*LoopCollector)(nil)
	_ prometheus.Collector = (*DispatchCollector)(nil)
)

// LoopCollector exports per-loop counters on scrape. Loop names must
// be unique within one collector or the scrape reports duplicates.
type LoopCollector struct {
	mu    sync.RWMutex
	loops []*loop.Loop

	submitted *prometheus.Desc
	executed  *prometheus.Desc
	panics    *prometheus.Desc
	drained   *prometheus.Desc
	queueLen  *prometheus.Desc
	running   *prometheus.Desc
}

// NewLoopCollector creates a collector over the given loops. More can
// be added later with Add.
func NewLoopCollector(loops ...*loop.Loop) *LoopCollector {
	return &LoopCollector{
		loops: loops,
		submitted: prometheus.NewDesc(
			namespace+"_loop_submitted_total",
			"Tasks accepted by the loop, by priority.",
			[]string{"loop", "priority"}, nil,
		),
		executed: prometheus.NewDesc(
			namespace+"_loop_executed_total",
			"Tasks run by the loop, drained ones included.",
			[]string{"loop"}, nil,
		),
		panics: prometheus.NewDesc(
			namespace+"_loop_panics_total",
			"Task panics recovered by the loop.",
			[]string{"loop"}, nil,
		),
		drained: prometheus.NewDesc(
			namespace+"_loop_drained_total",
			"Tasks run during the shutdown drain.",
			[]string{"loop"}, nil,
		),
		queueLen: prometheus.NewDesc(
			namespace+"_loop_queue_len",
			"Tasks waiting in the loop queue.",
			[]string{"loop"}, nil,
		),
		running: prometheus.NewDesc(
			namespace+"_loop_running",
			"Whether a Run is servicing the queue (1=running).",
			[]string{"loop"}, nil,
		),
	}
}

// Add registers another loop with the collector. Safe during scrapes.
func (c *LoopCollector) Add(l *loop.Loop) {
	if l == nil {
		return
	}
	c.mu.Lock()
	c.loops = append(c.loops, l)
	c.mu.Unlock()
}

// Describe implements prometheus.Collector.
func (c *LoopCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.submitted
	ch <- c.executed
	ch <- c.panics
	ch <- c.drained
	ch <- c.queueLen
	ch <- c.running
}

// Collect implements prometheus.Collector.
func (c *LoopCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	loops := make([]*loop.Loop, len(c.loops))
	copy(loops, c.loops)
	c.mu.RUnlock()

	for _, l := range loops {
		st := l.Stats()
		name := l.Name()

		ch <- prometheus.MustNewConstMetric(c.submitted, prometheus.CounterValue,
			float64(st.SubmittedLow), name, loop.Low.String())
		ch <- prometheus.MustNewConstMetric(c.submitted, prometheus.CounterValue,
			float64(st.SubmittedNormal), name, loop.Normal.String())
		ch <- prometheus.MustNewConstMetric(c.submitted, prometheus.CounterValue,
			float64(st.SubmittedHigh), name, loop.High.String())
		ch <- prometheus.MustNewConstMetric(c.executed, prometheus.CounterValue,
			float64(st.Executed), name)
		ch <- prometheus.MustNewConstMetric(c.panics, prometheus.CounterValue,
			float64(st.Panics), name)
		ch <- prometheus.MustNewConstMetric(c.drained, prometheus.CounterValue,
			float64(st.Drained), name)
		ch <- prometheus.MustNewConstMetric(c.queueLen, prometheus.GaugeValue,
			float64(st.QueueLen), name)

		var running float64
		if l.Running() {
			running = 1
		}
		ch <- prometheus.MustNewConstMetric(c.running, prometheus.GaugeValue, running, name)
	}
}

// DispatchCollector exports the package-wide dispatch counters.
type DispatchCollector struct {
	fastPath     *prometheus.Desc
	fastFailures *prometheus.Desc
	submitted    *prometheus.Desc
	panics       *prometheus.Desc
}

// NewDispatchCollector creates a collector over dispatch.GetStats.
func NewDispatchCollector() *DispatchCollector {
	return &DispatchCollector{
		fastPath: prometheus.NewDesc(
			namespace+"_dispatch_fast_path_total",
			"Work invocations that ran inline on the target.",
			nil, nil,
		),
		fastFailures: prometheus.NewDesc(
			namespace+"_dispatch_fast_failures_total",
			"Inline invocations that resolved with a failure.",
			nil, nil,
		),
		submitted: prometheus.NewDesc(
			namespace+"_dispatch_submitted_total",
			"Work closures submitted to a target.",
			nil, nil,
		),
		panics: prometheus.NewDesc(
			namespace+"_dispatch_panics_total",
			"Panics captured from work functions.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *DispatchCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.fastPath
	ch <- c.fastFailures
	ch <- c.submitted
	ch <- c.panics
}

// Collect implements prometheus.Collector.
func (c *DispatchCollector) Collect(ch chan<- prometheus.Metric) {
	st := dispatch.GetStats()
	ch <- prometheus.MustNewConstMetric(c.fastPath, prometheus.CounterValue, float64(st.FastPath))
	ch <- prometheus.MustNewConstMetric(c.fastFailures, prometheus.CounterValue, float64(st.FastFailures))
	ch <- prometheus.MustNewConstMetric(c.submitted, prometheus.CounterValue, float64(st.Submitted))
	ch <- prometheus.MustNewConstMetric(c.panics, prometheus.CounterValue, float64(st.Panics))
}
