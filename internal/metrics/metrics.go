// Package metrics exposes the small set of block-level counters/gauges
// the engine emits, ambient observability carried the way the teacher's
// module graph carries its own prometheus-based metrics stack (see
// SPEC_FULL.md §11) even though spec.md §1 places the wider trace/metrics
// harness out of scope.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups the engine's prometheus metrics. A nil *Collectors is
// safe to call methods on, as is one from NewNoop.
type Collectors struct {
	reportsAccumulated prometheus.Counter
	batchesRun         prometheus.Counter
	gasUsed            prometheus.Counter
	transfersDispatched prometheus.Counter
}

// NewCollectors registers and returns a fresh set of collectors on reg.
// Pass prometheus.NewRegistry() in tests to avoid colliding with the
// global default registry across test runs.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		reportsAccumulated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accumulate_reports_accumulated_total",
			Help: "Work reports accumulated across all blocks processed by this engine instance.",
		}),
		batchesRun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accumulate_batches_total",
			Help: "Gas-bounded batches run by the outer accumulation loop.",
		}),
		gasUsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accumulate_gas_used_total",
			Help: "Gas consumed across all service invocations.",
		}),
		transfersDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accumulate_transfers_dispatched_total",
			Help: "Deferred transfers dispatched to destination services.",
		}),
	}
	reg.MustRegister(c.reportsAccumulated, c.batchesRun, c.gasUsed, c.transfersDispatched)
	return c
}

// NewNoop returns a Collectors backed by an isolated registry, for callers
// that want the metrics calls to be safe no-ops without wiring a real
// registry (e.g. in tests or single-shot CLI-less library use).
func NewNoop() *Collectors {
	return NewCollectors(prometheus.NewRegistry())
}

func (c *Collectors) AddReportsAccumulated(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.reportsAccumulated.Add(float64(n))
}

func (c *Collectors) IncBatchesRun() {
	if c == nil {
		return
	}
	c.batchesRun.Inc()
}

func (c *Collectors) AddGasUsed(gas uint64) {
	if c == nil || gas == 0 {
		return
	}
	c.gasUsed.Add(float64(gas))
}

func (c *Collectors) AddTransfersDispatched(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.transfersDispatched.Add(float64(n))
}
