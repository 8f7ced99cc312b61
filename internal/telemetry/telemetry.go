// Package telemetry instruments engine.Generate with Prometheus counters
// and histograms so cmd/server can expose /metrics to an operator — the
// engine itself stays dependency-free of any metrics client, per its
// pure-function contract (spec.md section 5).
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/campusplan/timetable/internal/engine"
)

// Collector bundles the metrics one running process exposes.
type Collector struct {
	generations      *prometheus.CounterVec
	iterationsRun    prometheus.Histogram
	finalFitness     prometheus.Histogram
	finalConflicts   prometheus.Histogram
	generationLatency prometheus.Histogram
}

// NewCollector registers its metrics on reg and returns the Collector.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_generations_total",
			Help: "Total number of Generate() calls, labelled by outcome.",
		}, []string{"outcome"}),
		iterationsRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timetable_iterations_run",
			Help:    "Number of annealing iterations actually run per Generate() call.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 12),
		}),
		finalFitness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timetable_final_fitness",
			Help:    "Fitness score of the best schedule returned per Generate() call.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		}),
		finalConflicts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timetable_final_conflicts",
			Help:    "Teacher conflicts remaining in the best schedule per Generate() call.",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		}),
		generationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timetable_generation_seconds",
			Help:    "Wall-clock time spent inside Generate().",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(c.generations, c.iterationsRun, c.finalFitness, c.finalConflicts, c.generationLatency)
	return c
}

// Observe records the outcome of one Generate() call.
func (c *Collector) Observe(result engine.Result, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "no_feasible_solution"
	}
	c.generations.WithLabelValues(outcome).Inc()
	c.iterationsRun.Observe(float64(result.IterationsRun))
	c.finalConflicts.Observe(float64(result.Metrics.TeacherConflicts))
	c.finalFitness.Observe(result.Metrics.Fitness)
	c.generationLatency.Observe(duration.Seconds())
}

// Generate wraps engine.Generate, observing its outcome on c.
func (c *Collector) Generate(cfg engine.Config, opts engine.Options) (engine.Result, error) {
	start := time.Now()
	result, err := engine.Generate(cfg, opts)
	c.Observe(result, time.Since(start), err)
	return result, err
}
