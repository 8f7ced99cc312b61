// Package anneal implements the search driver from spec.md section 4.6:
// simulated annealing with adaptive restart, followed by a final
// conflict-elimination pass that only accepts non-regressing candidates.
package anneal

import (
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/campusplan/timetable/internal/domain"
	"github.com/campusplan/timetable/internal/metrics"
	"github.com/campusplan/timetable/internal/mutate"
	"github.com/campusplan/timetable/internal/schedule"
)

// Params are the annealing schedule's tunable bounds, all overridable by
// the caller per spec.md section 6.
type Params struct {
	MaxIters    int
	MaxStagnant int
	T0          float64
	TMin        float64
	Cooling     float64
}

// DefaultParams returns the defaults named in spec.md section 4.6.
func DefaultParams() Params {
	return Params{
		MaxIters:    5000,
		MaxStagnant: 300,
		T0:          1.0,
		TMin:        1e-4,
		Cooling:     0.998,
	}
}

// Result is what the driver reports back to the public façade.
type Result struct {
	Best           *schedule.Schedule
	BestReport     metrics.Report
	IterationsRun  int
}

func classIndex(cfg *domain.Configuration) map[string]*domain.Class {
	idx := make(map[string]*domain.Class, len(cfg.Classes))
	for _, c := range cfg.Classes {
		idx[c.Name] = c
	}
	return idx
}

func mutateOne(current *schedule.Schedule, classes map[string]*domain.Class, rng *rand.Rand) *schedule.Schedule {
	if repaired := mutate.RepairConflict(current, classes, rng); repaired != nil {
		return repaired
	}
	return mutate.RandomSwap(current, rng)
}

// Run executes the annealing loop described in spec.md section 4.6 over
// initial, using rng for every random draw (mutation choice, acceptance),
// and returns the best schedule found plus the number of iterations that
// actually counted (guard-rejected candidates do not consume an
// iteration).
func Run(initial *schedule.Schedule, cfg *domain.Configuration, rng *rand.Rand, params Params, log *zap.Logger) Result {
	if log == nil {
		log = zap.NewNop()
	}
	classes := classIndex(cfg)

	current := initial
	currentReport := metrics.Evaluate(current)
	best := current
	bestReport := currentReport

	T := params.T0
	stagnant := 0
	iterations := 0

	log.Debug("annealing started", zap.Float64("initial_fitness", currentReport.Fitness))

	for iterations < params.MaxIters {
		candidate := mutateOne(current, classes, rng)
		candReport := metrics.Evaluate(candidate)

		if candReport.EmptySpace > 0 {
			// Invariant guard: a correct mutation never leaves a gap: skip
			// without consuming an iteration or touching the temperature.
			continue
		}
		iterations++

		delta := candReport.Fitness - currentReport.Fitness
		accept := false

		if delta < 0 {
			accept = true
			stagnant = 0
			if candReport.Fitness < bestReport.Fitness {
				best = candidate
				bestReport = candReport
			}
		} else {
			probability := math.Exp(-delta / T)
			if rng.Float64() < probability {
				accept = true
			}
			stagnant++
		}

		if accept {
			current = candidate
			currentReport = candReport
		}

		if bestReport.Fitness == 0 {
			log.Debug("annealing converged to zero fitness", zap.Int("iterations", iterations))
			break
		}

		if stagnant > params.MaxStagnant/2 && bestReport.Fitness > 0 {
			current = best.Clone()
			for k := 0; k < 10; k++ {
				current = mutateOne(current, classes, rng)
			}
			currentReport = metrics.Evaluate(current)
			T = math.Min(0.5, 2*T)
			stagnant = 0
			log.Debug("adaptive restart", zap.Int("iteration", iterations), zap.Float64("temperature", T))
		}

		if stagnant >= params.MaxStagnant {
			log.Debug("annealing stopped: stagnation limit reached", zap.Int("iterations", iterations))
			break
		}

		T *= params.Cooling
	}

	if bestReport.TeacherConflicts > 0 {
		best, bestReport = finalConflictElimination(best, bestReport, classes, rng, log)
	}

	best.Compact()

	return Result{Best: best, BestReport: bestReport, IterationsRun: iterations}
}

// finalConflictElimination is the pass described in spec.md section 4.6:
// up to 2000 further iterations accepting only candidates that do not
// regress conflicts and keep the empty-space safety check at zero,
// perturbing every 500 stalled iterations.
func finalConflictElimination(best *schedule.Schedule, bestReport metrics.Report, classes map[string]*domain.Class, rng *rand.Rand, log *zap.Logger) (*schedule.Schedule, metrics.Report) {
	const maxIters = 2000
	const stallPerturbEvery = 500

	current := best
	currentReport := bestReport
	sinceImprovement := 0

	for i := 0; i < maxIters; i++ {
		candidate := mutateOne(current, classes, rng)
		candReport := metrics.Evaluate(candidate)

		if candReport.EmptySpace > 0 || candReport.TeacherConflicts > currentReport.TeacherConflicts {
			sinceImprovement++
		} else {
			current = candidate
			currentReport = candReport
			if candReport.Fitness < bestReport.Fitness {
				best = candidate
				bestReport = candReport
				sinceImprovement = 0
			} else {
				sinceImprovement++
			}
		}

		if bestReport.TeacherConflicts == 0 {
			break
		}

		if sinceImprovement > 0 && sinceImprovement%stallPerturbEvery == 0 {
			for k := 0; k < 5; k++ {
				current = mutateOne(current, classes, rng)
			}
			currentReport = metrics.Evaluate(current)
			log.Debug("final pass perturbation", zap.Int("iteration", i))
		}
	}

	return best, bestReport
}
