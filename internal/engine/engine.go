// Package engine is the public façade described in spec.md section 4.7:
// Generate(config, options) -> GenerationResult. It is a pure, synchronous
// function of its inputs — validation, construction, annealing, and
// compaction, with no shared state between calls.
package engine

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/campusplan/timetable/internal/anneal"
	"github.com/campusplan/timetable/internal/availability"
	"github.com/campusplan/timetable/internal/construct"
	"github.com/campusplan/timetable/internal/domain"
	"github.com/campusplan/timetable/internal/metrics"
	"github.com/campusplan/timetable/internal/schedule"
	"github.com/campusplan/timetable/pkg/xerrors"
)

// Config is the caller-facing request shape from spec.md section 6.
type Config struct {
	Days          int            `json:"days"`
	PeriodsPerDay int            `json:"periods_per_day"`
	Teachers      []TeacherInput `json:"teachers"`
	Classes       []ClassInput   `json:"classes"`
}

type TeacherInput struct {
	Name         string           `json:"name"`
	Availability availability.Wire `json:"availability"`
}

type LessonInput struct {
	Subject        string `json:"subject"`
	TeacherName    string `json:"teacher_name"`
	PeriodsPerWeek int    `json:"periods_per_week"`
}

type ClassInput struct {
	Name    string        `json:"name"`
	Lessons []LessonInput `json:"lessons"`
}

// Options carries the RNG seed and search bounds, all optional.
type Options struct {
	Seed        *uint64
	MaxIters    *int
	MaxStagnant *int
	T0          *float64
	TMin        *float64
	Cooling     *float64
	Logger      *zap.Logger
}

// LessonRef is the read-only view of a scheduled lesson returned in a
// GenerationResult — it carries no pointer into the engine's internal
// arena so callers cannot accidentally retain or mutate engine state.
type LessonRef struct {
	Subject     string `json:"subject"`
	TeacherName string `json:"teacher_name"`
}

// ScheduleView is class name -> D rows of P cells, nil where unoccupied.
type ScheduleView map[string][][]*LessonRef

// Metrics mirrors spec.md section 6's reported fields.
type Metrics struct {
	TeacherConflicts int     `json:"teacher_conflicts"`
	Unscheduled      int     `json:"unscheduled_periods"`
	Adjacency        float64 `json:"adjacency_penalty"`
	FreeFirstPeriods int     `json:"free_first_periods"`
	Fitness          float64 `json:"fitness"`
}

// Result is the GenerationResult returned to the caller.
type Result struct {
	Schedule      ScheduleView `json:"schedule"`
	Metrics       Metrics      `json:"metrics"`
	IterationsRun int          `json:"iterations_run"`
	SeedUsed      uint64       `json:"seed_used"`
}

// Generate validates cfg, seeds construction and search deterministically
// from options.Seed (or from the current time if unset — non-deterministic
// in that case, by design, since no seed was requested), and returns the
// best schedule found within the search budget.
//
// On success the returned Schedule always satisfies ValidateNoGaps; a
// non-nil *xerrors.GenerationError with Kind NoFeasibleSolution is
// returned alongside the best schedule found when the search budget was
// exhausted with teacher_conflicts > 0, so the caller may still inspect
// and display it.
func Generate(cfg Config, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	domainCfg, err := buildDomainConfig(cfg)
	if err != nil {
		return Result{}, err
	}

	seed := resolveSeed(opts.Seed)
	rng := rand.New(rand.NewSource(int64(seed)))

	log.Info("generation started",
		zap.Int("days", domainCfg.Days),
		zap.Int("periods_per_day", domainCfg.Periods),
		zap.Int("classes", len(domainCfg.Classes)),
		zap.Uint64("seed", seed),
	)

	initial := construct.Initialize(domainCfg, rng)

	params := anneal.DefaultParams()
	applyOverrides(&params, opts)

	searchResult := anneal.Run(initial, domainCfg, rng, params, log)

	if !searchResult.Best.ValidateNoGaps() {
		log.Error("invariant violation: search produced a schedule with gaps")
		return toResult(initial, metrics.Evaluate(initial), 0, seed),
			xerrors.New(xerrors.KindInvariantViolation, "mutation produced a gap that survived compaction")
	}

	result := toResult(searchResult.Best, searchResult.BestReport, searchResult.IterationsRun, seed)

	if searchResult.BestReport.TeacherConflicts > 0 {
		log.Warn("generation finished without a fully feasible schedule",
			zap.Int("teacher_conflicts", searchResult.BestReport.TeacherConflicts),
			zap.Int("iterations_run", searchResult.IterationsRun),
		)
		return result, xerrors.New(xerrors.KindNoFeasibleSolution, "search budget exhausted with unresolved teacher conflicts")
	}

	log.Info("generation finished",
		zap.Int("iterations_run", searchResult.IterationsRun),
		zap.Int("unscheduled", searchResult.BestReport.Unscheduled),
	)
	return result, nil
}

func resolveSeed(seed *uint64) uint64 {
	if seed != nil {
		return *seed
	}
	return uint64(time.Now().UnixNano())
}

func applyOverrides(params *anneal.Params, opts Options) {
	if opts.MaxIters != nil {
		params.MaxIters = *opts.MaxIters
	}
	if opts.MaxStagnant != nil {
		params.MaxStagnant = *opts.MaxStagnant
	}
	if opts.T0 != nil {
		params.T0 = *opts.T0
	}
	if opts.TMin != nil {
		params.TMin = *opts.TMin
	}
	if opts.Cooling != nil {
		params.Cooling = *opts.Cooling
	}
}

func buildDomainConfig(cfg Config) (*domain.Configuration, error) {
	teacherSpecs := make([]domain.TeacherSpec, 0, len(cfg.Teachers))
	for _, t := range cfg.Teachers {
		teacherSpecs = append(teacherSpecs, domain.TeacherSpec{Name: t.Name, Availability: t.Availability})
	}

	classSpecs := make([]domain.ClassSpec, 0, len(cfg.Classes))
	for _, c := range cfg.Classes {
		lessons := make([]domain.LessonSpec, 0, len(c.Lessons))
		for _, l := range c.Lessons {
			lessons = append(lessons, domain.LessonSpec{
				Subject:        l.Subject,
				TeacherName:    l.TeacherName,
				PeriodsPerWeek: l.PeriodsPerWeek,
			})
		}
		classSpecs = append(classSpecs, domain.ClassSpec{Name: c.Name, Lessons: lessons})
	}

	return domain.Build(cfg.Days, cfg.PeriodsPerDay, teacherSpecs, classSpecs)
}

func toResult(s *schedule.Schedule, report metrics.Report, iterations int, seed uint64) Result {
	view := make(ScheduleView, len(s.Order))
	for _, name := range s.Order {
		grid := s.Classes[name]
		rows := make([][]*LessonRef, grid.Days)
		for d := 0; d < grid.Days; d++ {
			row := make([]*LessonRef, grid.Periods)
			for p := 0; p < grid.Periods; p++ {
				if lesson := grid.Cells[d][p]; lesson != nil {
					row[p] = &LessonRef{Subject: lesson.Subject, TeacherName: lesson.Teacher.Name}
				}
			}
			rows[d] = row
		}
		view[name] = rows
	}

	return Result{
		Schedule: view,
		Metrics: Metrics{
			TeacherConflicts: report.TeacherConflicts,
			Unscheduled:      report.Unscheduled,
			Adjacency:        report.Adjacency,
			FreeFirstPeriods: report.FreeFirstPeriods,
			Fitness:          report.Fitness,
		},
		IterationsRun: iterations,
		SeedUsed:      seed,
	}
}
