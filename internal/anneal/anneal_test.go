package anneal

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusplan/timetable/internal/availability"
	"github.com/campusplan/timetable/internal/construct"
	"github.com/campusplan/timetable/internal/domain"
	"github.com/campusplan/timetable/internal/metrics"
)

func feasibleConfig(t *testing.T) *domain.Configuration {
	t.Helper()
	fullWeek := availability.Wire{Days: 5, Periods: 4, Words: []uint32{0xF, 0xF, 0xF, 0xF, 0xF}}
	teachers := []domain.TeacherSpec{
		{Name: "Alice", Availability: fullWeek},
		{Name: "Bob", Availability: fullWeek},
	}
	classes := []domain.ClassSpec{{
		Name: "1A",
		Lessons: []domain.LessonSpec{
			{Subject: "Math", TeacherName: "Alice", PeriodsPerWeek: 4},
			{Subject: "Art", TeacherName: "Bob", PeriodsPerWeek: 3},
		},
	}}
	cfg, err := domain.Build(5, 4, teachers, classes)
	require.NoError(t, err)
	return cfg
}

func TestRunNeverReturnsAScheduleWithGaps(t *testing.T) {
	cfg := feasibleConfig(t)
	rng := rand.New(rand.NewSource(123))
	initial := construct.Initialize(cfg, rng)

	params := Params{MaxIters: 200, MaxStagnant: 50, T0: 1.0, TMin: 1e-4, Cooling: 0.99}
	result := Run(initial, cfg, rng, params, zap.NewNop())

	assert.True(t, result.Best.ValidateNoGaps())
}

func TestRunBestFitnessNeverWorseThanInitial(t *testing.T) {
	cfg := feasibleConfig(t)
	rng := rand.New(rand.NewSource(123))
	initial := construct.Initialize(cfg, rng)
	initialReport := metrics.Evaluate(initial)

	params := Params{MaxIters: 300, MaxStagnant: 50, T0: 1.0, TMin: 1e-4, Cooling: 0.99}
	result := Run(initial, cfg, rng, params, zap.NewNop())

	assert.LessOrEqual(t, result.BestReport.Fitness, initialReport.Fitness)
}

func TestRunStopsEarlyOnZeroFitness(t *testing.T) {
	cfg := feasibleConfig(t)
	rng := rand.New(rand.NewSource(1))
	initial := construct.Initialize(cfg, rng)

	params := DefaultParams()
	result := Run(initial, cfg, rng, params, zap.NewNop())

	if result.BestReport.Fitness == 0 {
		assert.Less(t, result.IterationsRun, params.MaxIters)
	}
}

func TestDefaultParamsMatchSpec(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 5000, p.MaxIters)
	assert.Equal(t, 300, p.MaxStagnant)
	assert.Equal(t, 1.0, p.T0)
	assert.Equal(t, 1e-4, p.TMin)
	assert.Equal(t, 0.998, p.Cooling)
}
