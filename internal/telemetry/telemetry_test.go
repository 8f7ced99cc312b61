package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusplan/timetable/internal/availability"
	"github.com/campusplan/timetable/internal/engine"
)

func fullWeek(days, periods int) availability.Wire {
	mask := uint32(1)<<uint(periods) - 1
	words := make([]uint32, days)
	for i := range words {
		words[i] = mask
	}
	return availability.Wire{Days: days, Periods: periods, Words: words}
}

func feasibleRequest() engine.Config {
	return engine.Config{
		Days:          5,
		PeriodsPerDay: 4,
		Teachers: []engine.TeacherInput{
			{Name: "Alice", Availability: fullWeek(5, 4)},
		},
		Classes: []engine.ClassInput{{
			Name:    "1A",
			Lessons: []engine.LessonInput{{Subject: "Math", TeacherName: "Alice", PeriodsPerWeek: 4}},
		}},
	}
}

func TestGenerateRecordsOkOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	seed := uint64(1)
	_, err := collector.Generate(feasibleRequest(), engine.Options{Seed: &seed})
	require.NoError(t, err)

	count := testutil.ToFloat64(collector.generations.WithLabelValues("ok"))
	assert.Equal(t, float64(1), count)
}

func TestGenerateRecordsErrorOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	cfg := feasibleRequest()
	cfg.Days = 0 // forces a config-validation error before search begins

	_, err := collector.Generate(cfg, engine.Options{})
	require.Error(t, err)

	count := testutil.ToFloat64(collector.generations.WithLabelValues("no_feasible_solution"))
	assert.Equal(t, float64(1), count)
}
