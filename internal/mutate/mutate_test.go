package mutate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusplan/timetable/internal/availability"
	"github.com/campusplan/timetable/internal/construct"
	"github.com/campusplan/timetable/internal/domain"
	"github.com/campusplan/timetable/internal/schedule"
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

func classIndex(cfg *domain.Configuration) map[string]*domain.Class {
	idx := make(map[string]*domain.Class, len(cfg.Classes))
	for _, c := range cfg.Classes {
		idx[c.Name] = c
	}
	return idx
}

func TestConflictCellsEmptyOnCleanSchedule(t *testing.T) {
	cfg := feasibleConfig(t)
	sched := construct.Initialize(cfg, rand.New(rand.NewSource(1)))
	assert.Empty(t, ConflictCells(sched))
}

func TestConflictCellsDetectsAvailabilityViolation(t *testing.T) {
	cfg := feasibleConfig(t)
	sched := construct.Initialize(cfg, rand.New(rand.NewSource(1)))

	grid := sched.Classes["1A"]
	lesson := grid.Cells[0][0]
	require.NotNil(t, lesson)
	lesson.Teacher.Availability.Set(0, 0, false)

	cells := ConflictCells(sched)
	require.NotEmpty(t, cells)
	assert.Equal(t, "1A", cells[0].class)
}

func TestRepairConflictReturnsNilWhenNoConflicts(t *testing.T) {
	cfg := feasibleConfig(t)
	sched := construct.Initialize(cfg, rand.New(rand.NewSource(1)))

	result := RepairConflict(sched, classIndex(cfg), rand.New(rand.NewSource(2)))
	assert.Nil(t, result)
}

func TestRepairConflictResolvesOrRebuildsAndStaysCompact(t *testing.T) {
	cfg := feasibleConfig(t)
	sched := construct.Initialize(cfg, rand.New(rand.NewSource(1)))

	grid := sched.Classes["1A"]
	grid.Cells[0][0].Teacher.Availability.Set(0, 0, false)

	candidate := RepairConflict(sched, classIndex(cfg), rand.New(rand.NewSource(9)))
	require.NotNil(t, candidate)
	assert.True(t, candidate.ValidateNoGaps())
}

func TestRandomSwapPreservesCompactionAndMultiset(t *testing.T) {
	cfg := feasibleConfig(t)
	sched := construct.Initialize(cfg, rand.New(rand.NewSource(5)))

	before := occupiedSubjects(sched.Classes["1A"])

	var candidate *schedule.Schedule
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 20; i++ {
		candidate = RandomSwap(sched, rng)
		sched = candidate
	}

	assert.True(t, candidate.ValidateNoGaps())
	after := occupiedSubjects(candidate.Classes["1A"])
	assert.ElementsMatch(t, before, after)
}

func occupiedSubjects(g *schedule.Grid) []string {
	var subjects []string
	for d := 0; d < g.Days; d++ {
		for p := 0; p < g.Periods; p++ {
			if g.Cells[d][p] != nil {
				subjects = append(subjects, g.Cells[d][p].Subject)
			}
		}
	}
	return subjects
}
