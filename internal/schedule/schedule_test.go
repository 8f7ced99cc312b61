package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusplan/timetable/internal/availability"
	"github.com/campusplan/timetable/internal/domain"
)

func testConfig(t *testing.T) *domain.Configuration {
	t.Helper()
	fullWeek := availability.Wire{Days: 5, Periods: 4, Words: []uint32{0xF, 0xF, 0xF, 0xF, 0xF}}
	teachers := []domain.TeacherSpec{{Name: "Alice", Availability: fullWeek}}
	classes := []domain.ClassSpec{{
		Name: "1A",
		Lessons: []domain.LessonSpec{
			{Subject: "Math", TeacherName: "Alice", PeriodsPerWeek: 3},
		},
	}}
	cfg, err := domain.Build(5, 4, teachers, classes)
	require.NoError(t, err)
	return cfg
}

func TestNewScheduleIsEmpty(t *testing.T) {
	cfg := testConfig(t)
	s := New(cfg)

	require.Contains(t, s.Order, "1A")
	grid := s.Classes["1A"]
	assert.Equal(t, 0, grid.OccupiedCount())
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := testConfig(t)
	s := New(cfg)
	lesson := cfg.Classes[0].Lessons[0]
	s.Classes["1A"].Cells[0][0] = lesson

	clone := s.Clone()
	clone.Classes["1A"].Cells[0][1] = lesson

	assert.Nil(t, s.Classes["1A"].Cells[0][1])
	assert.NotNil(t, clone.Classes["1A"].Cells[0][0])
}

func TestCompactRemovesGapsAndPreservesMultiset(t *testing.T) {
	cfg := testConfig(t)
	s := New(cfg)
	lesson := cfg.Classes[0].Lessons[0]

	grid := s.Classes["1A"]
	grid.Cells[0][3] = lesson
	grid.Cells[0][1] = lesson

	s.Compact()

	assert.Same(t, lesson, grid.Cells[0][0])
	assert.Same(t, lesson, grid.Cells[0][1])
	assert.Nil(t, grid.Cells[0][2])
	assert.Nil(t, grid.Cells[0][3])
	assert.True(t, s.ValidateNoGaps())
}

func TestCompactIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	s := New(cfg)
	lesson := cfg.Classes[0].Lessons[0]
	s.Classes["1A"].Cells[1][2] = lesson

	s.Compact()
	first := append([]*domain.Lesson(nil), s.Classes["1A"].Cells[1]...)
	s.Compact()
	second := s.Classes["1A"].Cells[1]

	assert.Equal(t, first, second)
}

func TestValidateNoGapsDetectsGap(t *testing.T) {
	cfg := testConfig(t)
	s := New(cfg)
	lesson := cfg.Classes[0].Lessons[0]
	s.Classes["1A"].Cells[2][3] = lesson // occupied cell preceded by empty ones

	assert.False(t, s.ValidateNoGaps())
}

func TestRowBounds(t *testing.T) {
	cfg := testConfig(t)
	s := New(cfg)
	grid := s.Classes["1A"]

	first, last := RowBounds(grid, 0)
	assert.Equal(t, -1, first)
	assert.Equal(t, -1, last)

	lesson := cfg.Classes[0].Lessons[0]
	grid.Cells[0][1] = lesson
	grid.Cells[0][2] = lesson

	first, last = RowBounds(grid, 0)
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, last)
}
