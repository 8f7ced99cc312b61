package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusplan/timetable/internal/availability"
	"github.com/campusplan/timetable/pkg/xerrors"
)

func fullWeekWire(days, periods int) availability.Wire {
	words := make([]uint32, days)
	mask := uint32(1)<<uint(periods) - 1
	for d := range words {
		words[d] = mask
	}
	return availability.Wire{Days: days, Periods: periods, Words: words}
}

func emptyWire(days, periods int) availability.Wire {
	return availability.Wire{Days: days, Periods: periods, Words: make([]uint32, days)}
}

func TestBuildRejectsOutOfRangeDimensions(t *testing.T) {
	_, err := Build(0, 5, nil, nil)
	var genErr *xerrors.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, xerrors.KindOutOfRangeDimension, genErr.Kind)
}

func TestBuildRejectsEmptyClasses(t *testing.T) {
	teachers := []TeacherSpec{{Name: "Alice", Availability: fullWeekWire(5, 6)}}
	_, err := Build(5, 6, teachers, nil)
	assert.ErrorIs(t, err, xerrors.New(xerrors.KindEmptyInput, ""))
}

func TestBuildRejectsUnknownTeacher(t *testing.T) {
	teachers := []TeacherSpec{{Name: "Alice", Availability: fullWeekWire(5, 6)}}
	classes := []ClassSpec{{
		Name: "1A",
		Lessons: []LessonSpec{{Subject: "Math", TeacherName: "Bob", PeriodsPerWeek: 2}},
	}}
	_, err := Build(5, 6, teachers, classes)
	assert.ErrorIs(t, err, xerrors.New(xerrors.KindUnknownTeacher, ""))
}

func TestBuildRejectsInfeasibleByConstruction(t *testing.T) {
	teachers := []TeacherSpec{{Name: "Alice", Availability: emptyWire(5, 6)}}
	classes := []ClassSpec{{
		Name: "1A",
		Lessons: []LessonSpec{{Subject: "Math", TeacherName: "Alice", PeriodsPerWeek: 2}},
	}}
	_, err := Build(5, 6, teachers, classes)
	assert.ErrorIs(t, err, xerrors.New(xerrors.KindInfeasibleByConstruction, ""))
}

func TestBuildRejectsCapacityExceeded(t *testing.T) {
	teachers := []TeacherSpec{{Name: "Alice", Availability: fullWeekWire(5, 6)}}
	classes := []ClassSpec{{
		Name: "1A",
		Lessons: []LessonSpec{{Subject: "Math", TeacherName: "Alice", PeriodsPerWeek: 31}},
	}}
	_, err := Build(5, 6, teachers, classes)
	assert.ErrorIs(t, err, xerrors.New(xerrors.KindCapacityExceeded, ""))
}

func TestBuildSuccess(t *testing.T) {
	teachers := []TeacherSpec{
		{Name: "Alice", Availability: fullWeekWire(5, 6)},
		{Name: "Bob", Availability: fullWeekWire(5, 6)},
	}
	classes := []ClassSpec{{
		Name: "1A",
		Lessons: []LessonSpec{
			{Subject: "Math", TeacherName: "Alice", PeriodsPerWeek: 4},
			{Subject: "Art", TeacherName: "Bob", PeriodsPerWeek: 2},
		},
	}}

	cfg, err := Build(5, 6, teachers, classes)
	require.NoError(t, err)
	require.Len(t, cfg.Classes, 1)
	assert.Equal(t, 6, cfg.Classes[0].TotalPeriods())
	assert.Same(t, cfg.TeacherByName("Alice"), cfg.Classes[0].Lessons[0].Teacher)
	assert.Nil(t, cfg.TeacherByName("Carol"))
}
