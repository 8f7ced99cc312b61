package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusplan/timetable/internal/availability"
	"github.com/campusplan/timetable/internal/engine"
)

func sampleConfig() engine.Config {
	return engine.Config{
		Days:          5,
		PeriodsPerDay: 4,
		Teachers: []engine.TeacherInput{
			{Name: "Alice", Availability: availability.Wire{Days: 5, Periods: 4, Words: []uint32{0xF, 0xF, 0xF, 0xF, 0xF}}},
		},
		Classes: []engine.ClassInput{{
			Name:    "1A",
			Lessons: []engine.LessonInput{{Subject: "Math", TeacherName: "Alice", PeriodsPerWeek: 4}},
		}},
	}
}

func TestKeyIsStableForTheSameInput(t *testing.T) {
	cfg := sampleConfig()
	k1, err := Key(cfg, 7)
	require.NoError(t, err)
	k2, err := Key(cfg, 7)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestKeyDiffersBySeed(t *testing.T) {
	cfg := sampleConfig()
	k1, err := Key(cfg, 1)
	require.NoError(t, err)
	k2, err := Key(cfg, 2)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestKeyDiffersByConfig(t *testing.T) {
	cfg1 := sampleConfig()
	cfg2 := sampleConfig()
	cfg2.Classes[0].Lessons[0].PeriodsPerWeek = 3

	k1, err := Key(cfg1, 1)
	require.NoError(t, err)
	k2, err := Key(cfg2, 1)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestKeyHasExpectedPrefix(t *testing.T) {
	k, err := Key(sampleConfig(), 1)
	require.NoError(t, err)
	assert.Contains(t, k, "timetable:result:")
}
