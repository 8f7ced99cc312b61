package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 5000, cfg.Scheduler.MaxIters)
	assert.Equal(t, 300, cfg.Scheduler.MaxStagnant)
	assert.Equal(t, 1.0, cfg.Scheduler.T0)
	assert.Equal(t, 0.998, cfg.Scheduler.Cooling)
	assert.False(t, cfg.Scheduler.HasSeed)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvironmentVariableOverridesDefault(t *testing.T) {
	t.Setenv("TIMETABLE_SCHEDULER_MAX_ITERS", "777")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 777, cfg.Scheduler.MaxIters)
}

func TestLoadSeedIsOnlySetWhenProvided(t *testing.T) {
	t.Setenv("TIMETABLE_SCHEDULER_SEED", "42")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.True(t, cfg.Scheduler.HasSeed)
	assert.Equal(t, int64(42), cfg.Scheduler.Seed)
}

func TestLoadFlagOverridesEnvironmentVariable(t *testing.T) {
	t.Setenv("TIMETABLE_SERVER_PORT", "9000")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("server.port", 0, "")
	require.NoError(t, fs.Set("server.port", "9100"))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
}

