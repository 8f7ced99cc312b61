// Package config loads the typed settings for cmd/generate and cmd/server
// from defaults, a .env file, environment variables (prefixed
// TIMETABLE_), and CLI flags, in that precedence order — the same
// viper/pflag/godotenv layering used by sibling school-management
// services, trimmed to what this engine's binaries actually need.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the root settings object shared by both binaries.
type Config struct {
	Env string

	Log       LogConfig
	Scheduler SchedulerConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig carries the annealing defaults from spec.md section 4.6.
// cmd/generate passes them to the engine (with --seed and --max-iters taking
// precedence); cmd/server does not read them and runs every request with
// the engine's own defaults and the request's seed.
type SchedulerConfig struct {
	Seed        int64
	HasSeed     bool
	MaxIters    int
	MaxStagnant int
	T0          float64
	TMin        float64
	Cooling     float64
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Load builds a Config from (in increasing precedence) built-in defaults,
// a ".env" file if present, TIMETABLE_-prefixed environment variables, and
// flags already registered on fs.
func Load(fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load() // a missing .env file is not an error

	v := viper.New()
	v.SetEnvPrefix("TIMETABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Env: v.GetString("env"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Scheduler: SchedulerConfig{
			MaxIters:    v.GetInt("scheduler.max_iters"),
			MaxStagnant: v.GetInt("scheduler.max_stagnant"),
			T0:          v.GetFloat64("scheduler.t0"),
			TMin:        v.GetFloat64("scheduler.t_min"),
			Cooling:     v.GetFloat64("scheduler.cooling"),
		},
		Server: ServerConfig{
			Port: v.GetInt("server.port"),
		},
		Database: DatabaseConfig{
			DSN: v.GetString("database.dsn"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
	}

	if v.IsSet("scheduler.seed") {
		cfg.Scheduler.Seed = v.GetInt64("scheduler.seed")
		cfg.Scheduler.HasSeed = true
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("scheduler.max_iters", 5000)
	v.SetDefault("scheduler.max_stagnant", 300)
	v.SetDefault("scheduler.t0", 1.0)
	v.SetDefault("scheduler.t_min", 1e-4)
	v.SetDefault("scheduler.cooling", 0.998)
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.dsn", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)
}
