// Command generate loads a JSON timetable configuration, runs the engine
// once, and writes the resulting GenerationResult to stdout or a file. The
// step-by-step narration (load, validate, search, report) follows
// cmd/api's phased main() in the teacher repo, replacing its fmt.Println
// steps with structured zap logging.
package main

import (
	"encoding/json"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/campusplan/timetable/internal/engine"
	"github.com/campusplan/timetable/internal/telemetry"
	"github.com/campusplan/timetable/pkg/config"
	"github.com/campusplan/timetable/pkg/logger"
)

func main() {
	fs := pflag.NewFlagSet("timetable-generate", pflag.ExitOnError)
	inputPath := fs.String("input", "", "path to a JSON configuration file (required)")
	outputPath := fs.String("output", "", "path to write the JSON result (default: stdout)")
	seed := fs.Int64("seed", -1, "deterministic RNG seed (default: time-based)")
	maxIters := fs.Int("max-iters", 0, "override the annealing iteration budget")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer log.Sync() //nolint:errcheck

	if *inputPath == "" {
		log.Fatal("missing required --input flag")
	}

	log.Info("loading configuration", zap.String("path", *inputPath))
	raw, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatal("failed to read input file", zap.Error(err))
	}

	var engineCfg engine.Config
	if err := json.Unmarshal(raw, &engineCfg); err != nil {
		log.Fatal("failed to parse input file as JSON", zap.Error(err))
	}

	opts := engine.Options{Logger: log}
	if *seed >= 0 {
		s := uint64(*seed)
		opts.Seed = &s
	} else if cfg.Scheduler.HasSeed {
		s := uint64(cfg.Scheduler.Seed)
		opts.Seed = &s
	}
	if *maxIters > 0 {
		opts.MaxIters = maxIters
	} else {
		opts.MaxIters = &cfg.Scheduler.MaxIters
	}
	opts.MaxStagnant = &cfg.Scheduler.MaxStagnant
	opts.T0 = &cfg.Scheduler.T0
	opts.TMin = &cfg.Scheduler.TMin
	opts.Cooling = &cfg.Scheduler.Cooling

	reg := prometheus.NewRegistry()
	collector := telemetry.NewCollector(reg)

	log.Info("generation starting", zap.Int("days", engineCfg.Days), zap.Int("periods_per_day", engineCfg.PeriodsPerDay))
	result, genErr := collector.Generate(engineCfg, opts)
	if genErr != nil {
		log.Warn("generation finished with an error", zap.Error(genErr),
			zap.Int("teacher_conflicts", result.Metrics.TeacherConflicts),
			zap.Int("unscheduled_periods", result.Metrics.Unscheduled))
	} else {
		log.Info("generation finished",
			zap.Float64("fitness", result.Metrics.Fitness),
			zap.Int("iterations_run", result.IterationsRun))
	}

	out, marshalErr := json.MarshalIndent(result, "", "  ")
	if marshalErr != nil {
		log.Fatal("failed to marshal result", zap.Error(marshalErr))
	}

	if *outputPath == "" {
		os.Stdout.Write(out)
		os.Stdout.Write([]byte("\n"))
	} else {
		if err := os.WriteFile(*outputPath, out, 0o644); err != nil {
			log.Fatal("failed to write output file", zap.Error(err))
		}
		log.Info("result written", zap.String("path", *outputPath))
	}

	if genErr != nil {
		os.Exit(1)
	}
}
