// Command server exposes the timetabling engine over HTTP: POST
// /v1/generate runs a search, GET /v1/runs/:id looks up a past result, and
// GET /metrics serves Prometheus data to an operator. Bootstrap follows the
// gin.New + explicit middleware chain noah-isme-sma-adp-api's api-gateway
// uses, trimmed to the dependencies this engine actually wires.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/campusplan/timetable/internal/cache"
	"github.com/campusplan/timetable/internal/history"
	"github.com/campusplan/timetable/internal/httpapi"
	"github.com/campusplan/timetable/internal/telemetry"
	"github.com/campusplan/timetable/pkg/config"
	"github.com/campusplan/timetable/pkg/logger"
)

func main() {
	fs := pflag.NewFlagSet("timetable-server", pflag.ExitOnError)
	port := fs.Int("port", 0, "HTTP port (overrides TIMETABLE_SERVER_PORT)")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer log.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	collector := telemetry.NewCollector(reg)

	var historyStore *history.Store
	if cfg.Database.DSN != "" {
		db, dbErr := sqlx.Open("postgres", cfg.Database.DSN)
		if dbErr != nil {
			log.Fatal("failed to open database", zap.Error(dbErr))
		}
		defer db.Close()
		historyStore = history.New(db)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if migrateErr := historyStore.Migrate(ctx); migrateErr != nil {
			log.Fatal("failed to migrate run history schema", zap.Error(migrateErr))
		}
		cancel()
	} else {
		log.Info("database DSN not configured; run history disabled")
	}

	var resultCache *cache.Cache
	if cfg.Redis.Addr != "" {
		resultCache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer resultCache.Close()
	}

	handler := httpapi.NewHandler(collector, resultCache, cfg.Redis.TTL, historyStore, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(log))

	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	v1.POST("/generate", handler.Generate)
	v1.GET("/runs/:id", handler.GetRun)

	srv := &http.Server{
		Addr:    portAddr(cfg.Server.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func portAddr(port int) string {
	if port == 0 {
		port = 8080
	}
	return ":" + strconv.Itoa(port)
}
