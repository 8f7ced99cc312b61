package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusplan/timetable/internal/availability"
	"github.com/campusplan/timetable/internal/cache"
	"github.com/campusplan/timetable/internal/engine"
	"github.com/campusplan/timetable/internal/history"
	"github.com/campusplan/timetable/internal/telemetry"
)

// GenerateRequest is the JSON body of POST /v1/generate. It mirrors
// engine.Config, adding validator tags at the wire boundary so malformed
// requests never reach domain.Build.
type GenerateRequest struct {
	Days          int              `json:"days" validate:"required,min=1,max=7"`
	PeriodsPerDay int              `json:"periods_per_day" validate:"required,min=1,max=32"`
	Teachers      []TeacherRequest `json:"teachers" validate:"required,min=1,dive"`
	Classes       []ClassRequest   `json:"classes" validate:"required,min=1,dive"`
	Seed          *uint64          `json:"seed"`
}

type TeacherRequest struct {
	Name    string   `json:"name" validate:"required"`
	Days    int      `json:"days" validate:"required,min=1,max=7"`
	Periods int      `json:"periods_per_day" validate:"required,min=1,max=32"`
	Buffer  []uint32 `json:"buffer" validate:"required"`
}

type LessonRequest struct {
	Subject        string `json:"subject" validate:"required"`
	TeacherName    string `json:"teacher_name" validate:"required"`
	PeriodsPerWeek int    `json:"periods_per_week" validate:"required,min=1"`
}

type ClassRequest struct {
	Name    string          `json:"name" validate:"required"`
	Lessons []LessonRequest `json:"lessons" validate:"required,min=1,dive"`
}

// RunResponse is the payload returned from a generation request.
type RunResponse struct {
	RunID  string        `json:"run_id"`
	Result engine.Result `json:"result"`
}

// toEngineConfig converts the validated wire request into engine.Config.
func (r GenerateRequest) toEngineConfig() engine.Config {
	teachers := make([]engine.TeacherInput, len(r.Teachers))
	for i, t := range r.Teachers {
		teachers[i] = engine.TeacherInput{
			Name: t.Name,
			Availability: availability.Wire{
				Days:    t.Days,
				Periods: t.Periods,
				Words:   t.Buffer,
			},
		}
	}
	classes := make([]engine.ClassInput, len(r.Classes))
	for i, cl := range r.Classes {
		lessons := make([]engine.LessonInput, len(cl.Lessons))
		for j, l := range cl.Lessons {
			lessons[j] = engine.LessonInput{
				Subject:        l.Subject,
				TeacherName:    l.TeacherName,
				PeriodsPerWeek: l.PeriodsPerWeek,
			}
		}
		classes[i] = engine.ClassInput{Name: cl.Name, Lessons: lessons}
	}
	return engine.Config{
		Days:          r.Days,
		PeriodsPerDay: r.PeriodsPerDay,
		Teachers:      teachers,
		Classes:       classes,
	}
}

// Handler wires the HTTP surface to the engine, its telemetry wrapper, the
// result cache, and the run-history store.
type Handler struct {
	collector *telemetry.Collector
	cache     *cache.Cache
	cacheTTL  time.Duration
	history   *history.Store
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewHandler builds a Handler. c and h may be nil, in which case their
// corresponding behaviour (result reuse, run lookup/persistence) is skipped.
func NewHandler(collector *telemetry.Collector, c *cache.Cache, cacheTTL time.Duration, h *history.Store, logger *zap.Logger) *Handler {
	return &Handler{
		collector: collector,
		cache:     c,
		cacheTTL:  cacheTTL,
		history:   h,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Generate handles POST /v1/generate.
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Envelope{Error: &ErrorBody{Kind: "MALFORMED_REQUEST", Message: err.Error()}})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, Envelope{Error: &ErrorBody{Kind: "MALFORMED_REQUEST", Message: err.Error()}})
		return
	}

	cfg := req.toEngineConfig()
	opts := engine.Options{Logger: h.logger}
	if req.Seed != nil {
		opts.Seed = req.Seed
	}

	ctx := c.Request.Context()

	var cacheKey string
	if h.cache != nil {
		seed := uint64(0)
		if req.Seed != nil {
			seed = *req.Seed
		}
		if key, keyErr := cache.Key(cfg, seed); keyErr == nil {
			cacheKey = key
			if cached, found, getErr := h.cache.Get(ctx, key); getErr == nil && found {
				JSON(c, http.StatusOK, cached)
				return
			}
		}
	}

	result, err := h.collector.Generate(cfg, opts)
	if err != nil && result.Schedule == nil {
		Error(c, err)
		return
	}

	runID := uuid.NewString()
	if h.history != nil {
		if saveErr := h.history.Save(ctx, runID, cacheKey, result); saveErr != nil {
			h.logger.Warn("failed to persist run history", zap.Error(saveErr), zap.String("run_id", runID))
		}
	}
	if h.cache != nil && cacheKey != "" {
		if setErr := h.cache.Set(ctx, cacheKey, result, h.cacheTTL); setErr != nil {
			h.logger.Warn("failed to cache generation result", zap.Error(setErr))
		}
	}

	if err != nil {
		// NoFeasibleSolution: the best schedule found is still useful to the
		// caller, so it is returned alongside the error detail.
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, Envelope{
			Data:  RunResponse{RunID: runID, Result: result},
			Error: &ErrorBody{Kind: KindOf(err), Message: err.Error()},
		})
		return
	}

	JSON(c, http.StatusOK, RunResponse{RunID: runID, Result: result})
}

// GetRun handles GET /v1/runs/:id.
func (h *Handler) GetRun(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotImplemented, Envelope{Error: &ErrorBody{Kind: "NOT_CONFIGURED", Message: "run history is not configured"}})
		return
	}
	rec, err := h.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, Envelope{Error: &ErrorBody{Kind: "NOT_FOUND", Message: "run not found"}})
		return
	}
	JSON(c, http.StatusOK, rec)
}
