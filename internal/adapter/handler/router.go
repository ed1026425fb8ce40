package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	dto "github.com/johnquangdev/meeting-filter/internal/adapter/dto/pipeline"
	"github.com/johnquangdev/meeting-filter/pkg/config"
)

// healthPingTimeout bounds each dependency check of /health.
const healthPingTimeout = 2 * time.Second

// StoragePinger reports whether object storage is reachable.
type StoragePinger interface {
	Ping(ctx context.Context) error
}

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	pipelineHandler *Pipeline
	metricsHandler  http.Handler
	storage         StoragePinger
}

// NewRouter creates a new router with all handlers. metrics may be nil.
func NewRouter(cfg *config.Config, pipelineHandler *Pipeline, metrics http.Handler) *Router {
	return &Router{
		cfg:             cfg,
		pipelineHandler: pipelineHandler,
		metricsHandler:  metrics,
	}
}

// WithStorage makes /health report the object storage connection.
func (rt *Router) WithStorage(p StoragePinger) *Router {
	rt.storage = p
	return rt
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	if rt.metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(rt.metricsHandler))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	v1 := e.Group("/v1")
	rt.setupPipelineRoutes(v1)
}

// setupPipelineRoutes configures transcript, analysis and run routes
func (rt *Router) setupPipelineRoutes(g *echo.Group) {
	h := rt.pipelineHandler
	if h == nil {
		g.Any("/*", rt.notImplemented)
		return
	}

	g.GET("/models", h.ListModels)

	transcripts := g.Group("/transcripts")
	transcripts.POST("/filter", h.FilterTranscript)
	transcripts.POST("/audio", h.FilterAudio)

	g.POST("/analysis", h.Analyze)
	g.GET("/analyses/:id", h.GetAnalysis)
	runs := g.Group("/runs")
	runs.GET("", h.ListRuns)
	runs.GET("/:run_id", h.GetRun)
	runs.GET("/:run_id/noise", h.GetRunNoise)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the pipeline handler in main.go",
	})
}

// healthCheck returns health status. An unreachable object store degrades
// the status; filtering still works without it.
func (rt *Router) healthCheck(c echo.Context) error {
	env := "development"
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	resp := dto.HealthResponse{
		Status:      "ok",
		Environment: env,
	}

	if rt.storage != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()
		if err := rt.storage.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Storage = "unavailable"
		} else {
			resp.Storage = "ok"
		}
	}
	return c.JSON(http.StatusOK, resp)
}
