// Package api exposes a workspace over HTTP. Every write goes through the
// workspace, so responses always carry reconciled state.
package api

import (
	"log/slog"
	"time"

	"capacity-planner/importer"
	"capacity-planner/metrics"
	"capacity-planner/workspace"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Options configures the router.
type Options struct {
	// SyncURL is the default demand feed for POST /api/sync.
	SyncURL string
	Debug   bool
}

// NewRouter builds the HTTP handler for ws.
func NewRouter(ws *workspace.Workspace, client *importer.Client, logger *slog.Logger, opts Options) *gin.Engine {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = importer.NewClient()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	h := &Handler{ws: ws, client: client, syncURL: opts.SyncURL, logger: logger}

	engine.GET("/healthz", h.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api := engine.Group("/api")
	{
		api.GET("/state", h.GetState)
		api.GET("/results", h.GetResults)
		api.POST("/pools", h.AddPool)
		api.PATCH("/pools/:id", h.UpdatePool)
		api.DELETE("/pools/:id", h.DeletePool)
		api.PUT("/config", h.UpdateConfig)
		api.POST("/sync", h.Sync)
		api.GET("/compare", h.Compare)
		api.GET("/curve", h.Curve)
	}
	return engine
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
