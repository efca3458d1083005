// Package web serves a read-only HTTP view of the task graph for
// dashboards and scripted polling. All mutations stay on the CLI; the
// one exception is the promote endpoint, which is idempotent.
package web

import (
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/humont/shikigami-sub001/internal/search"
	"github.com/humont/shikigami-sub001/internal/store"
)

// Server is the shikigami API server
type Server struct {
	store   *store.Store
	index   *search.Index // nil when search is disabled
	log     *slog.Logger
	metrics *Metrics
	router  *gin.Engine
}

// NewServer creates a new API server. index may be nil.
func NewServer(s *store.Store, index *search.Index, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		store:   s,
		index:   index,
		log:     log,
		metrics: NewMetrics(),
		router:  router,
	}
	router.Use(srv.observe())

	router.GET("/healthz", srv.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(srv.metrics.registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.GET("/tasks", srv.handleTasks)
		api.GET("/tasks/:id", srv.handleTask)
		api.GET("/tasks/:id/deps", srv.handleDeps)
		api.GET("/tasks/:id/audit", srv.handleAudit)
		api.GET("/tasks/:id/ledger", srv.handleLedger)
		api.GET("/ready", srv.handleReady)
		api.GET("/search", srv.handleSearch)
		api.POST("/promote", srv.handlePromote)
	}

	return srv
}

// Run starts the API server
func (s *Server) Run(addr string) error {
	s.log.Info("api server listening", "addr", addr)
	return s.router.Run(addr)
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := statusClass(c.Writer.Status())
		s.metrics.requestsTotal.WithLabelValues(route, code).Inc()
		s.metrics.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		if c.Writer.Status() >= 500 {
			s.metrics.requestsFailed.WithLabelValues(route).Inc()
		}
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
