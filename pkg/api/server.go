// Package api exposes the shared store and the baseline monitor to the
// presentation layer over HTTP. Every endpoint is non-blocking and
// returns the latest known values; none can fail on account of the
// sidecar being down.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/luminsdev/hardware-monitoring/pkg/sidecar"
	"github.com/luminsdev/hardware-monitoring/pkg/stats"
)

// Server serves the monitoring API
type Server struct {
	engine  *gin.Engine
	state   *sidecar.State
	monitor *stats.Monitor
	logger  *zap.SugaredLogger
}

// NewServer creates the API server. registry may be nil to skip the
// /metrics endpoint.
func NewServer(state *sidecar.State, monitor *stats.Monitor, registry *prometheus.Registry, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:  engine,
		state:   state,
		monitor: monitor,
		logger:  logger,
	}

	v1 := engine.Group("/api/v1")
	v1.GET("/stats", s.getStats)
	v1.GET("/gpu/support", s.getGPUSupport)
	v1.GET("/sidecar/status", s.getSidecarStatus)
	v1.GET("/sidecar/data", s.getSidecarData)

	if registry != nil {
		engine.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	return s
}

// Handler returns the http.Handler for serving
func (s *Server) Handler() http.Handler {
	return s.engine
}

// getStats returns the baseline statistics with the sidecar's sensor
// readings overlaid.
func (s *Server) getStats(c *gin.Context) {
	base := s.monitor.Latest()
	merged := stats.Overlay(base, s.state.Data())
	c.JSON(http.StatusOK, merged)
}

// getGPUSupport reports whether a baseline GPU provider is available
func (s *Server) getGPUSupport(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"supported": s.monitor.HasGPUSupport()})
}

// getSidecarStatus returns the classified sidecar status
func (s *Server) getSidecarStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.StatusInfo())
}

// getSidecarData returns the latest raw sidecar snapshot, or 204 when no
// snapshot has arrived yet.
func (s *Server) getSidecarData(c *gin.Context) {
	data := s.state.Data()
	if data == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, data)
}
