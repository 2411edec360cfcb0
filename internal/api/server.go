// Package api is the thin HTTP submission/status surface that sits in
// front of the verification core: job submission, status/result lookup,
// and liveness/readiness probes (spec.md §6).
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Noah-Everett/phiacta-verify/internal/queue"
)

// Server holds the dependencies the HTTP handlers need.
type Server struct {
	Queue            queue.Queue
	maxCodeSizeBytes int64
}

// NewServer returns a Server ready to build a router from.
func NewServer(q queue.Queue, maxCodeSizeBytes int64) *Server {
	return &Server{Queue: q, maxCodeSizeBytes: maxCodeSizeBytes}
}

// Router builds the full gin engine: health/ready probes always
// available, rate-limited and optionally-authenticated job routes, and
// the Prometheus scrape endpoint.
func (s *Server) Router(jwtSecret []byte, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)
	r.GET("/ready", s.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(RateLimit(600, 30), OptionalSubmitterAuth(jwtSecret), corsMiddleware(corsOrigins))
	{
		v1.POST("/jobs", s.submitJob)
		v1.GET("/jobs", s.listJobs)
		v1.GET("/jobs/:id", s.getJobStatus)
		v1.GET("/jobs/:id/result", s.getJobResult)
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
