package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// health handles GET /health: 200 whenever the process can respond at
// all (spec.md §6).
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ready handles GET /ready: 200 iff the queue backend is reachable, 503
// otherwise.
func (s *Server) ready(c *gin.Context) {
	if !s.Queue.HealthCheck(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
