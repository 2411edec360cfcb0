package api

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Noah-Everett/phiacta-verify/internal/metrics"
	"github.com/Noah-Everett/phiacta-verify/internal/model"
)

var errNotNumeric = errors.New("api: limit is not a positive integer")

// submitJobRequest is the wire shape of POST /v1/jobs (spec.md §6).
type submitJobRequest struct {
	ClaimID         uuid.UUID               `json:"claim_id" binding:"required"`
	RunnerKind      model.RunnerKind        `json:"runner_type" binding:"required"`
	CodeContent     string                  `json:"code_content" binding:"required"`
	EnvironmentSpec *model.EnvironmentSpec  `json:"environment_spec,omitempty"`
	ExpectedOutputs []model.ExpectedOutput  `json:"expected_outputs,omitempty"`
	ResourceLimits  *model.ResourceLimits   `json:"resource_limits,omitempty"`
}

const defaultListLimit = 50
const maxListLimit = 200

// submitJob handles POST /v1/jobs: validates the request, rejects
// oversize code with 413, enqueues, and returns 201.
func (s *Server) submitJob(c *gin.Context) {
	var req submitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if int64(len(req.CodeContent)) > s.maxCodeSizeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "code exceeds maximum size"})
		return
	}
	if !req.RunnerKind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown runner_type"})
		return
	}

	limits := model.DefaultResourceLimits()
	if req.ResourceLimits != nil {
		limits = *req.ResourceLimits
	}
	if err := limits.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash := sha256.Sum256([]byte(req.CodeContent))
	codeHash := hex.EncodeToString(hash[:])

	now := time.Now().UTC()
	job := &model.VerificationJob{
		ID:              uuid.New(),
		ClaimID:         req.ClaimID,
		SubmitterID:     submitterID(c),
		RunnerKind:      req.RunnerKind,
		CodeContent:     req.CodeContent,
		CodeHash:        codeHash,
		EnvironmentSpec: req.EnvironmentSpec,
		ExpectedOutputs: req.ExpectedOutputs,
		ResourceLimits:  limits,
		Status:          model.Pending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.Queue.Enqueue(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"job_id":    job.ID,
		"status":    model.Queued,
		"code_hash": codeHash,
	})
}

// getJobStatus handles GET /v1/jobs/{id}.
func (s *Server) getJobStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	status, err := s.Queue.GetStatus(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": id, "status": status})
}

// getJobResult handles GET /v1/jobs/{id}/result.
func (s *Server) getJobResult(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	result, err := s.Queue.GetResult(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not available"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// listJobs handles GET /v1/jobs?limit=.
func (s *Server) listJobs(c *gin.Context) {
	limit := int64(defaultListLimit)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := parsePositiveInt(raw); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	summaries, err := s.Queue.ListRecentJobs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}

	metrics.QueueDepth.Set(float64(len(summaries)))

	jobs := make([]gin.H, 0, len(summaries))
	for _, summary := range summaries {
		jobs = append(jobs, gin.H{"job_id": summary.JobID, "status": summary.Status})
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// parsePositiveInt parses a query-string limit, clamped by the caller
// rather than rejected outright with 400/422 — a deliberate, documented
// deviation from the reference implementation's strict validation (see
// DESIGN.md).
func parsePositiveInt(s string) (int64, error) {
	if s == "" {
		return 0, errNotNumeric
	}
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errNotNumeric
		}
		n = n*10 + int64(r-'0')
	}
	return n, nil
}
