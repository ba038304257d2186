package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/algospace/algospace-api/internal/middleware"
	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/services"
	"github.com/gin-gonic/gin"
)

// JobHandler handles posting and application endpoints
type JobHandler struct {
	jobService   services.JobServiceInterface
	matchService services.MatchServiceInterface
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobService services.JobServiceInterface, matchService services.MatchServiceInterface) *JobHandler {
	return &JobHandler{
		jobService:   jobService,
		matchService: matchService,
	}
}

func (h *JobHandler) session(c *gin.Context) (*models.Session, bool) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return nil, false
	}
	return session, true
}

// CreateJob handles POST /api/v1/job/create-job
func (h *JobHandler) CreateJob(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	job, err := h.jobService.CreateJob(c.Request.Context(), session.UserID, &req)
	if err != nil {
		h.respondJobError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// ListOwnJobs handles GET /api/v1/job/get-jobs
func (h *JobHandler) ListOwnJobs(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.ListOwnJobs(c.Request.Context(), session.UserID)
	if err != nil {
		h.respondJobError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// ListAllJobs handles GET /api/v1/job/get-all-jobs
func (h *JobHandler) ListAllJobs(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.ListAllJobs(c.Request.Context(), session.UserID)
	if err != nil {
		h.respondJobError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// GetJob handles GET /api/v1/job/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.jobService.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondJobError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListApplications handles GET /api/v1/job/:id/applications
func (h *JobHandler) ListApplications(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	applications, err := h.jobService.ListApplications(c.Request.Context(), session.UserID, c.Param("id"))
	if err != nil {
		h.respondJobError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

// UpdateApplicationStatus handles PUT /api/v1/job/applications/:id/status
func (h *JobHandler) UpdateApplicationStatus(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	application, err := h.jobService.UpdateApplicationStatus(
		c.Request.Context(),
		session.UserID,
		c.Param("id"),
		models.ApplicationStatus(req.Status),
	)
	if err != nil {
		h.respondJobError(c, err)
		return
	}
	c.JSON(http.StatusOK, application)
}

// Matches handles GET /api/v1/job/:id/matches
func (h *JobHandler) Matches(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "limit must be a number", err)
			return
		}
		limit = parsed
	}

	matches, err := h.matchService.MatchesForJob(c.Request.Context(), session.UserID, c.Param("id"), limit)
	if err != nil {
		h.respondJobError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (h *JobHandler) respondJobError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotJobOwner):
		respondError(c, http.StatusForbidden, "Job belongs to another user", err)
	case errors.Is(err, services.ErrNotInterviewer):
		respondError(c, http.StatusForbidden, "Interviewer account required", err)
	default:
		respondServiceError(c, err)
	}
}
