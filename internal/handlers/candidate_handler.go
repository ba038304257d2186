package handlers

import (
	"errors"
	"net/http"

	"github.com/algospace/algospace-api/internal/middleware"
	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CandidateHandler handles the candidate-facing endpoints
type CandidateHandler struct {
	service services.CandidateServiceInterface
}

// NewCandidateHandler creates a new CandidateHandler
func NewCandidateHandler(service services.CandidateServiceInterface) *CandidateHandler {
	return &CandidateHandler{
		service: service,
	}
}

func (h *CandidateHandler) session(c *gin.Context) (*models.Session, bool) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return nil, false
	}
	return session, true
}

// GetProfile handles GET /api/v1/candidate/profile
func (h *CandidateHandler) GetProfile(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), session.UserID)
	if err != nil {
		h.respondCandidateError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/v1/candidate/profile
func (h *CandidateHandler) UpdateProfile(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.UpdateCandidateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), session.UserID, &req)
	if err != nil {
		h.respondCandidateError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateSkills handles PUT /api/v1/candidate/skills
func (h *CandidateHandler) UpdateSkills(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.UpdateSkillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	user, err := h.service.UpdateSkills(c.Request.Context(), session.UserID, req.Skills)
	if err != nil {
		h.respondCandidateError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdatePreferredRoles handles PUT /api/v1/candidate/preferred-roles
func (h *CandidateHandler) UpdatePreferredRoles(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.UpdatePreferredRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	user, err := h.service.UpdatePreferredRoles(c.Request.Context(), session.UserID, req.PreferredRoles)
	if err != nil {
		h.respondCandidateError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateCodingProfiles handles PUT /api/v1/candidate/coding-profiles
func (h *CandidateHandler) UpdateCodingProfiles(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.UpdateCodingProfilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	user, err := h.service.UpdateCodingProfiles(c.Request.Context(), session.UserID, req.CodingProfiles)
	if err != nil {
		h.respondCandidateError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadResume handles POST /api/v1/candidate/resume
func (h *CandidateHandler) UploadResume(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.UploadResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	url, err := h.service.UploadResume(c.Request.Context(), session.UserID, &req)
	if err != nil {
		if errors.Is(err, services.ErrResumeTooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, err.Error(), err)
			return
		}
		h.respondCandidateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resumeUrl": url})
}

// DeleteResume handles DELETE /api/v1/candidate/resume
func (h *CandidateHandler) DeleteResume(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.service.DeleteResume(c.Request.Context(), session.UserID); err != nil {
		if errors.Is(err, services.ErrNoResume) {
			respondError(c, http.StatusNotFound, "No resume on file", err)
			return
		}
		h.respondCandidateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UploadPhoto handles POST /api/v1/candidate/photo
func (h *CandidateHandler) UploadPhoto(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.UploadPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	url, err := h.service.UploadPhoto(c.Request.Context(), session.UserID, &req)
	if err != nil {
		h.respondCandidateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photoUrl": url})
}

// ListInterviewers handles GET /api/v1/candidate/interviewers
func (h *CandidateHandler) ListInterviewers(c *gin.Context) {
	interviewers, err := h.service.ListInterviewers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interviewers": interviewers})
}

// RequestInterview handles POST /api/v1/candidate/request-interview
func (h *CandidateHandler) RequestInterview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.RequestInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	interview, err := h.service.RequestInterview(c.Request.Context(), session.UserID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInterviewerUnknown) {
			respondError(c, http.StatusNotFound, "Interviewer not found", err)
			return
		}
		h.respondCandidateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, interview)
}

// ListInterviews handles GET /api/v1/candidate/interviews
func (h *CandidateHandler) ListInterviews(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	interviews, err := h.service.ListInterviews(c.Request.Context(), session.UserID)
	if err != nil {
		h.respondCandidateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interviews": interviews})
}

// CancelInterview handles DELETE /api/v1/candidate/interviews/:id
// The body is optional and may carry a cancellation reason
func (h *CandidateHandler) CancelInterview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.CancelInterviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
			return
		}
	}

	if err := h.service.CancelInterview(c.Request.Context(), session.UserID, c.Param("id"), req.Reason); err != nil {
		h.respondCandidateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ApplyToJob handles POST /api/v1/candidate/jobs/:id/apply
func (h *CandidateHandler) ApplyToJob(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	application, err := h.service.ApplyToJob(c.Request.Context(), session.UserID, c.Param("id"))
	if err != nil {
		h.respondCandidateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, application)
}

func (h *CandidateHandler) respondCandidateError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotCandidate) {
		respondError(c, http.StatusForbidden, "Candidate account required", err)
		return
	}
	respondServiceError(c, err)
}
