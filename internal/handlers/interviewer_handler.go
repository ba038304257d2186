package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/algospace/algospace-api/internal/middleware"
	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/services"
	"github.com/gin-gonic/gin"
)

// InterviewerHandler handles the interviewer-facing endpoints
type InterviewerHandler struct {
	service services.InterviewerServiceInterface
}

// NewInterviewerHandler creates a new InterviewerHandler
func NewInterviewerHandler(service services.InterviewerServiceInterface) *InterviewerHandler {
	return &InterviewerHandler{
		service: service,
	}
}

func (h *InterviewerHandler) session(c *gin.Context) (*models.Session, bool) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return nil, false
	}
	return session, true
}

// GetProfile handles GET /api/v1/interviewer/profile
func (h *InterviewerHandler) GetProfile(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), session.UserID)
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/v1/interviewer/profile
func (h *InterviewerHandler) UpdateProfile(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.UpdateInterviewerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), session.UserID, &req)
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateExpertise handles PUT /api/v1/interviewer/expertise
func (h *InterviewerHandler) UpdateExpertise(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.UpdateExpertiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	user, err := h.service.UpdateExpertise(c.Request.Context(), session.UserID, &req)
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateCompanyInfo handles PUT /api/v1/interviewer/company-info
func (h *InterviewerHandler) UpdateCompanyInfo(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.UpdateCompanyInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	user, err := h.service.UpdateCompanyInfo(c.Request.Context(), session.UserID, &req)
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetAvailability handles GET /api/v1/interviewer/availability
func (h *InterviewerHandler) GetAvailability(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	schedule, err := h.service.GetAvailability(c.Request.Context(), session.UserID)
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// UpdateAvailability handles PUT /api/v1/interviewer/availability
func (h *InterviewerHandler) UpdateAvailability(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	user, err := h.service.UpdateAvailability(c.Request.Context(), session.UserID, req.Availability)
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// BlockDate handles POST /api/v1/interviewer/availability/block
func (h *InterviewerHandler) BlockDate(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.BlockDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	schedule, err := h.service.BlockDate(c.Request.Context(), session.UserID, req.Date)
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// UnblockDate handles POST /api/v1/interviewer/availability/unblock
func (h *InterviewerHandler) UnblockDate(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.BlockDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	schedule, err := h.service.UnblockDate(c.Request.Context(), session.UserID, req.Date)
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// UploadPhoto handles POST /api/v1/interviewer/photo
func (h *InterviewerHandler) UploadPhoto(c *gin.Context) {
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
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photoUrl": url})
}

// PendingInterviews handles GET /api/v1/interviewer/interviews/pending
func (h *InterviewerHandler) PendingInterviews(c *gin.Context) {
	h.listInterviews(c, h.service.PendingInterviews)
}

// UpcomingInterviews handles GET /api/v1/interviewer/interviews/upcoming
func (h *InterviewerHandler) UpcomingInterviews(c *gin.Context) {
	h.listInterviews(c, h.service.UpcomingInterviews)
}

// PastInterviews handles GET /api/v1/interviewer/interviews/past
func (h *InterviewerHandler) PastInterviews(c *gin.Context) {
	h.listInterviews(c, h.service.PastInterviews)
}

func (h *InterviewerHandler) listInterviews(c *gin.Context, list func(ctx context.Context, userID string) ([]*models.Interview, error)) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	interviews, err := list(c.Request.Context(), session.UserID)
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interviews": interviews})
}

// GetInterview handles GET /api/v1/interviewer/interviews/:id
func (h *InterviewerHandler) GetInterview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	interview, err := h.service.GetInterview(c.Request.Context(), session.UserID, c.Param("id"))
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

// ApproveInterview handles POST /api/v1/interviewer/interviews/:id/approve
func (h *InterviewerHandler) ApproveInterview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	interview, err := h.service.ApproveInterview(c.Request.Context(), session.UserID, c.Param("id"), &req)
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

// RejectInterview handles POST /api/v1/interviewer/interviews/:id/reject
// The body is optional and may carry a reason shown to the candidate
func (h *InterviewerHandler) RejectInterview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.RejectInterviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
			return
		}
	}

	if err := h.service.RejectInterview(c.Request.Context(), session.UserID, c.Param("id"), req.Reason); err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RescheduleInterview handles POST /api/v1/interviewer/interviews/:id/reschedule
func (h *InterviewerHandler) RescheduleInterview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.RescheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	interview, err := h.service.RescheduleInterview(c.Request.Context(), session.UserID, c.Param("id"), &req)
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

// CompleteInterview handles POST /api/v1/interviewer/interviews/:id/complete
func (h *InterviewerHandler) CompleteInterview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.service.CompleteInterview(c.Request.Context(), session.UserID, c.Param("id")); err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SubmitFeedback handles POST /api/v1/interviewer/interviews/:id/feedback
func (h *InterviewerHandler) SubmitFeedback(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req models.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	interview, err := h.service.SubmitFeedback(c.Request.Context(), session.UserID, c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, services.ErrFeedbackExists) {
			respondError(c, http.StatusConflict, "Feedback already submitted for this interview", err)
			return
		}
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

// SearchCandidates handles GET /api/v1/interviewer/candidates
func (h *InterviewerHandler) SearchCandidates(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var filter models.CandidateSearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	candidates, err := h.service.SearchCandidates(c.Request.Context(), session.UserID, filter)
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// GetCandidate handles GET /api/v1/interviewer/candidates/:id
func (h *InterviewerHandler) GetCandidate(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	candidate, err := h.service.GetCandidate(c.Request.Context(), session.UserID, c.Param("id"))
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

// FeedbackHistory handles GET /api/v1/interviewer/candidates/:id/feedback-history
func (h *InterviewerHandler) FeedbackHistory(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	interviews, err := h.service.FeedbackHistory(c.Request.Context(), session.UserID, c.Param("id"))
	if err != nil {
		h.respondInterviewerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interviews": interviews})
}

func (h *InterviewerHandler) respondInterviewerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotInterviewer):
		respondError(c, http.StatusForbidden, "Interviewer account required", err)
	case errors.Is(err, services.ErrInterviewNotPending):
		respondError(c, http.StatusConflict, "Interview is not awaiting a decision", err)
	case errors.Is(err, services.ErrScheduledInPast):
		respondError(c, http.StatusBadRequest, "Scheduled time must be in the future", err)
	case errors.Is(err, services.ErrCandidateNotFound):
		respondError(c, http.StatusNotFound, "Candidate not found", err)
	default:
		respondServiceError(c, err)
	}
}
