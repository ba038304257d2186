package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/algospace/algospace-api/config"
	"github.com/algospace/algospace-api/internal/cache"
	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/repository"
	apperrors "github.com/algospace/algospace-api/pkg/errors"
	"github.com/algospace/algospace-api/pkg/httpclient"
	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/algospace/algospace-api/pkg/metrics"
	"github.com/algospace/algospace-api/pkg/objstore"
	"github.com/algospace/algospace-api/pkg/retry"
	"github.com/algospace/algospace-api/pkg/slug"
	"github.com/algospace/algospace-api/pkg/trigger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotInterviewer      = errors.New("interviewer account required")
	ErrFeedbackExists      = errors.New("feedback already submitted for this interview")
	ErrScheduledInPast     = errors.New("scheduled time must be in the future")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrInterviewNotPending = errors.New("interview is not awaiting a decision")
)

// InterviewerService covers the interviewer-facing operations: profile and
// availability upkeep, the interview pipeline, feedback and candidate search.
type InterviewerService struct {
	userRepo      repository.UserRepository
	interviewRepo repository.InterviewRepository
	directory     *cache.DirectoryCache
	storage       *objstore.StorageClient
	config        *config.Config
	httpClient    httpclient.Client
}

func NewInterviewerService(
	userRepo repository.UserRepository,
	interviewRepo repository.InterviewRepository,
	directory *cache.DirectoryCache,
	storage *objstore.StorageClient,
	cfg *config.Config,
	httpClient httpclient.Client,
) *InterviewerService {
	return &InterviewerService{
		userRepo:      userRepo,
		interviewRepo: interviewRepo,
		directory:     directory,
		storage:       storage,
		config:        cfg,
		httpClient:    httpClient,
	}
}

func (s *InterviewerService) getInterviewer(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleInterviewer {
		return nil, ErrNotInterviewer
	}
	return user, nil
}

// GetProfile returns the full interviewer record for the authenticated user
func (s *InterviewerService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.getInterviewer(ctx, userID)
}

// UpdateProfile merges the request into the stored interviewer profile.
// Empty fields keep their current values.
func (s *InterviewerService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateInterviewerProfileRequest) (*models.User, error) {
	user, err := s.getInterviewer(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := user.InterviewerProfile
	if profile == nil {
		profile = &models.InterviewerProfile{}
	}
	if req.Phone != "" {
		profile.Phone = req.Phone
	}
	if req.Gender != "" {
		profile.Gender = req.Gender
	}
	if req.Bio != "" {
		profile.Bio = req.Bio
	}

	if err := s.userRepo.UpdateInterviewerProfile(ctx, userID, profile); err != nil {
		metrics.ProfileUpdates.WithLabelValues("interviewer", "error").Inc()
		return nil, err
	}
	if req.FullName != "" && req.FullName != user.FullName {
		if err := s.userRepo.UpdateFullName(ctx, userID, req.FullName); err != nil {
			metrics.ProfileUpdates.WithLabelValues("interviewer", "error").Inc()
			return nil, err
		}
	}

	s.invalidateDirectory()
	metrics.ProfileUpdates.WithLabelValues("interviewer", "success").Inc()
	return s.userRepo.GetUserByID(ctx, userID)
}

// UpdateExpertise replaces the expertise areas and optionally the experience
func (s *InterviewerService) UpdateExpertise(ctx context.Context, userID string, req *models.UpdateExpertiseRequest) (*models.User, error) {
	return s.updateInterviewerField(ctx, userID, func(p *models.InterviewerProfile) {
		p.Expertise = req.Expertise
		if req.ExperienceYears != 0 {
			p.ExperienceYears = req.ExperienceYears
		}
	})
}

// UpdateCompanyInfo replaces the employer details
func (s *InterviewerService) UpdateCompanyInfo(ctx context.Context, userID string, req *models.UpdateCompanyInfoRequest) (*models.User, error) {
	return s.updateInterviewerField(ctx, userID, func(p *models.InterviewerProfile) {
		p.CurrentCompany = req.CurrentCompany
		p.Designation = req.Designation
	})
}

// GetAvailability returns the stored weekly slots together with any
// single dates blocked out of them
func (s *InterviewerService) GetAvailability(ctx context.Context, userID string) (*models.AvailabilitySchedule, error) {
	user, err := s.getInterviewer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return scheduleOf(user.InterviewerProfile), nil
}

func scheduleOf(profile *models.InterviewerProfile) *models.AvailabilitySchedule {
	schedule := &models.AvailabilitySchedule{
		Availability: []models.AvailabilitySlot{},
		BlockedDates: []string{},
	}
	if profile == nil {
		return schedule
	}
	if profile.Availability != nil {
		schedule.Availability = profile.Availability
	}
	if profile.BlockedDates != nil {
		schedule.BlockedDates = profile.BlockedDates
	}
	return schedule
}

// UpdateAvailability replaces the weekly availability after validating every
// slot's day name and time window
func (s *InterviewerService) UpdateAvailability(ctx context.Context, userID string, slots []models.AvailabilitySlot) (*models.User, error) {
	for _, slot := range slots {
		if err := slot.Validate(); err != nil {
			return nil, apperrors.InvalidInputError("availability", err.Error())
		}
	}
	return s.updateInterviewerField(ctx, userID, func(p *models.InterviewerProfile) {
		p.Availability = slots
	})
}

// BlockDate takes a single calendar day out of the weekly schedule.
// Blocking an already blocked date is a no-op.
func (s *InterviewerService) BlockDate(ctx context.Context, userID, date string) (*models.AvailabilitySchedule, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperrors.InvalidInputError("date", "must be a YYYY-MM-DD date")
	}
	user, err := s.updateInterviewerField(ctx, userID, func(p *models.InterviewerProfile) {
		for _, d := range p.BlockedDates {
			if d == date {
				return
			}
		}
		p.BlockedDates = append(p.BlockedDates, date)
		sort.Strings(p.BlockedDates)
	})
	if err != nil {
		return nil, err
	}
	return scheduleOf(user.InterviewerProfile), nil
}

// UnblockDate makes a previously blocked day available again.
// Unblocking a date that was never blocked is a no-op.
func (s *InterviewerService) UnblockDate(ctx context.Context, userID, date string) (*models.AvailabilitySchedule, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperrors.InvalidInputError("date", "must be a YYYY-MM-DD date")
	}
	user, err := s.updateInterviewerField(ctx, userID, func(p *models.InterviewerProfile) {
		kept := p.BlockedDates[:0]
		for _, d := range p.BlockedDates {
			if d != date {
				kept = append(kept, d)
			}
		}
		p.BlockedDates = kept
	})
	if err != nil {
		return nil, err
	}
	return scheduleOf(user.InterviewerProfile), nil
}

func (s *InterviewerService) updateInterviewerField(ctx context.Context, userID string, apply func(*models.InterviewerProfile)) (*models.User, error) {
	user, err := s.getInterviewer(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.InterviewerProfile
	if profile == nil {
		profile = &models.InterviewerProfile{}
	}
	apply(profile)

	if err := s.userRepo.UpdateInterviewerProfile(ctx, userID, profile); err != nil {
		metrics.ProfileUpdates.WithLabelValues("interviewer", "error").Inc()
		return nil, err
	}

	s.invalidateDirectory()
	metrics.ProfileUpdates.WithLabelValues("interviewer", "success").Inc()
	return s.userRepo.GetUserByID(ctx, userID)
}

// UploadPhoto stores a profile photo and records its URL
func (s *InterviewerService) UploadPhoto(ctx context.Context, userID string, req *models.UploadPhotoRequest) (string, error) {
	user, err := s.getInterviewer(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := s.storage.ValidateImageType(req.ContentType); err != nil {
		return "", err
	}
	if err := s.storage.ValidateImageSize(req.Image); err != nil {
		return "", err
	}

	key := fmt.Sprintf("photos/%s%s", userID, path.Ext(req.FileName))
	url, err := retry.DoWithResult(ctx, retry.StorageConfig(), "upload_photo", func() (string, error) {
		return s.storage.UploadImage(ctx, req.Image, key, req.ContentType)
	})
	if err != nil {
		logger.Error("Photo upload failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return "", apperrors.InternalError("failed to store photo")
	}

	profile := user.InterviewerProfile
	if profile == nil {
		profile = &models.InterviewerProfile{}
	}
	profile.PhotoURL = url
	if err := s.userRepo.UpdateInterviewerProfile(ctx, userID, profile); err != nil {
		return "", err
	}
	s.invalidateDirectory()
	return url, nil
}

// PendingInterviews lists requests awaiting a decision
func (s *InterviewerService) PendingInterviews(ctx context.Context, userID string) ([]*models.Interview, error) {
	return s.listInterviews(ctx, userID, models.InterviewPending)
}

// UpcomingInterviews lists approved interviews with a scheduled time
func (s *InterviewerService) UpcomingInterviews(ctx context.Context, userID string) ([]*models.Interview, error) {
	return s.listInterviews(ctx, userID, models.InterviewScheduled)
}

// PastInterviews lists interviews that reached a terminal state
func (s *InterviewerService) PastInterviews(ctx context.Context, userID string) ([]*models.Interview, error) {
	return s.listInterviews(ctx, userID,
		models.InterviewCompleted,
		models.InterviewCancelled,
		models.InterviewRejected)
}

func (s *InterviewerService) listInterviews(ctx context.Context, userID string, statuses ...models.InterviewStatus) ([]*models.Interview, error) {
	if _, err := s.getInterviewer(ctx, userID); err != nil {
		return nil, err
	}
	return s.interviewRepo.ListByInterviewer(ctx, userID, statuses)
}

// GetInterview returns a single interview owned by the interviewer
func (s *InterviewerService) GetInterview(ctx context.Context, userID, interviewID string) (*models.Interview, error) {
	interview, err := s.interviewRepo.GetInterviewByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview.InterviewerID != userID {
		return nil, apperrors.AccessDeniedError("interview belongs to another interviewer")
	}
	return interview, nil
}

// ApproveInterview accepts a pending request, fixes the time and allocates a
// collaboration room for the session.
func (s *InterviewerService) ApproveInterview(ctx context.Context, userID, interviewID string, req *models.ScheduleInterviewRequest) (*models.Interview, error) {
	interview, err := s.GetInterview(ctx, userID, interviewID)
	if err != nil {
		metrics.InterviewRequests.WithLabelValues("approve", "error").Inc()
		return nil, err
	}
	if interview.Status != models.InterviewPending {
		metrics.InterviewRequests.WithLabelValues("approve", "wrong_state").Inc()
		return nil, ErrInterviewNotPending
	}
	if req.ScheduledAt.Before(time.Now()) {
		metrics.InterviewRequests.WithLabelValues("approve", "past_time").Inc()
		return nil, ErrScheduledInPast
	}

	roomSlug := slug.GenerateRoomSlug(interview.CandidateName, uuid.NewString()[:8])
	if err := s.interviewRepo.Schedule(ctx, interviewID, req.ScheduledAt, roomSlug); err != nil {
		metrics.InterviewRequests.WithLabelValues("approve", "error").Inc()
		return nil, err
	}

	s.sendScheduledEmail(ctx, interview, req.ScheduledAt)

	logger.Info("Interview scheduled",
		zap.String("interview_id", interviewID),
		zap.String("room_slug", roomSlug),
		zap.Time("scheduled_at", req.ScheduledAt))
	metrics.InterviewRequests.WithLabelValues("approve", "success").Inc()
	return s.interviewRepo.GetInterviewByID(ctx, interviewID)
}

// RejectInterview declines a pending request. The reason, when given, is
// persisted and shown to the candidate in listings.
func (s *InterviewerService) RejectInterview(ctx context.Context, userID, interviewID, reason string) error {
	interview, err := s.GetInterview(ctx, userID, interviewID)
	if err != nil {
		metrics.InterviewRequests.WithLabelValues("reject", "error").Inc()
		return err
	}
	if interview.Status != models.InterviewPending {
		metrics.InterviewRequests.WithLabelValues("reject", "wrong_state").Inc()
		return ErrInterviewNotPending
	}

	if err := s.interviewRepo.UpdateStatus(ctx, interviewID, models.InterviewRejected, reason); err != nil {
		metrics.InterviewRequests.WithLabelValues("reject", "error").Inc()
		return err
	}
	metrics.InterviewRequests.WithLabelValues("reject", "success").Inc()
	return nil
}

// RescheduleInterview moves an approved interview to a new future time
func (s *InterviewerService) RescheduleInterview(ctx context.Context, userID, interviewID string, req *models.RescheduleInterviewRequest) (*models.Interview, error) {
	interview, err := s.GetInterview(ctx, userID, interviewID)
	if err != nil {
		metrics.InterviewRequests.WithLabelValues("reschedule", "error").Inc()
		return nil, err
	}
	if interview.Status != models.InterviewScheduled {
		metrics.InterviewRequests.WithLabelValues("reschedule", "wrong_state").Inc()
		return nil, apperrors.ConflictError(fmt.Sprintf("cannot reschedule an interview that is %s", interview.Status))
	}
	if req.ScheduledAt.Before(time.Now()) {
		metrics.InterviewRequests.WithLabelValues("reschedule", "past_time").Inc()
		return nil, ErrScheduledInPast
	}

	if err := s.interviewRepo.Reschedule(ctx, interviewID, req.ScheduledAt); err != nil {
		metrics.InterviewRequests.WithLabelValues("reschedule", "error").Inc()
		return nil, err
	}

	s.sendScheduledEmail(ctx, interview, req.ScheduledAt)
	metrics.InterviewRequests.WithLabelValues("reschedule", "success").Inc()
	return s.interviewRepo.GetInterviewByID(ctx, interviewID)
}

// CompleteInterview marks a scheduled interview as held
func (s *InterviewerService) CompleteInterview(ctx context.Context, userID, interviewID string) error {
	interview, err := s.GetInterview(ctx, userID, interviewID)
	if err != nil {
		metrics.InterviewRequests.WithLabelValues("complete", "error").Inc()
		return err
	}
	if interview.Status != models.InterviewScheduled {
		metrics.InterviewRequests.WithLabelValues("complete", "wrong_state").Inc()
		return apperrors.ConflictError(fmt.Sprintf("cannot complete an interview that is %s", interview.Status))
	}

	if err := s.interviewRepo.UpdateStatus(ctx, interviewID, models.InterviewCompleted, ""); err != nil {
		metrics.InterviewRequests.WithLabelValues("complete", "error").Inc()
		return err
	}

	if triggerURL := s.config.EmailTriggers.InterviewCompletedTriggerURL; triggerURL != "" {
		trigger.CallAsyncWithPayload(triggerURL, map[string]string{
			"interviewId":     interviewID,
			"candidateName":   interview.CandidateName,
			"interviewerName": interview.InterviewerName,
		}, s.httpClient)
	}

	metrics.InterviewRequests.WithLabelValues("complete", "success").Inc()
	return nil
}

// SubmitFeedback records structured feedback on a held interview. The
// interview moves to completed if it was still scheduled. Feedback can only
// be submitted once.
func (s *InterviewerService) SubmitFeedback(ctx context.Context, userID, interviewID string, req *models.SubmitFeedbackRequest) (*models.Interview, error) {
	interview, err := s.GetInterview(ctx, userID, interviewID)
	if err != nil {
		metrics.InterviewRequests.WithLabelValues("feedback", "error").Inc()
		return nil, err
	}
	if interview.Status != models.InterviewScheduled && interview.Status != models.InterviewCompleted {
		metrics.InterviewRequests.WithLabelValues("feedback", "wrong_state").Inc()
		return nil, apperrors.ConflictError(fmt.Sprintf("cannot submit feedback for an interview that is %s", interview.Status))
	}
	if interview.Feedback != nil {
		metrics.InterviewRequests.WithLabelValues("feedback", "duplicate").Inc()
		return nil, ErrFeedbackExists
	}

	feedback := &models.Feedback{
		Rating:              req.Rating,
		Strengths:           req.Strengths,
		AreasToImprove:      req.AreasToImprove,
		Notes:               req.Notes,
		RecommendationLevel: req.RecommendationLevel,
		SubmittedAt:         time.Now().UTC(),
	}
	if err := s.interviewRepo.SetFeedback(ctx, interviewID, feedback); err != nil {
		metrics.InterviewRequests.WithLabelValues("feedback", "error").Inc()
		return nil, err
	}

	logger.Info("Feedback submitted",
		zap.String("interview_id", interviewID),
		zap.Int("rating", req.Rating))
	metrics.InterviewRequests.WithLabelValues("feedback", "success").Inc()
	return s.interviewRepo.GetInterviewByID(ctx, interviewID)
}

// SearchCandidates filters the candidate pool by skill, preferred role,
// college or free text
func (s *InterviewerService) SearchCandidates(ctx context.Context, userID string, filter models.CandidateSearchFilter) ([]*models.User, error) {
	if _, err := s.getInterviewer(ctx, userID); err != nil {
		return nil, err
	}
	return s.userRepo.SearchCandidates(ctx, filter)
}

// GetCandidate returns a candidate's record for interviewer review
func (s *InterviewerService) GetCandidate(ctx context.Context, userID, candidateID string) (*models.User, error) {
	if _, err := s.getInterviewer(ctx, userID); err != nil {
		return nil, err
	}
	candidate, err := s.userRepo.GetUserByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if candidate.Role != models.RoleCandidate {
		return nil, ErrCandidateNotFound
	}
	return candidate, nil
}

// FeedbackHistory returns the candidate's completed interviews together with
// the feedback other interviewers left
func (s *InterviewerService) FeedbackHistory(ctx context.Context, userID, candidateID string) ([]*models.Interview, error) {
	if _, err := s.GetCandidate(ctx, userID, candidateID); err != nil {
		return nil, err
	}
	return s.interviewRepo.ListCompletedByCandidate(ctx, candidateID)
}

func (s *InterviewerService) invalidateDirectory() {
	if s.directory != nil {
		s.directory.Invalidate()
	}
}

func (s *InterviewerService) sendScheduledEmail(ctx context.Context, interview *models.Interview, scheduledAt time.Time) {
	triggerURL := s.config.EmailTriggers.InterviewScheduledTriggerURL
	if triggerURL == "" {
		return
	}

	candidate, err := s.userRepo.GetUserByID(ctx, interview.CandidateID)
	if err != nil {
		logger.Warn("Skipping schedule email, candidate lookup failed",
			zap.String("interview_id", interview.ID),
			zap.Error(err))
		return
	}

	trigger.CallAsyncWithPayload(triggerURL, map[string]string{
		"interviewId":     interview.ID,
		"candidateEmail":  candidate.Email,
		"interviewerName": interview.InterviewerName,
		"scheduledAt":     scheduledAt.UTC().Format(time.RFC3339),
	}, s.httpClient)
}
