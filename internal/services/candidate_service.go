package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

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
	"github.com/algospace/algospace-api/pkg/trigger"
	"go.uber.org/zap"
)

const maxResumeSizeBytes = 5 * 1024 * 1024

var (
	ErrNotCandidate       = errors.New("candidate account required")
	ErrResumeTooLarge     = errors.New("resume exceeds the 5MB size limit")
	ErrNoResume           = errors.New("no resume on file")
	ErrInterviewerUnknown = errors.New("interviewer not found")
)

// CandidateService covers the candidate-facing operations: profile upkeep,
// resume storage, the interviewer directory, interview requests and job
// applications.
type CandidateService struct {
	userRepo      repository.UserRepository
	interviewRepo repository.InterviewRepository
	jobRepo       repository.JobRepository
	directory     *cache.DirectoryCache
	storage       *objstore.StorageClient
	config        *config.Config
	httpClient    httpclient.Client
}

func NewCandidateService(
	userRepo repository.UserRepository,
	interviewRepo repository.InterviewRepository,
	jobRepo repository.JobRepository,
	directory *cache.DirectoryCache,
	storage *objstore.StorageClient,
	cfg *config.Config,
	httpClient httpclient.Client,
) *CandidateService {
	return &CandidateService{
		userRepo:      userRepo,
		interviewRepo: interviewRepo,
		jobRepo:       jobRepo,
		directory:     directory,
		storage:       storage,
		config:        cfg,
		httpClient:    httpClient,
	}
}

func (s *CandidateService) getCandidate(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleCandidate {
		return nil, ErrNotCandidate
	}
	return user, nil
}

// GetProfile returns the full candidate record for the authenticated user
func (s *CandidateService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.getCandidate(ctx, userID)
}

// UpdateProfile merges the request into the stored candidate profile. Empty
// fields keep their current values.
func (s *CandidateService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateCandidateProfileRequest) (*models.User, error) {
	user, err := s.getCandidate(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := user.CandidateProfile
	if profile == nil {
		profile = &models.CandidateProfile{}
	}
	if req.Phone != "" {
		profile.Phone = req.Phone
	}
	if req.Gender != "" {
		profile.Gender = req.Gender
	}
	if req.College != "" {
		profile.College = req.College
	}
	if req.GraduationYear != 0 {
		profile.GraduationYear = req.GraduationYear
	}

	if err := s.userRepo.UpdateCandidateProfile(ctx, userID, profile); err != nil {
		metrics.ProfileUpdates.WithLabelValues("candidate", "error").Inc()
		return nil, err
	}
	if req.FullName != "" && req.FullName != user.FullName {
		if err := s.userRepo.UpdateFullName(ctx, userID, req.FullName); err != nil {
			metrics.ProfileUpdates.WithLabelValues("candidate", "error").Inc()
			return nil, err
		}
	}

	metrics.ProfileUpdates.WithLabelValues("candidate", "success").Inc()
	return s.userRepo.GetUserByID(ctx, userID)
}

// UpdateSkills replaces the skill list after checking every entry against the
// supported set
func (s *CandidateService) UpdateSkills(ctx context.Context, userID string, skills []string) (*models.User, error) {
	if invalid := models.ValidateSkills(skills); len(invalid) > 0 {
		return nil, apperrors.InvalidInputError("skills", "unsupported: "+strings.Join(invalid, ", "))
	}
	return s.updateCandidateField(ctx, userID, func(p *models.CandidateProfile) {
		p.Skills = skills
	})
}

// UpdatePreferredRoles replaces the preferred role list
func (s *CandidateService) UpdatePreferredRoles(ctx context.Context, userID string, roles []string) (*models.User, error) {
	if invalid := models.ValidatePreferredRoles(roles); len(invalid) > 0 {
		return nil, apperrors.InvalidInputError("preferredRoles", "unsupported: "+strings.Join(invalid, ", "))
	}
	return s.updateCandidateField(ctx, userID, func(p *models.CandidateProfile) {
		p.PreferredRoles = roles
	})
}

// UpdateCodingProfiles replaces the coding profile links
func (s *CandidateService) UpdateCodingProfiles(ctx context.Context, userID string, profiles models.CodingProfiles) (*models.User, error) {
	return s.updateCandidateField(ctx, userID, func(p *models.CandidateProfile) {
		p.CodingProfiles = profiles
	})
}

func (s *CandidateService) updateCandidateField(ctx context.Context, userID string, apply func(*models.CandidateProfile)) (*models.User, error) {
	user, err := s.getCandidate(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.CandidateProfile
	if profile == nil {
		profile = &models.CandidateProfile{}
	}
	apply(profile)

	if err := s.userRepo.UpdateCandidateProfile(ctx, userID, profile); err != nil {
		metrics.ProfileUpdates.WithLabelValues("candidate", "error").Inc()
		return nil, err
	}
	metrics.ProfileUpdates.WithLabelValues("candidate", "success").Inc()
	return s.userRepo.GetUserByID(ctx, userID)
}

// UploadResume stores the document in object storage and records its public
// URL on the profile. Re-uploading replaces the previous file.
func (s *CandidateService) UploadResume(ctx context.Context, userID string, req *models.UploadResumeRequest) (string, error) {
	user, err := s.getCandidate(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := s.storage.ValidateResumeType(req.ContentType); err != nil {
		metrics.ResumeUploads.WithLabelValues("invalid_type").Inc()
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		metrics.ResumeUploads.WithLabelValues("invalid_encoding").Inc()
		return "", apperrors.InvalidInputError("data", "must be base64 encoded")
	}
	if len(data) > maxResumeSizeBytes {
		metrics.ResumeUploads.WithLabelValues("too_large").Inc()
		return "", ErrResumeTooLarge
	}

	key := fmt.Sprintf("resumes/%s%s", userID, path.Ext(req.FileName))
	url, err := retry.DoWithResult(ctx, retry.StorageConfig(), "upload_resume", func() (string, error) {
		return s.storage.UploadResume(ctx, data, key, req.ContentType)
	})
	if err != nil {
		logger.Error("Resume upload failed",
			zap.String("user_id", userID),
			zap.Error(err))
		metrics.ResumeUploads.WithLabelValues("error").Inc()
		return "", apperrors.InternalError("failed to store resume")
	}

	profile := user.CandidateProfile
	if profile == nil {
		profile = &models.CandidateProfile{}
	}
	profile.ResumeURL = url
	if err := s.userRepo.UpdateCandidateProfile(ctx, userID, profile); err != nil {
		metrics.ResumeUploads.WithLabelValues("error").Inc()
		return "", err
	}

	logger.Info("Resume uploaded",
		zap.String("user_id", userID),
		zap.String("key", key))
	metrics.ResumeUploads.WithLabelValues("success").Inc()
	return url, nil
}

// DeleteResume removes the stored document and clears the profile link
func (s *CandidateService) DeleteResume(ctx context.Context, userID string) error {
	user, err := s.getCandidate(ctx, userID)
	if err != nil {
		return err
	}
	if user.CandidateProfile == nil || user.CandidateProfile.ResumeURL == "" {
		return ErrNoResume
	}

	key := storageKeyFromURL(user.CandidateProfile.ResumeURL)
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		logger.Warn("Failed to delete resume object, clearing link anyway",
			zap.String("user_id", userID),
			zap.String("key", key),
			zap.Error(err))
	}

	profile := user.CandidateProfile
	profile.ResumeURL = ""
	return s.userRepo.UpdateCandidateProfile(ctx, userID, profile)
}

// UploadPhoto stores a profile photo and records its URL
func (s *CandidateService) UploadPhoto(ctx context.Context, userID string, req *models.UploadPhotoRequest) (string, error) {
	user, err := s.getCandidate(ctx, userID)
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

	profile := user.CandidateProfile
	if profile == nil {
		profile = &models.CandidateProfile{}
	}
	profile.PhotoURL = url
	if err := s.userRepo.UpdateCandidateProfile(ctx, userID, profile); err != nil {
		return "", err
	}
	return url, nil
}

// ListInterviewers returns the public directory of active interviewers,
// served from cache unless the cache is disabled.
func (s *CandidateService) ListInterviewers(ctx context.Context) ([]models.PublicInterviewer, error) {
	var (
		users []*models.User
		err   error
	)
	if s.directory != nil {
		users, err = s.directory.Get()
	} else {
		users, err = s.userRepo.ListInterviewers(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]models.PublicInterviewer, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToPublicInterviewer())
	}
	return out, nil
}

// RequestInterview creates a pending interview with the chosen interviewer
func (s *CandidateService) RequestInterview(ctx context.Context, candidateID string, req *models.RequestInterviewRequest) (*models.Interview, error) {
	candidate, err := s.getCandidate(ctx, candidateID)
	if err != nil {
		metrics.InterviewRequests.WithLabelValues("request", "error").Inc()
		return nil, err
	}

	interviewer, err := s.lookupInterviewer(ctx, req.InterviewerID)
	if err != nil {
		metrics.InterviewRequests.WithLabelValues("request", "interviewer_not_found").Inc()
		return nil, ErrInterviewerUnknown
	}

	interview, err := s.interviewRepo.CreateInterview(ctx, &models.Interview{
		CandidateID:   candidateID,
		InterviewerID: interviewer.ID,
		Status:        models.InterviewPending,
		Topic:         req.Topic,
		Message:       req.Message,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
	})
	if err != nil {
		metrics.InterviewRequests.WithLabelValues("request", "error").Inc()
		return nil, err
	}

	if triggerURL := s.config.EmailTriggers.InterviewRequestedTriggerURL; triggerURL != "" {
		trigger.CallAsyncWithPayload(triggerURL, map[string]string{
			"interviewId":      interview.ID,
			"candidateName":    candidate.FullName,
			"interviewerEmail": interviewer.Email,
			"topic":            req.Topic,
		}, s.httpClient)
	}

	logger.Info("Interview requested",
		zap.String("interview_id", interview.ID),
		zap.String("candidate_id", candidateID),
		zap.String("interviewer_id", interviewer.ID))
	metrics.InterviewRequests.WithLabelValues("request", "success").Inc()
	return interview, nil
}

func (s *CandidateService) lookupInterviewer(ctx context.Context, id string) (*models.User, error) {
	if s.directory != nil {
		if user, err := s.directory.GetByID(id); err == nil {
			return user, nil
		}
	}
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleInterviewer || user.RegistrationState != models.RegistrationActive {
		return nil, apperrors.NotFoundError("interviewer")
	}
	return user, nil
}

// ListInterviews returns every interview the candidate is part of
func (s *CandidateService) ListInterviews(ctx context.Context, candidateID string) ([]*models.Interview, error) {
	if _, err := s.getCandidate(ctx, candidateID); err != nil {
		return nil, err
	}
	return s.interviewRepo.ListByCandidate(ctx, candidateID)
}

// CancelInterview cancels a pending or scheduled interview owned by the
// candidate. Completed and already cancelled interviews cannot be cancelled.
func (s *CandidateService) CancelInterview(ctx context.Context, candidateID, interviewID, reason string) error {
	interview, err := s.interviewRepo.GetInterviewByID(ctx, interviewID)
	if err != nil {
		metrics.InterviewRequests.WithLabelValues("cancel", "not_found").Inc()
		return err
	}
	if interview.CandidateID != candidateID {
		metrics.InterviewRequests.WithLabelValues("cancel", "forbidden").Inc()
		return apperrors.AccessDeniedError("interview belongs to another candidate")
	}
	if !interview.Status.CanCancel() {
		metrics.InterviewRequests.WithLabelValues("cancel", "wrong_state").Inc()
		return apperrors.ConflictError(fmt.Sprintf("cannot cancel an interview that is %s", interview.Status))
	}

	if err := s.interviewRepo.UpdateStatus(ctx, interviewID, models.InterviewCancelled, reason); err != nil {
		metrics.InterviewRequests.WithLabelValues("cancel", "error").Inc()
		return err
	}

	logger.Info("Interview cancelled",
		zap.String("interview_id", interviewID),
		zap.String("candidate_id", candidateID))
	metrics.InterviewRequests.WithLabelValues("cancel", "success").Inc()
	return nil
}

// ApplyToJob creates an application against an active posting. Duplicate
// applications surface as conflicts.
func (s *CandidateService) ApplyToJob(ctx context.Context, candidateID, jobID string) (*models.JobApplication, error) {
	candidate, err := s.getCandidate(ctx, candidateID)
	if err != nil {
		metrics.JobApplications.WithLabelValues("error").Inc()
		return nil, err
	}

	job, err := s.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		metrics.JobApplications.WithLabelValues("not_found").Inc()
		return nil, err
	}
	if !job.IsActive {
		metrics.JobApplications.WithLabelValues("inactive").Inc()
		return nil, apperrors.ConflictError("job is no longer accepting applications")
	}

	application, err := s.jobRepo.CreateApplication(ctx, jobID, candidateID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			metrics.JobApplications.WithLabelValues("duplicate").Inc()
		} else {
			metrics.JobApplications.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	if triggerURL := s.config.EmailTriggers.ApplicationReceivedTriggerURL; triggerURL != "" {
		trigger.CallAsyncWithPayload(triggerURL, map[string]string{
			"applicationId": application.ID,
			"jobId":         jobID,
			"jobTitle":      job.Title,
			"candidateName": candidate.FullName,
		}, s.httpClient)
	}

	logger.Info("Job application created",
		zap.String("application_id", application.ID),
		zap.String("job_id", jobID),
		zap.String("candidate_id", candidateID))
	metrics.JobApplications.WithLabelValues("success").Inc()
	return application, nil
}

// storageKeyFromURL strips the endpoint and bucket prefix from a public
// object URL, leaving the object key.
func storageKeyFromURL(url string) string {
	parts := strings.SplitN(url, "/", 5)
	if len(parts) == 5 {
		return parts[4]
	}
	return url
}
