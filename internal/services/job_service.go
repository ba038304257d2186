package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/repository"
	apperrors "github.com/algospace/algospace-api/pkg/errors"
	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/algospace/algospace-api/pkg/metrics"
	"go.uber.org/zap"
)

var ErrNotJobOwner = errors.New("job belongs to another user")

// JobService manages postings and the application funnel
type JobService struct {
	jobRepo  repository.JobRepository
	userRepo repository.UserRepository
}

func NewJobService(jobRepo repository.JobRepository, userRepo repository.UserRepository) *JobService {
	return &JobService{
		jobRepo:  jobRepo,
		userRepo: userRepo,
	}
}

// CreateJob opens a new posting owned by the caller
func (s *JobService) CreateJob(ctx context.Context, posterID string, req *models.CreateJobRequest) (*models.Job, error) {
	user, err := s.userRepo.GetUserByID(ctx, posterID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleInterviewer {
		return nil, ErrNotInterviewer
	}

	job, err := s.jobRepo.CreateJob(ctx, posterID, req)
	if err != nil {
		return nil, err
	}

	logger.Info("Job posted",
		zap.String("job_id", job.ID),
		zap.String("posted_by", posterID),
		zap.String("title", job.Title))
	return job, nil
}

// ListOwnJobs returns the postings the caller created
func (s *JobService) ListOwnJobs(ctx context.Context, posterID string) ([]*models.Job, error) {
	return s.jobRepo.ListJobsByPoster(ctx, posterID)
}

// ListAllJobs returns every active posting. For candidates each posting is
// annotated with their own application status so the frontend can disable
// the apply button.
func (s *JobService) ListAllJobs(ctx context.Context, userID string) ([]models.JobWithApplication, error) {
	jobs, err := s.jobRepo.ListActiveJobs(ctx)
	if err != nil {
		return nil, err
	}

	statusByJob := map[string]models.ApplicationStatus{}
	if userID != "" {
		applications, err := s.jobRepo.ListApplicationsByCandidate(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, a := range applications {
			statusByJob[a.JobID] = a.Status
		}
	}

	out := make([]models.JobWithApplication, 0, len(jobs))
	for _, job := range jobs {
		entry := models.JobWithApplication{Job: *job}
		if status, ok := statusByJob[job.ID]; ok {
			entry.ApplicationStatus = string(status)
		}
		out = append(out, entry)
	}
	return out, nil
}

// GetJob returns a single posting
func (s *JobService) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	return s.jobRepo.GetJobByID(ctx, jobID)
}

// ListApplications returns the applications for a posting owned by the caller
func (s *JobService) ListApplications(ctx context.Context, posterID, jobID string) ([]*models.JobApplication, error) {
	job, err := s.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.PostedBy != posterID {
		return nil, ErrNotJobOwner
	}
	return s.jobRepo.ListApplicationsForJob(ctx, jobID)
}

// UpdateApplicationStatus moves an application along the Applied,
// Shortlisted, Selected funnel. Rejected is reachable from any non-terminal
// status; other transitions must not skip stages.
func (s *JobService) UpdateApplicationStatus(ctx context.Context, posterID, applicationID string, target models.ApplicationStatus) (*models.JobApplication, error) {
	application, err := s.jobRepo.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobRepo.GetJobByID(ctx, application.JobID)
	if err != nil {
		return nil, err
	}
	if job.PostedBy != posterID {
		return nil, ErrNotJobOwner
	}

	if !application.Status.CanTransitionTo(target) {
		return nil, apperrors.ConflictError(fmt.Sprintf("cannot move application from %s to %s", application.Status, target))
	}

	if err := s.jobRepo.UpdateApplicationStatus(ctx, applicationID, target); err != nil {
		return nil, err
	}

	logger.Info("Application status updated",
		zap.String("application_id", applicationID),
		zap.String("from", string(application.Status)),
		zap.String("to", string(target)))
	metrics.JobApplications.WithLabelValues("status_change").Inc()

	return s.jobRepo.GetApplicationByID(ctx, applicationID)
}
