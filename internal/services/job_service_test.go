package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/services"
	apperrors "github.com/algospace/algospace-api/pkg/errors"
)

func TestCreateJob_RequiresInterviewer(t *testing.T) {
	jobRepo := new(MockJobRepository)
	userRepo := new(MockUserRepository)
	svc := services.NewJobService(jobRepo, userRepo)

	userRepo.On("GetUserByID", mock.Anything, "cand-1").Return(&models.User{
		ID:   "cand-1",
		Role: models.RoleCandidate,
	}, nil)

	_, err := svc.CreateJob(context.Background(), "cand-1", &models.CreateJobRequest{
		CompanyName:    "Initech",
		Title:          "Backend Engineer",
		Description:    "Build things",
		RequiredSkills: []string{"Go"},
	})

	assert.ErrorIs(t, err, services.ErrNotInterviewer)
	jobRepo.AssertNotCalled(t, "CreateJob", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateJob_Success(t *testing.T) {
	jobRepo := new(MockJobRepository)
	userRepo := new(MockUserRepository)
	svc := services.NewJobService(jobRepo, userRepo)

	req := &models.CreateJobRequest{
		CompanyName:    "Initech",
		Title:          "Backend Engineer",
		Description:    "Build things",
		RequiredSkills: []string{"Go", "Python"},
	}

	userRepo.On("GetUserByID", mock.Anything, "int-1").Return(&models.User{
		ID:   "int-1",
		Role: models.RoleInterviewer,
	}, nil)
	jobRepo.On("CreateJob", mock.Anything, "int-1", req).Return(&models.Job{
		ID:       "job-1",
		PostedBy: "int-1",
		Title:    "Backend Engineer",
		IsActive: true,
	}, nil)

	job, err := svc.CreateJob(context.Background(), "int-1", req)

	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
}

func TestListAllJobs_AnnotatesApplications(t *testing.T) {
	jobRepo := new(MockJobRepository)
	userRepo := new(MockUserRepository)
	svc := services.NewJobService(jobRepo, userRepo)

	jobRepo.On("ListActiveJobs", mock.Anything).Return([]*models.Job{
		{ID: "job-1", Title: "Backend Engineer"},
		{ID: "job-2", Title: "Frontend Engineer"},
	}, nil)
	jobRepo.On("ListApplicationsByCandidate", mock.Anything, "cand-1").Return([]*models.JobApplication{
		{ID: "app-1", JobID: "job-2", CandidateID: "cand-1", Status: models.ApplicationShortlisted},
	}, nil)

	jobs, err := svc.ListAllJobs(context.Background(), "cand-1")

	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Empty(t, jobs[0].ApplicationStatus)
	assert.Equal(t, "Shortlisted", jobs[1].ApplicationStatus)
}

func TestListApplications_OwnerOnly(t *testing.T) {
	jobRepo := new(MockJobRepository)
	userRepo := new(MockUserRepository)
	svc := services.NewJobService(jobRepo, userRepo)

	jobRepo.On("GetJobByID", mock.Anything, "job-1").Return(&models.Job{
		ID:       "job-1",
		PostedBy: "int-1",
	}, nil)

	_, err := svc.ListApplications(context.Background(), "int-2", "job-1")

	assert.ErrorIs(t, err, services.ErrNotJobOwner)
	jobRepo.AssertNotCalled(t, "ListApplicationsForJob", mock.Anything, mock.Anything)
}

func TestUpdateApplicationStatus_Success(t *testing.T) {
	jobRepo := new(MockJobRepository)
	userRepo := new(MockUserRepository)
	svc := services.NewJobService(jobRepo, userRepo)

	jobRepo.On("GetApplicationByID", mock.Anything, "app-1").Return(&models.JobApplication{
		ID:     "app-1",
		JobID:  "job-1",
		Status: models.ApplicationApplied,
	}, nil).Once()
	jobRepo.On("GetJobByID", mock.Anything, "job-1").Return(&models.Job{
		ID:       "job-1",
		PostedBy: "int-1",
	}, nil)
	jobRepo.On("UpdateApplicationStatus", mock.Anything, "app-1", models.ApplicationShortlisted).Return(nil)
	jobRepo.On("GetApplicationByID", mock.Anything, "app-1").Return(&models.JobApplication{
		ID:     "app-1",
		JobID:  "job-1",
		Status: models.ApplicationShortlisted,
	}, nil).Once()

	application, err := svc.UpdateApplicationStatus(context.Background(), "int-1", "app-1", models.ApplicationShortlisted)

	require.NoError(t, err)
	assert.Equal(t, models.ApplicationShortlisted, application.Status)
	jobRepo.AssertExpectations(t)
}

func TestUpdateApplicationStatus_SkipsStage(t *testing.T) {
	jobRepo := new(MockJobRepository)
	userRepo := new(MockUserRepository)
	svc := services.NewJobService(jobRepo, userRepo)

	jobRepo.On("GetApplicationByID", mock.Anything, "app-1").Return(&models.JobApplication{
		ID:     "app-1",
		JobID:  "job-1",
		Status: models.ApplicationApplied,
	}, nil)
	jobRepo.On("GetJobByID", mock.Anything, "job-1").Return(&models.Job{
		ID:       "job-1",
		PostedBy: "int-1",
	}, nil)

	_, err := svc.UpdateApplicationStatus(context.Background(), "int-1", "app-1", models.ApplicationSelected)

	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	jobRepo.AssertNotCalled(t, "UpdateApplicationStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateApplicationStatus_NotOwner(t *testing.T) {
	jobRepo := new(MockJobRepository)
	userRepo := new(MockUserRepository)
	svc := services.NewJobService(jobRepo, userRepo)

	jobRepo.On("GetApplicationByID", mock.Anything, "app-1").Return(&models.JobApplication{
		ID:     "app-1",
		JobID:  "job-1",
		Status: models.ApplicationApplied,
	}, nil)
	jobRepo.On("GetJobByID", mock.Anything, "job-1").Return(&models.Job{
		ID:       "job-1",
		PostedBy: "int-1",
	}, nil)

	_, err := svc.UpdateApplicationStatus(context.Background(), "int-9", "app-1", models.ApplicationShortlisted)

	assert.ErrorIs(t, err, services.ErrNotJobOwner)
}
