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

func newCandidateService(userRepo *MockUserRepository, interviewRepo *MockInterviewRepository, jobRepo *MockJobRepository) *services.CandidateService {
	return services.NewCandidateService(userRepo, interviewRepo, jobRepo, nil, nil, testConfig(), &MockHTTPClient{})
}

func expectCandidate(userRepo *MockUserRepository, id string) {
	userRepo.On("GetUserByID", mock.Anything, id).Return(&models.User{
		ID:                id,
		FullName:          "Casey Candidate",
		Role:              models.RoleCandidate,
		RegistrationState: models.RegistrationActive,
		CandidateProfile:  &models.CandidateProfile{},
	}, nil)
}

func TestGetProfile_RejectsInterviewer(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newCandidateService(userRepo, new(MockInterviewRepository), new(MockJobRepository))

	userRepo.On("GetUserByID", mock.Anything, "int-1").Return(&models.User{
		ID:   "int-1",
		Role: models.RoleInterviewer,
	}, nil)

	_, err := svc.GetProfile(context.Background(), "int-1")

	assert.ErrorIs(t, err, services.ErrNotCandidate)
}

func TestUpdateSkills_Unsupported(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newCandidateService(userRepo, new(MockInterviewRepository), new(MockJobRepository))

	_, err := svc.UpdateSkills(context.Background(), "cand-1", []string{"Go", "Fortran"})

	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "Fortran")
	userRepo.AssertNotCalled(t, "UpdateCandidateProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSkills_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newCandidateService(userRepo, new(MockInterviewRepository), new(MockJobRepository))

	expectCandidate(userRepo, "cand-1")
	userRepo.On("UpdateCandidateProfile", mock.Anything, "cand-1", mock.MatchedBy(func(p *models.CandidateProfile) bool {
		return len(p.Skills) == 2 && p.Skills[0] == "Go"
	})).Return(nil)

	_, err := svc.UpdateSkills(context.Background(), "cand-1", []string{"Go", "Python"})

	require.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestRequestInterview_UnknownInterviewer(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newCandidateService(userRepo, interviewRepo, new(MockJobRepository))

	expectCandidate(userRepo, "cand-1")
	userRepo.On("GetUserByID", mock.Anything, "ghost-1").Return(nil, apperrors.NotFoundError("user"))

	_, err := svc.RequestInterview(context.Background(), "cand-1", &models.RequestInterviewRequest{
		InterviewerID: "ghost-1",
	})

	assert.ErrorIs(t, err, services.ErrInterviewerUnknown)
	interviewRepo.AssertNotCalled(t, "CreateInterview", mock.Anything, mock.Anything)
}

func TestRequestInterview_RejectsInactiveInterviewer(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newCandidateService(userRepo, interviewRepo, new(MockJobRepository))

	expectCandidate(userRepo, "cand-1")
	userRepo.On("GetUserByID", mock.Anything, "int-1").Return(&models.User{
		ID:                "int-1",
		Role:              models.RoleInterviewer,
		RegistrationState: models.RegistrationPendingProfile,
	}, nil)

	_, err := svc.RequestInterview(context.Background(), "cand-1", &models.RequestInterviewRequest{
		InterviewerID: "int-1",
	})

	assert.ErrorIs(t, err, services.ErrInterviewerUnknown)
}

func TestRequestInterview_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newCandidateService(userRepo, interviewRepo, new(MockJobRepository))

	expectCandidate(userRepo, "cand-1")
	userRepo.On("GetUserByID", mock.Anything, "int-1").Return(&models.User{
		ID:                "int-1",
		Email:             "ivy@example.com",
		Role:              models.RoleInterviewer,
		RegistrationState: models.RegistrationActive,
	}, nil)
	interviewRepo.On("CreateInterview", mock.Anything, mock.MatchedBy(func(iv *models.Interview) bool {
		return iv.CandidateID == "cand-1" &&
			iv.InterviewerID == "int-1" &&
			iv.Status == models.InterviewPending &&
			iv.Topic == "Graphs" &&
			iv.PreferredDate == "2026-09-14" &&
			iv.PreferredTime == "15:30"
	})).Return(&models.Interview{
		ID:            "iv-1",
		CandidateID:   "cand-1",
		InterviewerID: "int-1",
		Status:        models.InterviewPending,
	}, nil)

	interview, err := svc.RequestInterview(context.Background(), "cand-1", &models.RequestInterviewRequest{
		InterviewerID: "int-1",
		Topic:         "Graphs",
		PreferredDate: "2026-09-14",
		PreferredTime: "15:30",
	})

	require.NoError(t, err)
	assert.Equal(t, models.InterviewPending, interview.Status)
	interviewRepo.AssertExpectations(t)
}

func TestCancelInterview_WrongOwner(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newCandidateService(userRepo, interviewRepo, new(MockJobRepository))

	interviewRepo.On("GetInterviewByID", mock.Anything, "iv-1").Return(&models.Interview{
		ID:          "iv-1",
		CandidateID: "cand-1",
		Status:      models.InterviewPending,
	}, nil)

	err := svc.CancelInterview(context.Background(), "cand-2", "iv-1", "")

	assert.True(t, apperrors.Is(err, apperrors.ErrAccessDenied))
}

func TestCancelInterview_TerminalState(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newCandidateService(userRepo, interviewRepo, new(MockJobRepository))

	interviewRepo.On("GetInterviewByID", mock.Anything, "iv-1").Return(&models.Interview{
		ID:          "iv-1",
		CandidateID: "cand-1",
		Status:      models.InterviewCompleted,
	}, nil)

	err := svc.CancelInterview(context.Background(), "cand-1", "iv-1", "")

	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	interviewRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelInterview_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newCandidateService(userRepo, interviewRepo, new(MockJobRepository))

	interviewRepo.On("GetInterviewByID", mock.Anything, "iv-1").Return(&models.Interview{
		ID:          "iv-1",
		CandidateID: "cand-1",
		Status:      models.InterviewScheduled,
	}, nil)
	interviewRepo.On("UpdateStatus", mock.Anything, "iv-1", models.InterviewCancelled, "found a job").Return(nil)

	err := svc.CancelInterview(context.Background(), "cand-1", "iv-1", "found a job")

	require.NoError(t, err)
	interviewRepo.AssertExpectations(t)
}

func TestApplyToJob_InactivePosting(t *testing.T) {
	userRepo := new(MockUserRepository)
	jobRepo := new(MockJobRepository)
	svc := newCandidateService(userRepo, new(MockInterviewRepository), jobRepo)

	expectCandidate(userRepo, "cand-1")
	jobRepo.On("GetJobByID", mock.Anything, "job-1").Return(&models.Job{
		ID:       "job-1",
		IsActive: false,
	}, nil)

	_, err := svc.ApplyToJob(context.Background(), "cand-1", "job-1")

	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	jobRepo.AssertNotCalled(t, "CreateApplication", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyToJob_Duplicate(t *testing.T) {
	userRepo := new(MockUserRepository)
	jobRepo := new(MockJobRepository)
	svc := newCandidateService(userRepo, new(MockInterviewRepository), jobRepo)

	expectCandidate(userRepo, "cand-1")
	jobRepo.On("GetJobByID", mock.Anything, "job-1").Return(&models.Job{
		ID:       "job-1",
		IsActive: true,
	}, nil)
	jobRepo.On("CreateApplication", mock.Anything, "job-1", "cand-1").
		Return(nil, apperrors.ConflictError("already applied to this job"))

	_, err := svc.ApplyToJob(context.Background(), "cand-1", "job-1")

	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestApplyToJob_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	jobRepo := new(MockJobRepository)
	svc := newCandidateService(userRepo, new(MockInterviewRepository), jobRepo)

	expectCandidate(userRepo, "cand-1")
	jobRepo.On("GetJobByID", mock.Anything, "job-1").Return(&models.Job{
		ID:       "job-1",
		Title:    "Backend Engineer",
		IsActive: true,
	}, nil)
	jobRepo.On("CreateApplication", mock.Anything, "job-1", "cand-1").Return(&models.JobApplication{
		ID:          "app-1",
		JobID:       "job-1",
		CandidateID: "cand-1",
		Status:      models.ApplicationApplied,
	}, nil)

	application, err := svc.ApplyToJob(context.Background(), "cand-1", "job-1")

	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApplied, application.Status)
}

func TestListInterviewers_FallsBackToRepo(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newCandidateService(userRepo, new(MockInterviewRepository), new(MockJobRepository))

	userRepo.On("ListInterviewers", mock.Anything).Return([]*models.User{
		{
			ID:       "int-1",
			FullName: "Ivy Interviewer",
			Role:     models.RoleInterviewer,
			InterviewerProfile: &models.InterviewerProfile{
				CurrentCompany: "Initech",
				Expertise:      []string{"System Design"},
			},
		},
	}, nil)

	listing, err := svc.ListInterviewers(context.Background())

	require.NoError(t, err)
	require.Len(t, listing, 1)
	assert.Equal(t, "Ivy Interviewer", listing[0].FullName)
	assert.Equal(t, "Initech", listing[0].CurrentCompany)
}
