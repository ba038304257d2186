package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/services"
	apperrors "github.com/algospace/algospace-api/pkg/errors"
)

func newInterviewerService(userRepo *MockUserRepository, interviewRepo *MockInterviewRepository) *services.InterviewerService {
	return services.NewInterviewerService(userRepo, interviewRepo, nil, nil, testConfig(), &MockHTTPClient{})
}

func expectInterviewer(userRepo *MockUserRepository, id string) {
	userRepo.On("GetUserByID", mock.Anything, id).Return(&models.User{
		ID:   id,
		Role: models.RoleInterviewer,
	}, nil)
}

func TestApproveInterview_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newInterviewerService(userRepo, interviewRepo)

	scheduledAt := time.Now().Add(48 * time.Hour)
	pending := &models.Interview{
		ID:            "iv-1",
		CandidateID:   "cand-1",
		InterviewerID: "int-1",
		Status:        models.InterviewPending,
		CandidateName: "Иван Петров",
	}
	scheduled := &models.Interview{
		ID:            "iv-1",
		CandidateID:   "cand-1",
		InterviewerID: "int-1",
		Status:        models.InterviewScheduled,
		ScheduledAt:   &scheduledAt,
		RoomSlug:      "ivan-petrov-abc12345",
	}

	interviewRepo.On("GetInterviewByID", mock.Anything, "iv-1").Return(pending, nil).Once()
	interviewRepo.On("Schedule", mock.Anything, "iv-1", scheduledAt, mock.MatchedBy(func(roomSlug string) bool {
		return len(roomSlug) > 0
	})).Return(nil)
	interviewRepo.On("GetInterviewByID", mock.Anything, "iv-1").Return(scheduled, nil).Once()

	interview, err := svc.ApproveInterview(context.Background(), "int-1", "iv-1", &models.ScheduleInterviewRequest{
		ScheduledAt: scheduledAt,
	})

	require.NoError(t, err)
	assert.Equal(t, models.InterviewScheduled, interview.Status)
	assert.NotEmpty(t, interview.RoomSlug)
	interviewRepo.AssertExpectations(t)
}

func TestApproveInterview_NotPending(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newInterviewerService(userRepo, interviewRepo)

	interviewRepo.On("GetInterviewByID", mock.Anything, "iv-1").Return(&models.Interview{
		ID:            "iv-1",
		InterviewerID: "int-1",
		Status:        models.InterviewScheduled,
	}, nil)

	_, err := svc.ApproveInterview(context.Background(), "int-1", "iv-1", &models.ScheduleInterviewRequest{
		ScheduledAt: time.Now().Add(time.Hour),
	})

	assert.ErrorIs(t, err, services.ErrInterviewNotPending)
}

func TestApproveInterview_PastTime(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newInterviewerService(userRepo, interviewRepo)

	interviewRepo.On("GetInterviewByID", mock.Anything, "iv-1").Return(&models.Interview{
		ID:            "iv-1",
		InterviewerID: "int-1",
		Status:        models.InterviewPending,
	}, nil)

	_, err := svc.ApproveInterview(context.Background(), "int-1", "iv-1", &models.ScheduleInterviewRequest{
		ScheduledAt: time.Now().Add(-time.Hour),
	})

	assert.ErrorIs(t, err, services.ErrScheduledInPast)
	interviewRepo.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetInterview_WrongOwner(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newInterviewerService(userRepo, interviewRepo)

	interviewRepo.On("GetInterviewByID", mock.Anything, "iv-1").Return(&models.Interview{
		ID:            "iv-1",
		InterviewerID: "int-1",
	}, nil)

	_, err := svc.GetInterview(context.Background(), "int-2", "iv-1")

	assert.True(t, apperrors.Is(err, apperrors.ErrAccessDenied))
}

func TestRejectInterview(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newInterviewerService(userRepo, interviewRepo)

	interviewRepo.On("GetInterviewByID", mock.Anything, "iv-1").Return(&models.Interview{
		ID:            "iv-1",
		InterviewerID: "int-1",
		Status:        models.InterviewPending,
	}, nil)
	interviewRepo.On("UpdateStatus", mock.Anything, "iv-1", models.InterviewRejected, "topic outside my expertise").Return(nil)

	err := svc.RejectInterview(context.Background(), "int-1", "iv-1", "topic outside my expertise")

	require.NoError(t, err)
	interviewRepo.AssertExpectations(t)
}

func TestSubmitFeedback_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newInterviewerService(userRepo, interviewRepo)

	completed := &models.Interview{
		ID:            "iv-1",
		InterviewerID: "int-1",
		Status:        models.InterviewCompleted,
	}
	interviewRepo.On("GetInterviewByID", mock.Anything, "iv-1").Return(completed, nil)
	interviewRepo.On("SetFeedback", mock.Anything, "iv-1", mock.MatchedBy(func(f *models.Feedback) bool {
		return f.Rating == 4 && f.RecommendationLevel == "yes" && !f.SubmittedAt.IsZero()
	})).Return(nil)

	_, err := svc.SubmitFeedback(context.Background(), "int-1", "iv-1", &models.SubmitFeedbackRequest{
		Rating:              4,
		Strengths:           "Solid fundamentals",
		RecommendationLevel: "yes",
	})

	require.NoError(t, err)
	interviewRepo.AssertExpectations(t)
}

func TestSubmitFeedback_AlreadySubmitted(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newInterviewerService(userRepo, interviewRepo)

	interviewRepo.On("GetInterviewByID", mock.Anything, "iv-1").Return(&models.Interview{
		ID:            "iv-1",
		InterviewerID: "int-1",
		Status:        models.InterviewCompleted,
		Feedback:      &models.Feedback{Rating: 3, RecommendationLevel: "maybe"},
	}, nil)

	_, err := svc.SubmitFeedback(context.Background(), "int-1", "iv-1", &models.SubmitFeedbackRequest{
		Rating:              5,
		RecommendationLevel: "strong_yes",
	})

	assert.ErrorIs(t, err, services.ErrFeedbackExists)
	interviewRepo.AssertNotCalled(t, "SetFeedback", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitFeedback_WrongState(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newInterviewerService(userRepo, interviewRepo)

	interviewRepo.On("GetInterviewByID", mock.Anything, "iv-1").Return(&models.Interview{
		ID:            "iv-1",
		InterviewerID: "int-1",
		Status:        models.InterviewPending,
	}, nil)

	_, err := svc.SubmitFeedback(context.Background(), "int-1", "iv-1", &models.SubmitFeedbackRequest{
		Rating:              5,
		RecommendationLevel: "yes",
	})

	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestGetCandidate_NotACandidate(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newInterviewerService(userRepo, interviewRepo)

	expectInterviewer(userRepo, "int-1")
	userRepo.On("GetUserByID", mock.Anything, "int-2").Return(&models.User{
		ID:   "int-2",
		Role: models.RoleInterviewer,
	}, nil)

	_, err := svc.GetCandidate(context.Background(), "int-1", "int-2")

	assert.ErrorIs(t, err, services.ErrCandidateNotFound)
}

func TestUpdateAvailability_RejectsBadSlot(t *testing.T) {
	userRepo := new(MockUserRepository)
	interviewRepo := new(MockInterviewRepository)
	svc := newInterviewerService(userRepo, interviewRepo)

	_, err := svc.UpdateAvailability(context.Background(), "int-1", []models.AvailabilitySlot{
		{Day: "Monday", StartTime: "18:00", EndTime: "17:00"},
	})

	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	userRepo.AssertNotCalled(t, "UpdateInterviewerProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestBlockDate_AddsDateSorted(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newInterviewerService(userRepo, new(MockInterviewRepository))

	userRepo.On("GetUserByID", mock.Anything, "int-1").Return(&models.User{
		ID:   "int-1",
		Role: models.RoleInterviewer,
		InterviewerProfile: &models.InterviewerProfile{
			BlockedDates: []string{"2026-09-20"},
		},
	}, nil)
	userRepo.On("UpdateInterviewerProfile", mock.Anything, "int-1", mock.MatchedBy(func(p *models.InterviewerProfile) bool {
		return len(p.BlockedDates) == 2 &&
			p.BlockedDates[0] == "2026-09-05" &&
			p.BlockedDates[1] == "2026-09-20"
	})).Return(nil)

	schedule, err := svc.BlockDate(context.Background(), "int-1", "2026-09-05")

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-09-05", "2026-09-20"}, schedule.BlockedDates)
	userRepo.AssertExpectations(t)
}

func TestBlockDate_AlreadyBlocked(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newInterviewerService(userRepo, new(MockInterviewRepository))

	userRepo.On("GetUserByID", mock.Anything, "int-1").Return(&models.User{
		ID:   "int-1",
		Role: models.RoleInterviewer,
		InterviewerProfile: &models.InterviewerProfile{
			BlockedDates: []string{"2026-09-20"},
		},
	}, nil)
	userRepo.On("UpdateInterviewerProfile", mock.Anything, "int-1", mock.MatchedBy(func(p *models.InterviewerProfile) bool {
		return len(p.BlockedDates) == 1
	})).Return(nil)

	schedule, err := svc.BlockDate(context.Background(), "int-1", "2026-09-20")

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-09-20"}, schedule.BlockedDates)
}

func TestBlockDate_RejectsBadDate(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newInterviewerService(userRepo, new(MockInterviewRepository))

	_, err := svc.BlockDate(context.Background(), "int-1", "Sept 5th")

	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	userRepo.AssertNotCalled(t, "UpdateInterviewerProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnblockDate_RemovesDate(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newInterviewerService(userRepo, new(MockInterviewRepository))

	userRepo.On("GetUserByID", mock.Anything, "int-1").Return(&models.User{
		ID:   "int-1",
		Role: models.RoleInterviewer,
		InterviewerProfile: &models.InterviewerProfile{
			BlockedDates: []string{"2026-09-05", "2026-09-20"},
		},
	}, nil)
	userRepo.On("UpdateInterviewerProfile", mock.Anything, "int-1", mock.MatchedBy(func(p *models.InterviewerProfile) bool {
		return len(p.BlockedDates) == 1 && p.BlockedDates[0] == "2026-09-20"
	})).Return(nil)

	schedule, err := svc.UnblockDate(context.Background(), "int-1", "2026-09-05")

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-09-20"}, schedule.BlockedDates)
	userRepo.AssertExpectations(t)
}

func TestGetAvailability_EmptyProfile(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newInterviewerService(userRepo, new(MockInterviewRepository))

	expectInterviewer(userRepo, "int-1")

	schedule, err := svc.GetAvailability(context.Background(), "int-1")

	require.NoError(t, err)
	assert.Empty(t, schedule.Availability)
	assert.Empty(t, schedule.BlockedDates)
}
