package services

import (
	"context"

	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/pkg/jwt"
)

// AuthServiceInterface defines the registration and login flow
type AuthServiceInterface interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error)
	SelectRole(ctx context.Context, userID string, req *models.SelectRoleRequest) (*models.SelectRoleResponse, error)
	CompleteProfile(ctx context.Context, userID string, req *models.CompleteProfileRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	GetSessionTTL() int
	GetCookieDomain() string
	GetCookieSecure() bool
	GetTokenManager() *jwt.TokenManager
}

// CandidateServiceInterface defines the candidate-facing operations
type CandidateServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateCandidateProfileRequest) (*models.User, error)
	UpdateSkills(ctx context.Context, userID string, skills []string) (*models.User, error)
	UpdatePreferredRoles(ctx context.Context, userID string, roles []string) (*models.User, error)
	UpdateCodingProfiles(ctx context.Context, userID string, profiles models.CodingProfiles) (*models.User, error)
	UploadResume(ctx context.Context, userID string, req *models.UploadResumeRequest) (string, error)
	DeleteResume(ctx context.Context, userID string) error
	UploadPhoto(ctx context.Context, userID string, req *models.UploadPhotoRequest) (string, error)
	ListInterviewers(ctx context.Context) ([]models.PublicInterviewer, error)
	RequestInterview(ctx context.Context, candidateID string, req *models.RequestInterviewRequest) (*models.Interview, error)
	ListInterviews(ctx context.Context, candidateID string) ([]*models.Interview, error)
	CancelInterview(ctx context.Context, candidateID, interviewID, reason string) error
	ApplyToJob(ctx context.Context, candidateID, jobID string) (*models.JobApplication, error)
}

// InterviewerServiceInterface defines the interviewer-facing operations
type InterviewerServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateInterviewerProfileRequest) (*models.User, error)
	UpdateExpertise(ctx context.Context, userID string, req *models.UpdateExpertiseRequest) (*models.User, error)
	UpdateCompanyInfo(ctx context.Context, userID string, req *models.UpdateCompanyInfoRequest) (*models.User, error)
	GetAvailability(ctx context.Context, userID string) (*models.AvailabilitySchedule, error)
	UpdateAvailability(ctx context.Context, userID string, slots []models.AvailabilitySlot) (*models.User, error)
	BlockDate(ctx context.Context, userID, date string) (*models.AvailabilitySchedule, error)
	UnblockDate(ctx context.Context, userID, date string) (*models.AvailabilitySchedule, error)
	UploadPhoto(ctx context.Context, userID string, req *models.UploadPhotoRequest) (string, error)
	PendingInterviews(ctx context.Context, userID string) ([]*models.Interview, error)
	UpcomingInterviews(ctx context.Context, userID string) ([]*models.Interview, error)
	PastInterviews(ctx context.Context, userID string) ([]*models.Interview, error)
	GetInterview(ctx context.Context, userID, interviewID string) (*models.Interview, error)
	ApproveInterview(ctx context.Context, userID, interviewID string, req *models.ScheduleInterviewRequest) (*models.Interview, error)
	RejectInterview(ctx context.Context, userID, interviewID, reason string) error
	RescheduleInterview(ctx context.Context, userID, interviewID string, req *models.RescheduleInterviewRequest) (*models.Interview, error)
	CompleteInterview(ctx context.Context, userID, interviewID string) error
	SubmitFeedback(ctx context.Context, userID, interviewID string, req *models.SubmitFeedbackRequest) (*models.Interview, error)
	SearchCandidates(ctx context.Context, userID string, filter models.CandidateSearchFilter) ([]*models.User, error)
	GetCandidate(ctx context.Context, userID, candidateID string) (*models.User, error)
	FeedbackHistory(ctx context.Context, userID, candidateID string) ([]*models.Interview, error)
}

// JobServiceInterface defines posting and application funnel operations
type JobServiceInterface interface {
	CreateJob(ctx context.Context, posterID string, req *models.CreateJobRequest) (*models.Job, error)
	ListOwnJobs(ctx context.Context, posterID string) ([]*models.Job, error)
	ListAllJobs(ctx context.Context, userID string) ([]models.JobWithApplication, error)
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	ListApplications(ctx context.Context, posterID, jobID string) ([]*models.JobApplication, error)
	UpdateApplicationStatus(ctx context.Context, posterID, applicationID string, target models.ApplicationStatus) (*models.JobApplication, error)
}

// MatchServiceInterface ranks candidates against a posting
type MatchServiceInterface interface {
	MatchesForJob(ctx context.Context, posterID, jobID string, limit int) ([]models.MatchResult, error)
}

// PaymentServiceInterface defines checkout and verification
type PaymentServiceInterface interface {
	CreateOrder(ctx context.Context, userID string, req *models.CreateOrderRequest) (*models.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, userID string, req *models.VerifyPaymentRequest) (*models.PaymentOrder, error)
	ListOrders(ctx context.Context, userID string) ([]*models.PaymentOrder, error)
}

// Ensure services implement their interfaces
var _ AuthServiceInterface = (*AuthService)(nil)
var _ CandidateServiceInterface = (*CandidateService)(nil)
var _ InterviewerServiceInterface = (*InterviewerService)(nil)
var _ JobServiceInterface = (*JobService)(nil)
var _ MatchServiceInterface = (*MatchService)(nil)
var _ PaymentServiceInterface = (*PaymentService)(nil)
