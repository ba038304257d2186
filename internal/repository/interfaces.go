package repository

import (
	"context"
	"time"

	"github.com/algospace/algospace-api/internal/models"
)

// UserRepository defines data access for accounts and profiles
type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash, fullName, gender string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetRole(ctx context.Context, id string, role models.Role) error
	CompleteCandidateProfile(ctx context.Context, id string, profile *models.CandidateProfile) error
	CompleteInterviewerProfile(ctx context.Context, id string, profile *models.InterviewerProfile) error
	UpdateCandidateProfile(ctx context.Context, id string, profile *models.CandidateProfile) error
	UpdateInterviewerProfile(ctx context.Context, id string, profile *models.InterviewerProfile) error
	UpdateFullName(ctx context.Context, id, fullName string) error
	ListInterviewers(ctx context.Context) ([]*models.User, error)
	SearchCandidates(ctx context.Context, filter models.CandidateSearchFilter) ([]*models.User, error)
	SetPlan(ctx context.Context, id, planID string) error
}

// JobRepository defines data access for postings and applications
type JobRepository interface {
	CreateJob(ctx context.Context, postedBy string, req *models.CreateJobRequest) (*models.Job, error)
	GetJobByID(ctx context.Context, id string) (*models.Job, error)
	ListJobsByPoster(ctx context.Context, postedBy string) ([]*models.Job, error)
	ListActiveJobs(ctx context.Context) ([]*models.Job, error)
	CreateApplication(ctx context.Context, jobID, candidateID string) (*models.JobApplication, error)
	GetApplicationByID(ctx context.Context, id string) (*models.JobApplication, error)
	UpdateApplicationStatus(ctx context.Context, id string, status models.ApplicationStatus) error
	ListApplicationsForJob(ctx context.Context, jobID string) ([]*models.JobApplication, error)
	ListApplicationsByCandidate(ctx context.Context, candidateID string) ([]*models.JobApplication, error)
}

// InterviewRepository defines data access for interviews and feedback
type InterviewRepository interface {
	CreateInterview(ctx context.Context, interview *models.Interview) (*models.Interview, error)
	GetInterviewByID(ctx context.Context, id string) (*models.Interview, error)
	GetInterviewByRoomSlug(ctx context.Context, roomSlug string) (*models.Interview, error)
	UpdateStatus(ctx context.Context, id string, status models.InterviewStatus, reason string) error
	Schedule(ctx context.Context, id string, scheduledAt time.Time, roomSlug string) error
	Reschedule(ctx context.Context, id string, scheduledAt time.Time) error
	SetFeedback(ctx context.Context, id string, feedback *models.Feedback) error
	ListByCandidate(ctx context.Context, candidateID string) ([]*models.Interview, error)
	ListByInterviewer(ctx context.Context, interviewerID string, statuses []models.InterviewStatus) ([]*models.Interview, error)
	ListCompletedByCandidate(ctx context.Context, candidateID string) ([]*models.Interview, error)
}

// PaymentRepository defines data access for payment orders
type PaymentRepository interface {
	CreateOrder(ctx context.Context, order *models.PaymentOrder) (*models.PaymentOrder, error)
	GetOrderByGatewayID(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, error)
	MarkPaid(ctx context.Context, id, paymentID string) error
	MarkFailed(ctx context.Context, id string) error
	ListOrdersByUser(ctx context.Context, userID string) ([]*models.PaymentOrder, error)
}
