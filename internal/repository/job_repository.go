package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/algospace/algospace-api/internal/models"
	apperrors "github.com/algospace/algospace-api/pkg/errors"
	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/algospace/algospace-api/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const jobColumns = `id, posted_by, company_name, title, description, location, salary_range,
	required_skills, preferred_role, min_experience, is_active, created_at, updated_at`

const applicationColumns = `id, job_id, candidate_id, status, applied_at, updated_at`

type jobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a PostgreSQL-backed job repository
func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	var location, salaryRange, preferredRole *string

	err := row.Scan(
		&j.ID, &j.PostedBy, &j.CompanyName, &j.Title, &j.Description, &location, &salaryRange,
		&j.RequiredSkills, &preferredRole, &j.MinExperience, &j.IsActive, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if location != nil {
		j.Location = *location
	}
	if salaryRange != nil {
		j.SalaryRange = *salaryRange
	}
	if preferredRole != nil {
		j.PreferredRole = *preferredRole
	}
	if j.RequiredSkills == nil {
		j.RequiredSkills = []string{}
	}

	return &j, nil
}

func scanApplication(row pgx.Row) (*models.JobApplication, error) {
	var a models.JobApplication
	err := row.Scan(&a.ID, &a.JobID, &a.CandidateID, &a.Status, &a.AppliedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateJob inserts an active posting
func (r *jobRepository) CreateJob(ctx context.Context, postedBy string, req *models.CreateJobRequest) (*models.Job, error) {
	start := time.Now()
	operation := "createJob"

	query := `
		INSERT INTO jobs (posted_by, company_name, title, description, location, salary_range,
			required_skills, preferred_role, min_experience, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true)
		RETURNING ` + jobColumns

	job, err := scanJob(r.pool.QueryRow(ctx, query,
		postedBy, req.CompanyName, req.Title, req.Description, req.Location, req.SalaryRange,
		req.RequiredSkills, req.PreferredRole, req.MinExperience,
	))
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.String("job_id", job.ID))
	return job, nil
}

func (r *jobRepository) GetJobByID(ctx context.Context, id string) (*models.Job, error) {
	start := time.Now()
	operation := "getJobByID"

	job, err := scanJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	duration := metrics.MeasureDuration(start)

	if err == pgx.ErrNoRows {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("job not found")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to fetch job: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return job, nil
}

func (r *jobRepository) listJobs(ctx context.Context, operation, whereClause string, args ...interface{}) ([]*models.Job, error) {
	start := time.Now()

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE ` + whereClause + ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*models.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(jobs)))
	return jobs, nil
}

func (r *jobRepository) ListJobsByPoster(ctx context.Context, postedBy string) ([]*models.Job, error) {
	return r.listJobs(ctx, "listJobsByPoster", "posted_by = $1", postedBy)
}

func (r *jobRepository) ListActiveJobs(ctx context.Context) ([]*models.Job, error) {
	return r.listJobs(ctx, "listActiveJobs", "is_active = true")
}

// CreateApplication inserts an application; a second application from the
// same candidate hits the unique constraint and maps to a conflict
func (r *jobRepository) CreateApplication(ctx context.Context, jobID, candidateID string) (*models.JobApplication, error) {
	start := time.Now()
	operation := "createApplication"

	query := `
		INSERT INTO job_applications (job_id, candidate_id, status)
		VALUES ($1, $2, $3)
		RETURNING ` + applicationColumns

	app, err := scanApplication(r.pool.QueryRow(ctx, query, jobID, candidateID, models.ApplicationApplied))
	duration := metrics.MeasureDuration(start)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			recordMetrics(operation, "conflict", duration)
			return nil, apperrors.ConflictError("already applied to this job")
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.String("job_id", jobID),
		zap.String("candidate_id", candidateID))
	return app, nil
}

func (r *jobRepository) GetApplicationByID(ctx context.Context, id string) (*models.JobApplication, error) {
	start := time.Now()
	operation := "getApplicationByID"

	app, err := scanApplication(r.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM job_applications WHERE id = $1`, id))
	duration := metrics.MeasureDuration(start)

	if err == pgx.ErrNoRows {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("application not found")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return app, nil
}

func (r *jobRepository) UpdateApplicationStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	start := time.Now()
	operation := "updateApplicationStatus"

	tag, err := r.pool.Exec(ctx,
		`UPDATE job_applications SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("application not found")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

func (r *jobRepository) listApplications(ctx context.Context, operation, whereClause string, arg interface{}) ([]*models.JobApplication, error) {
	start := time.Now()

	query := `SELECT ` + applicationColumns + ` FROM job_applications WHERE ` + whereClause + ` ORDER BY applied_at DESC`

	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*models.JobApplication, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			return nil, fmt.Errorf("failed to scan application row: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	return apps, nil
}

func (r *jobRepository) ListApplicationsForJob(ctx context.Context, jobID string) ([]*models.JobApplication, error) {
	return r.listApplications(ctx, "listApplicationsForJob", "job_id = $1", jobID)
}

func (r *jobRepository) ListApplicationsByCandidate(ctx context.Context, candidateID string) ([]*models.JobApplication, error) {
	return r.listApplications(ctx, "listApplicationsByCandidate", "candidate_id = $1", candidateID)
}
