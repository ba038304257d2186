package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/algospace/algospace-api/internal/models"
	apperrors "github.com/algospace/algospace-api/pkg/errors"
	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/algospace/algospace-api/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Interview queries join user names for list views, so the column list
// carries the two name expressions at the end
const interviewColumns = `i.id, i.candidate_id, i.interviewer_id, i.status, i.topic, i.message,
	i.preferred_date, i.preferred_time, i.status_reason,
	i.scheduled_at, i.room_slug, i.feedback, i.created_at, i.updated_at,
	c.full_name AS candidate_name, v.full_name AS interviewer_name`

const interviewJoins = `
	FROM interviews i
	JOIN users c ON c.id = i.candidate_id
	JOIN users v ON v.id = i.interviewer_id`

type interviewRepository struct {
	pool *pgxpool.Pool
}

// NewInterviewRepository creates a PostgreSQL-backed interview repository
func NewInterviewRepository(pool *pgxpool.Pool) InterviewRepository {
	return &interviewRepository{pool: pool}
}

func scanInterview(row pgx.Row) (*models.Interview, error) {
	var i models.Interview
	var topic, message, preferredDate, preferredTime, statusReason, roomSlug *string
	var feedbackJSON []byte

	err := row.Scan(
		&i.ID, &i.CandidateID, &i.InterviewerID, &i.Status, &topic, &message,
		&preferredDate, &preferredTime, &statusReason,
		&i.ScheduledAt, &roomSlug, &feedbackJSON, &i.CreatedAt, &i.UpdatedAt,
		&i.CandidateName, &i.InterviewerName,
	)
	if err != nil {
		return nil, err
	}

	if topic != nil {
		i.Topic = *topic
	}
	if message != nil {
		i.Message = *message
	}
	if preferredDate != nil {
		i.PreferredDate = *preferredDate
	}
	if preferredTime != nil {
		i.PreferredTime = *preferredTime
	}
	if statusReason != nil {
		i.StatusReason = *statusReason
	}
	if roomSlug != nil {
		i.RoomSlug = *roomSlug
	}
	if feedbackJSON != nil {
		var f models.Feedback
		if err := json.Unmarshal(feedbackJSON, &f); err != nil {
			return nil, fmt.Errorf("failed to decode feedback: %w", err)
		}
		i.Feedback = &f
	}

	return &i, nil
}

// CreateInterview inserts a pending interview request
func (r *interviewRepository) CreateInterview(ctx context.Context, interview *models.Interview) (*models.Interview, error) {
	start := time.Now()
	operation := "createInterview"

	query := `
		WITH inserted AS (
			INSERT INTO interviews (candidate_id, interviewer_id, status, topic, message,
				preferred_date, preferred_time)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
			RETURNING *
		)
		SELECT ` + strings.ReplaceAll(interviewColumns, "i.", "inserted.") + `
		FROM inserted
		JOIN users c ON c.id = inserted.candidate_id
		JOIN users v ON v.id = inserted.interviewer_id`

	created, err := scanInterview(r.pool.QueryRow(ctx, query,
		interview.CandidateID, interview.InterviewerID, models.InterviewPending,
		interview.Topic, interview.Message,
		interview.PreferredDate, interview.PreferredTime,
	))
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.String("interview_id", created.ID))
	return created, nil
}

func (r *interviewRepository) GetInterviewByID(ctx context.Context, id string) (*models.Interview, error) {
	start := time.Now()
	operation := "getInterviewByID"

	query := `SELECT ` + interviewColumns + interviewJoins + ` WHERE i.id = $1`

	interview, err := scanInterview(r.pool.QueryRow(ctx, query, id))
	duration := metrics.MeasureDuration(start)

	if err == pgx.ErrNoRows {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("interview not found")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to fetch interview: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return interview, nil
}

func (r *interviewRepository) GetInterviewByRoomSlug(ctx context.Context, roomSlug string) (*models.Interview, error) {
	start := time.Now()
	operation := "getInterviewByRoomSlug"

	query := `SELECT ` + interviewColumns + interviewJoins + ` WHERE i.room_slug = $1`

	interview, err := scanInterview(r.pool.QueryRow(ctx, query, roomSlug))
	duration := metrics.MeasureDuration(start)

	if err == pgx.ErrNoRows {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("interview not found")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to fetch interview: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return interview, nil
}

func (r *interviewRepository) exec(ctx context.Context, operation, query string, args ...interface{}) error {
	start := time.Now()

	tag, err := r.pool.Exec(ctx, query, args...)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to update interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("interview not found")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// UpdateStatus moves the interview to a terminal or intermediate status,
// recording why when a reason was given
func (r *interviewRepository) UpdateStatus(ctx context.Context, id string, status models.InterviewStatus, reason string) error {
	return r.exec(ctx, "updateInterviewStatus",
		`UPDATE interviews SET status = $1, status_reason = NULLIF($2, ''), updated_at = NOW() WHERE id = $3`,
		status, reason, id)
}

// Schedule confirms a pending request with a time and a session room
func (r *interviewRepository) Schedule(ctx context.Context, id string, scheduledAt time.Time, roomSlug string) error {
	return r.exec(ctx, "scheduleInterview",
		`UPDATE interviews SET status = $1, scheduled_at = $2, room_slug = $3, updated_at = NOW() WHERE id = $4`,
		models.InterviewScheduled, scheduledAt, roomSlug, id)
}

func (r *interviewRepository) Reschedule(ctx context.Context, id string, scheduledAt time.Time) error {
	return r.exec(ctx, "rescheduleInterview",
		`UPDATE interviews SET scheduled_at = $1, updated_at = NOW() WHERE id = $2`, scheduledAt, id)
}

// SetFeedback stores the feedback document and marks the interview completed
func (r *interviewRepository) SetFeedback(ctx context.Context, id string, feedback *models.Feedback) error {
	payload, err := json.Marshal(feedback)
	if err != nil {
		return fmt.Errorf("failed to encode feedback: %w", err)
	}
	return r.exec(ctx, "setInterviewFeedback",
		`UPDATE interviews SET feedback = $1, status = $2, updated_at = NOW() WHERE id = $3`,
		payload, models.InterviewCompleted, id)
}

func (r *interviewRepository) list(ctx context.Context, operation, whereClause string, args ...interface{}) ([]*models.Interview, error) {
	start := time.Now()

	query := `SELECT ` + interviewColumns + interviewJoins + ` WHERE ` + whereClause +
		` ORDER BY COALESCE(i.scheduled_at, i.created_at) DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query interviews: %w", err)
	}
	defer rows.Close()

	interviews := make([]*models.Interview, 0)
	for rows.Next() {
		interview, err := scanInterview(rows)
		if err != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			return nil, fmt.Errorf("failed to scan interview row: %w", err)
		}
		interviews = append(interviews, interview)
	}
	if err := rows.Err(); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("error iterating interview rows: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(interviews)))
	return interviews, nil
}

func (r *interviewRepository) ListByCandidate(ctx context.Context, candidateID string) ([]*models.Interview, error) {
	return r.list(ctx, "listInterviewsByCandidate", "i.candidate_id = $1", candidateID)
}

func (r *interviewRepository) ListByInterviewer(ctx context.Context, interviewerID string, statuses []models.InterviewStatus) ([]*models.Interview, error) {
	if len(statuses) == 0 {
		return r.list(ctx, "listInterviewsByInterviewer", "i.interviewer_id = $1", interviewerID)
	}

	statusStrs := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrs[i] = string(s)
	}
	return r.list(ctx, "listInterviewsByInterviewer",
		"i.interviewer_id = $1 AND i.status = ANY($2)", interviewerID, statusStrs)
}

func (r *interviewRepository) ListCompletedByCandidate(ctx context.Context, candidateID string) ([]*models.Interview, error) {
	return r.list(ctx, "listCompletedInterviews",
		"i.candidate_id = $1 AND i.status = $2", candidateID, models.InterviewCompleted)
}
