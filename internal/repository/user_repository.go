package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
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

const uniqueViolationCode = "23505"

const userColumns = `id, email, password_hash, full_name, gender, role, registration_state,
	candidate_profile, interviewer_profile, created_at, updated_at`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a PostgreSQL-backed user repository
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var role *string
	var candidateJSON, interviewerJSON []byte

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Gender, &role, &u.RegistrationState,
		&candidateJSON, &interviewerJSON, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if role != nil {
		u.Role = models.Role(*role)
	}
	if candidateJSON != nil {
		var p models.CandidateProfile
		if err := json.Unmarshal(candidateJSON, &p); err != nil {
			return nil, fmt.Errorf("failed to decode candidate profile: %w", err)
		}
		u.CandidateProfile = &p
	}
	if interviewerJSON != nil {
		var p models.InterviewerProfile
		if err := json.Unmarshal(interviewerJSON, &p); err != nil {
			return nil, fmt.Errorf("failed to decode interviewer profile: %w", err)
		}
		u.InterviewerProfile = &p
	}

	return &u, nil
}

// CreateUser inserts a new account in the pending_role state
func (r *userRepository) CreateUser(ctx context.Context, email, passwordHash, fullName, gender string) (*models.User, error) {
	start := time.Now()
	operation := "createUser"

	query := `
		INSERT INTO users (email, password_hash, full_name, gender, registration_state)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, email, passwordHash, fullName, gender, models.RegistrationPendingRole))
	duration := metrics.MeasureDuration(start)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			recordMetrics(operation, "conflict", duration)
			return nil, apperrors.ConflictError("email already registered")
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.String("user_id", user.ID))
	return user, nil
}

func (r *userRepository) getUserBy(ctx context.Context, operation, whereClause string, arg interface{}) (*models.User, error) {
	start := time.Now()

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + whereClause

	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	duration := metrics.MeasureDuration(start)

	if err == pgx.ErrNoRows {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("user not found")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUserBy(ctx, "getUserByID", "id = $1", id)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUserBy(ctx, "getUserByEmail", "LOWER(email) = LOWER($1)", email)
}

// SetRole records the chosen role and advances registration to the
// profile phase
func (r *userRepository) SetRole(ctx context.Context, id string, role models.Role) error {
	start := time.Now()
	operation := "setRole"

	query := `
		UPDATE users
		SET role = $1, registration_state = $2, updated_at = NOW()
		WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, string(role), models.RegistrationPendingProfile, id)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to set role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("user not found")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

func (r *userRepository) writeProfile(ctx context.Context, operation, column, id string, profile interface{}, markActive bool) error {
	start := time.Now()

	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	query := fmt.Sprintf(`UPDATE users SET %s = $1, updated_at = NOW()`, column)
	args := []interface{}{payload}
	if markActive {
		query += `, registration_state = $2 WHERE id = $3`
		args = append(args, models.RegistrationActive, id)
	} else {
		query += ` WHERE id = $2`
		args = append(args, id)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("user not found")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

func (r *userRepository) CompleteCandidateProfile(ctx context.Context, id string, profile *models.CandidateProfile) error {
	return r.writeProfile(ctx, "completeCandidateProfile", "candidate_profile", id, profile, true)
}

func (r *userRepository) CompleteInterviewerProfile(ctx context.Context, id string, profile *models.InterviewerProfile) error {
	return r.writeProfile(ctx, "completeInterviewerProfile", "interviewer_profile", id, profile, true)
}

func (r *userRepository) UpdateCandidateProfile(ctx context.Context, id string, profile *models.CandidateProfile) error {
	return r.writeProfile(ctx, "updateCandidateProfile", "candidate_profile", id, profile, false)
}

func (r *userRepository) UpdateInterviewerProfile(ctx context.Context, id string, profile *models.InterviewerProfile) error {
	return r.writeProfile(ctx, "updateInterviewerProfile", "interviewer_profile", id, profile, false)
}

func (r *userRepository) UpdateFullName(ctx context.Context, id, fullName string) error {
	start := time.Now()
	operation := "updateFullName"

	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET full_name = $1, updated_at = NOW() WHERE id = $2`, fullName, id)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to update name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("user not found")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// ListInterviewers returns all fully registered interviewers
func (r *userRepository) ListInterviewers(ctx context.Context) ([]*models.User, error) {
	start := time.Now()
	operation := "listInterviewers"

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1 AND registration_state = $2
		ORDER BY full_name ASC`

	rows, err := r.pool.Query(ctx, query, string(models.RoleInterviewer), models.RegistrationActive)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query interviewers: %w", err)
	}
	defer rows.Close()

	users, err := collectUsers(rows)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, err
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(users)))
	return users, nil
}

// SearchCandidates filters fully registered candidates by skill, target
// role, college or free-text query
func (r *userRepository) SearchCandidates(ctx context.Context, filter models.CandidateSearchFilter) ([]*models.User, error) {
	start := time.Now()
	operation := "searchCandidates"

	var sb strings.Builder
	sb.WriteString(`SELECT ` + userColumns + ` FROM users WHERE role = $1 AND registration_state = $2`)
	args := []interface{}{string(models.RoleCandidate), models.RegistrationActive}

	if filter.Skill != "" {
		arg, _ := json.Marshal([]string{filter.Skill})
		args = append(args, string(arg))
		sb.WriteString(fmt.Sprintf(` AND candidate_profile->'skills' @> $%d::jsonb`, len(args)))
	}
	if filter.PreferredRole != "" {
		arg, _ := json.Marshal([]string{filter.PreferredRole})
		args = append(args, string(arg))
		sb.WriteString(fmt.Sprintf(` AND candidate_profile->'preferredRoles' @> $%d::jsonb`, len(args)))
	}
	if filter.College != "" {
		args = append(args, "%"+filter.College+"%")
		sb.WriteString(fmt.Sprintf(` AND candidate_profile->>'college' ILIKE $%d`, len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		sb.WriteString(fmt.Sprintf(` AND (full_name ILIKE $%d OR email ILIKE $%d)`, len(args), len(args)))
	}

	sb.WriteString(` ORDER BY full_name ASC`)

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(` LIMIT $%d`, len(args)))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sb.WriteString(fmt.Sprintf(` OFFSET $%d`, len(args)))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to search candidates: %w", err)
	}
	defer rows.Close()

	users, err := collectUsers(rows)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, err
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(users)))
	return users, nil
}

// SetPlan activates a subscription plan on the candidate profile
func (r *userRepository) SetPlan(ctx context.Context, id, planID string) error {
	start := time.Now()
	operation := "setPlan"

	query := `
		UPDATE users
		SET candidate_profile = jsonb_set(
				jsonb_set(COALESCE(candidate_profile, '{}'::jsonb), '{planId}', to_jsonb($1::text)),
				'{planActivatedAt}', to_jsonb(NOW())
			),
			updated_at = NOW()
		WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, planID, id)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to set plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("user not found")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

func collectUsers(rows pgx.Rows) ([]*models.User, error) {
	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
