package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/algospace/algospace-api/config"
	apperrors "github.com/algospace/algospace-api/pkg/errors"
	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/repository"
	"github.com/algospace/algospace-api/pkg/httpclient"
	"github.com/algospace/algospace-api/pkg/jwt"
	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/algospace/algospace-api/pkg/metrics"
	"github.com/algospace/algospace-api/pkg/objstore"
	"github.com/algospace/algospace-api/pkg/retry"
	"github.com/algospace/algospace-api/pkg/trigger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken             = errors.New("user already exists with this email")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrRoleAlreadySelected    = errors.New("role already selected")
	ErrProfileAlreadyComplete = errors.New("profile already completed")
	ErrRoleNotSelected        = errors.New("role must be selected before completing profile")
	ErrJWTSecretNotSet        = errors.New("JWT secret not configured")
)

// AuthService handles registration and login for candidates and interviewers
type AuthService struct {
	userRepo     repository.UserRepository
	storage      *objstore.StorageClient
	config       *config.Config
	tokenManager *jwt.TokenManager
	httpClient   httpclient.Client
}

// NewAuthService creates a new AuthService. storage may be nil when object
// storage is not configured; profile pictures are then skipped.
func NewAuthService(userRepo repository.UserRepository, storage *objstore.StorageClient, cfg *config.Config, httpClient httpclient.Client) *AuthService {
	var tokenManager *jwt.TokenManager
	if cfg.Auth.JWTSecret != "" {
		tokenManager = jwt.NewTokenManager(
			cfg.Auth.JWTSecret,
			cfg.Auth.JWTIssuer,
			cfg.Auth.RegistrationTokenTTLMinutes,
			cfg.Auth.ProfileTokenTTLHours,
			cfg.Auth.SessionTTLHours,
		)
	}

	return &AuthService{
		userRepo:     userRepo,
		storage:      storage,
		config:       cfg,
		tokenManager: tokenManager,
		httpClient:   httpClient,
	}
}

// Register creates a new user account in the pending_role state and issues a
// short-lived registration token for the role selection step.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	if s.tokenManager == nil {
		return nil, ErrJWTSecretNotSet
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", zap.Error(err))
		metrics.Registrations.WithLabelValues("register", "error").Inc()
		return nil, apperrors.InternalError("failed to hash password")
	}

	user, err := s.userRepo.CreateUser(ctx, req.Email, string(hash), req.FullName(), req.Gender)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Registration attempt with existing email",
				zap.String("email", req.Email))
			metrics.Registrations.WithLabelValues("register", "duplicate").Inc()
			return nil, ErrEmailTaken
		}
		metrics.Registrations.WithLabelValues("register", "error").Inc()
		return nil, err
	}

	token, err := s.tokenManager.GenerateRegistrationToken(user.ID, user.Email)
	if err != nil {
		logger.Error("Failed to generate registration token",
			zap.String("user_id", user.ID),
			zap.Error(err))
		metrics.Registrations.WithLabelValues("register", "error").Inc()
		return nil, apperrors.InternalError("failed to generate token")
	}

	s.sendRegistrationEmail(user)

	logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email))
	metrics.Registrations.WithLabelValues("register", "success").Inc()

	return &models.RegisterResponse{
		UserID:    user.ID,
		TempToken: token,
	}, nil
}

// SelectRole assigns candidate or interviewer to a user in the pending_role
// state and issues a profile token for the final registration step. An
// optional profile picture is uploaded and recorded on the chosen profile.
func (s *AuthService) SelectRole(ctx context.Context, userID string, req *models.SelectRoleRequest) (*models.SelectRoleResponse, error) {
	role := req.Role
	if !models.ValidRole(role) {
		metrics.Registrations.WithLabelValues("role", "invalid_role").Inc()
		return nil, apperrors.InvalidInputError("role", "must be candidate or interviewer")
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		metrics.Registrations.WithLabelValues("role", "error").Inc()
		return nil, err
	}

	if user.RegistrationState != models.RegistrationPendingRole {
		logger.Warn("Role selection in wrong registration state",
			zap.String("user_id", userID),
			zap.String("state", string(user.RegistrationState)))
		metrics.Registrations.WithLabelValues("role", "wrong_state").Inc()
		return nil, ErrRoleAlreadySelected
	}

	if err := s.userRepo.SetRole(ctx, userID, models.Role(role)); err != nil {
		metrics.Registrations.WithLabelValues("role", "error").Inc()
		return nil, err
	}

	if req.ProfilePicture != nil {
		if err := s.storeProfilePicture(ctx, userID, models.Role(role), req.ProfilePicture); err != nil {
			metrics.Registrations.WithLabelValues("role", "invalid_input").Inc()
			return nil, err
		}
	}

	token, err := s.tokenManager.GenerateProfileToken(user.ID, user.Email, role)
	if err != nil {
		logger.Error("Failed to generate profile token",
			zap.String("user_id", user.ID),
			zap.Error(err))
		metrics.Registrations.WithLabelValues("role", "error").Inc()
		return nil, apperrors.InternalError("failed to generate token")
	}

	metrics.Registrations.WithLabelValues("role", "success").Inc()

	return &models.SelectRoleResponse{
		UserID:       user.ID,
		Role:         role,
		ProfileToken: token,
	}, nil
}

// CompleteProfile stores the role-specific profile, activates the account and
// issues a long-lived session token.
func (s *AuthService) CompleteProfile(ctx context.Context, userID string, req *models.CompleteProfileRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		metrics.Registrations.WithLabelValues("profile", "error").Inc()
		return nil, err
	}

	switch user.RegistrationState {
	case models.RegistrationActive:
		metrics.Registrations.WithLabelValues("profile", "wrong_state").Inc()
		return nil, ErrProfileAlreadyComplete
	case models.RegistrationPendingRole:
		metrics.Registrations.WithLabelValues("profile", "wrong_state").Inc()
		return nil, ErrRoleNotSelected
	}

	switch user.Role {
	case models.RoleCandidate:
		err = s.completeCandidateProfile(ctx, user, req)
	case models.RoleInterviewer:
		err = s.completeInterviewerProfile(ctx, user, req)
	default:
		err = ErrRoleNotSelected
	}
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidInput) {
			metrics.Registrations.WithLabelValues("profile", "invalid_input").Inc()
		} else {
			metrics.Registrations.WithLabelValues("profile", "error").Inc()
		}
		return nil, err
	}

	user, err = s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		metrics.Registrations.WithLabelValues("profile", "error").Inc()
		return nil, err
	}

	token, err := s.tokenManager.GenerateSessionToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		logger.Error("Failed to generate session token",
			zap.String("user_id", user.ID),
			zap.Error(err))
		metrics.Registrations.WithLabelValues("profile", "error").Inc()
		return nil, apperrors.InternalError("failed to generate token")
	}

	logger.Info("Registration completed",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	metrics.Registrations.WithLabelValues("profile", "success").Inc()

	return &models.AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) completeCandidateProfile(ctx context.Context, user *models.User, req *models.CompleteProfileRequest) error {
	if !models.ValidGender(req.Gender) {
		return apperrors.InvalidInputError("gender", "must be male, female or other")
	}
	if req.Gender == "" {
		req.Gender = user.Gender
	}
	if invalid := models.ValidateSkills(req.Skills); len(invalid) > 0 {
		return apperrors.InvalidInputError("skills", "unsupported: "+strings.Join(invalid, ", "))
	}
	if invalid := models.ValidatePreferredRoles(req.PreferredRoles); len(invalid) > 0 {
		return apperrors.InvalidInputError("preferredRoles", "unsupported: "+strings.Join(invalid, ", "))
	}

	profile := &models.CandidateProfile{
		Phone:          req.Phone,
		Gender:         req.Gender,
		College:        req.College,
		GraduationYear: req.GraduationYear,
		Skills:         req.Skills,
		PreferredRoles: req.PreferredRoles,
		CodingProfiles: req.CodingProfiles,
	}
	if user.CandidateProfile != nil {
		profile.PhotoURL = user.CandidateProfile.PhotoURL
	}

	return s.userRepo.CompleteCandidateProfile(ctx, user.ID, profile)
}

func (s *AuthService) completeInterviewerProfile(ctx context.Context, user *models.User, req *models.CompleteProfileRequest) error {
	if !models.ValidGender(req.Gender) {
		return apperrors.InvalidInputError("gender", "must be male, female or other")
	}
	if req.Gender == "" {
		req.Gender = user.Gender
	}
	for _, slot := range req.Availability {
		if err := slot.Validate(); err != nil {
			return apperrors.InvalidInputError("availability", err.Error())
		}
	}

	profile := &models.InterviewerProfile{
		Phone:           req.Phone,
		Gender:          req.Gender,
		CurrentCompany:  req.CurrentCompany,
		Designation:     req.Designation,
		ExperienceYears: req.ExperienceYears,
		Expertise:       req.Expertise,
		Bio:             req.Bio,
		Availability:    req.Availability,
	}
	if user.InterviewerProfile != nil {
		profile.PhotoURL = user.InterviewerProfile.PhotoURL
	}

	return s.userRepo.CompleteInterviewerProfile(ctx, user.ID, profile)
}

func (s *AuthService) storeProfilePicture(ctx context.Context, userID string, role models.Role, pic *models.UploadPhotoRequest) error {
	if s.storage == nil {
		logger.Warn("Object storage not configured, skipping profile picture",
			zap.String("user_id", userID))
		return nil
	}

	if err := s.storage.ValidateImageType(pic.ContentType); err != nil {
		return err
	}
	if err := s.storage.ValidateImageSize(pic.Image); err != nil {
		return err
	}

	key := fmt.Sprintf("photos/%s%s", userID, path.Ext(pic.FileName))
	url, err := retry.DoWithResult(ctx, retry.StorageConfig(), "upload_photo", func() (string, error) {
		return s.storage.UploadImage(ctx, pic.Image, key, pic.ContentType)
	})
	if err != nil {
		logger.Error("Profile picture upload failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return apperrors.InternalError("failed to store profile picture")
	}

	if role == models.RoleCandidate {
		return s.userRepo.UpdateCandidateProfile(ctx, userID, &models.CandidateProfile{PhotoURL: url})
	}
	return s.userRepo.UpdateInterviewerProfile(ctx, userID, &models.InterviewerProfile{PhotoURL: url})
}

// Login verifies credentials and issues a session token. Users who abandoned
// registration mid-way still log in; the response carries their registration
// state so the frontend can resume the flow.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if s.tokenManager == nil {
		return nil, ErrJWTSecretNotSet
	}

	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			metrics.Logins.WithLabelValues("unknown_email").Inc()
			return nil, ErrInvalidCredentials
		}
		metrics.Logins.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("Login with wrong password",
			zap.String("user_id", user.ID))
		metrics.Logins.WithLabelValues("wrong_password").Inc()
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenManager.GenerateSessionToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		logger.Error("Failed to generate session token",
			zap.String("user_id", user.ID),
			zap.Error(err))
		metrics.Logins.WithLabelValues("error").Inc()
		return nil, apperrors.InternalError("failed to generate token")
	}

	logger.Info("User logged in",
		zap.String("user_id", user.ID),
		zap.String("state", string(user.RegistrationState)))
	metrics.Logins.WithLabelValues("success").Inc()

	return &models.AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) sendRegistrationEmail(user *models.User) {
	triggerURL := s.config.EmailTriggers.UserRegisteredTriggerURL
	if triggerURL == "" {
		if s.config.IsDevelopment() {
			logger.Info("Registration email trigger not configured, skipping",
				zap.String("user_id", user.ID))
		}
		return
	}

	trigger.CallAsyncWithPayload(triggerURL, map[string]string{
		"userId":   user.ID,
		"email":    user.Email,
		"fullName": user.FullName,
	}, s.httpClient)
}

// GetSessionTTL returns the session duration in hours
func (s *AuthService) GetSessionTTL() int {
	return s.config.Auth.SessionTTLHours
}

// GetCookieDomain returns the configured cookie domain
func (s *AuthService) GetCookieDomain() string {
	return s.config.Auth.CookieDomain
}

// GetCookieSecure returns whether session cookies require HTTPS
func (s *AuthService) GetCookieSecure() bool {
	return s.config.Auth.CookieSecure
}

// GetTokenManager returns the token manager for middleware wiring
func (s *AuthService) GetTokenManager() *jwt.TokenManager {
	return s.tokenManager
}
