package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/algospace/algospace-api/internal/middleware"
	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/pkg/jwt"
)

// stubAuthService records which flow methods were reached so tests can
// assert the handler short-circuited before the service.
type stubAuthService struct {
	selectRoleCalled      bool
	completeProfileCalled bool
}

func (s *stubAuthService) Register(_ context.Context, _ *models.RegisterRequest) (*models.RegisterResponse, error) {
	return &models.RegisterResponse{}, nil
}

func (s *stubAuthService) SelectRole(_ context.Context, userID string, req *models.SelectRoleRequest) (*models.SelectRoleResponse, error) {
	s.selectRoleCalled = true
	return &models.SelectRoleResponse{UserID: userID, Role: req.Role, ProfileToken: "pt"}, nil
}

func (s *stubAuthService) CompleteProfile(_ context.Context, userID string, _ *models.CompleteProfileRequest) (*models.AuthResponse, error) {
	s.completeProfileCalled = true
	return &models.AuthResponse{User: &models.User{ID: userID}, Token: "tok"}, nil
}

func (s *stubAuthService) Login(_ context.Context, _ *models.LoginRequest) (*models.AuthResponse, error) {
	return &models.AuthResponse{}, nil
}

func (s *stubAuthService) GetSessionTTL() int                 { return 3600 }
func (s *stubAuthService) GetCookieDomain() string            { return "" }
func (s *stubAuthService) GetCookieSecure() bool              { return false }
func (s *stubAuthService) GetTokenManager() *jwt.TokenManager { return nil }

func authTestRouter(svc *stubAuthService, userID string) *gin.Engine {
	handler := NewAuthHandler(svc)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.SessionContextKey, &models.Session{UserID: userID})
	})
	router.POST("/register/role", handler.SelectRole)
	router.POST("/complete-profile", handler.CompleteProfile)
	return router
}

func TestSelectRole_UserIDMismatchRejected(t *testing.T) {
	svc := new(stubAuthService)
	router := authTestRouter(svc, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/register/role",
		strings.NewReader(`{"userId":"user-2","role":"candidate"}`))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "does not match")
	assert.False(t, svc.selectRoleCalled)
}

func TestSelectRole_MatchingUserIDAccepted(t *testing.T) {
	svc := new(stubAuthService)
	router := authTestRouter(svc, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/register/role",
		strings.NewReader(`{"userId":"user-1","role":"interviewer"}`))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.selectRoleCalled)
}

func TestCompleteProfile_UserIDMismatchRejected(t *testing.T) {
	svc := new(stubAuthService)
	router := authTestRouter(svc, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/complete-profile",
		strings.NewReader(`{"userId":"user-2","phone":"9998887776"}`))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, svc.completeProfileCalled)
}
