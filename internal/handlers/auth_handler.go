package handlers

import (
	"errors"
	"net/http"

	"github.com/algospace/algospace-api/internal/middleware"
	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/services"
	"github.com/gin-gonic/gin"
)

var errUserIDMismatch = errors.New("userId does not match the token subject")

// AuthHandler handles the three-phase registration flow and login
type AuthHandler struct {
	service services.AuthServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service services.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// Register handles POST /api/v1/auth/register
// Creates the account and returns a short-lived token for role selection
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			respondError(c, http.StatusBadRequest, "User already exists with this email", err)
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// SelectRole handles POST /api/v1/auth/register/role
// Requires the registration token issued by Register
func (h *AuthHandler) SelectRole(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req models.SelectRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}
	if req.UserID != "" && req.UserID != session.UserID {
		respondError(c, http.StatusForbidden, "userId does not match the authenticated user", errUserIDMismatch)
		return
	}

	resp, err := h.service.SelectRole(c.Request.Context(), session.UserID, &req)
	if err != nil {
		if errors.Is(err, services.ErrRoleAlreadySelected) {
			respondError(c, http.StatusConflict, "Role already selected", err)
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CompleteProfile handles POST /api/v1/auth/register/complete-profile
// Requires the profile token issued by SelectRole. On success the session
// cookie is set and registration is finished.
func (h *AuthHandler) CompleteProfile(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req models.CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}
	if req.UserID != "" && req.UserID != session.UserID {
		respondError(c, http.StatusForbidden, "userId does not match the authenticated user", errUserIDMismatch)
		return
	}

	resp, err := h.service.CompleteProfile(c.Request.Context(), session.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProfileAlreadyComplete):
			respondError(c, http.StatusConflict, "Profile already completed", err)
		case errors.Is(err, services.ErrRoleNotSelected):
			respondError(c, http.StatusConflict, "Select a role before completing the profile", err)
		default:
			respondServiceError(c, err)
		}
		return
	}

	h.setSessionCookie(c, resp.Token)
	c.JSON(http.StatusOK, resp)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "Invalid email or password", err)
			return
		}
		respondServiceError(c, err)
		return
	}

	h.setSessionCookie(c, resp.Token)
	c.JSON(http.StatusOK, resp)
}

// Logout handles GET /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(
		c,
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	middleware.SetSessionCookie(
		c,
		token,
		h.service.GetSessionTTL()*3600,
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)
}
