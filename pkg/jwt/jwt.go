package jwt

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidClaim = errors.New("invalid token claims")
	ErrWrongScope   = errors.New("token scope does not permit this operation")
)

// Scope limits what a token can be used for. Registration flows issue
// narrow tokens that only unlock the next step of the flow.
type Scope string

const (
	// ScopeRegistration is issued after the initial register call and only
	// permits role selection.
	ScopeRegistration Scope = "registration"
	// ScopeProfile is issued after role selection and only permits profile
	// completion.
	ScopeProfile Scope = "profile"
	// ScopeSession is a full session token issued after profile completion
	// or login.
	ScopeSession Scope = "session"
)

// Claims represents the JWT claims for a user token
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"` // Empty until role selection
	Scope  Scope  `json:"scope"`
	jwt.RegisteredClaims
}

// TokenManager handles JWT token generation and validation
type TokenManager struct {
	secret          []byte
	issuer          string
	registrationTTL time.Duration
	profileTTL      time.Duration
	sessionTTL      time.Duration
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret, issuer string, registrationTTLMinutes, profileTTLHours, sessionTTLHours int) *TokenManager {
	return &TokenManager{
		secret:          []byte(secret),
		issuer:          issuer,
		registrationTTL: time.Duration(registrationTTLMinutes) * time.Minute,
		profileTTL:      time.Duration(profileTTLHours) * time.Hour,
		sessionTTL:      time.Duration(sessionTTLHours) * time.Hour,
	}
}

// GenerateRegistrationToken creates a short-lived token that only permits
// role selection for a freshly registered user.
func (tm *TokenManager) GenerateRegistrationToken(userID, email string) (string, error) {
	return tm.generateToken(userID, email, "", ScopeRegistration, tm.registrationTTL)
}

// GenerateProfileToken creates a token that only permits profile completion.
func (tm *TokenManager) GenerateProfileToken(userID, email, role string) (string, error) {
	return tm.generateToken(userID, email, role, ScopeProfile, tm.profileTTL)
}

// GenerateSessionToken creates a full session token.
func (tm *TokenManager) GenerateSessionToken(userID, email, role string) (string, error) {
	return tm.generateToken(userID, email, role, ScopeSession, tm.sessionTTL)
}

func (tm *TokenManager) generateToken(userID, email, role string, scope Scope, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tm.issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaim
	}

	return claims, nil
}

// ValidateTokenWithScope validates a token and requires it to carry the
// given scope. A session token never stands in for a registration or
// profile token, and vice versa.
func (tm *TokenManager) ValidateTokenWithScope(tokenString string, scope Scope) (*Claims, error) {
	claims, err := tm.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Scope != scope {
		return nil, ErrWrongScope
	}
	return claims, nil
}

// SessionTTL returns the session token lifetime
func (tm *TokenManager) SessionTTL() time.Duration {
	return tm.sessionTTL
}

// TimingSafeCompare performs a timing-safe comparison of two strings
// This prevents timing attacks when comparing tokens
func TimingSafeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
