package models

// Session is the authenticated caller extracted from a validated token
type Session struct {
	UserID            string            `json:"userId"`
	Email             string            `json:"email"`
	Role              Role              `json:"role,omitempty"`
	RegistrationState RegistrationState `json:"registrationState,omitempty"`
	ExpiresAt         int64             `json:"expiresAt"`
	IssuedAt          int64             `json:"issuedAt"`
}
