package models

import "strings"

// RegisterRequest starts the three-phase registration flow
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,max=50"`
	LastName  string `json:"lastName" binding:"required,max=50"`
	Gender    string `json:"gender" binding:"omitempty,oneof=male female other"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
}

// FullName joins the name parts the way they are stored
func (r *RegisterRequest) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// RegisterResponse returns the new account id and a short-lived token that
// only permits role selection
type RegisterResponse struct {
	UserID    string `json:"userId"`
	TempToken string `json:"tempToken"`
}

// SelectRoleRequest is the second registration phase. The profile picture
// is optional and stored immediately so it survives profile completion.
// UserID is optional; when sent it must match the token subject.
type SelectRoleRequest struct {
	UserID         string              `json:"userId" binding:"omitempty"`
	Role           string              `json:"role" binding:"required,oneof=candidate interviewer"`
	ProfilePicture *UploadPhotoRequest `json:"profilePicture" binding:"omitempty"`
}

// SelectRoleResponse returns a token that only permits profile completion
type SelectRoleResponse struct {
	UserID       string `json:"userId"`
	Role         string `json:"role"`
	ProfileToken string `json:"profileToken"`
}

// CompleteProfileRequest is the third registration phase. Role-specific
// fields are validated by the service depending on the chosen role.
// UserID is optional; when sent it must match the token subject.
type CompleteProfileRequest struct {
	UserID string `json:"userId" binding:"omitempty"`
	Phone  string `json:"phone" binding:"omitempty,max=20"`
	Gender string `json:"gender" binding:"omitempty,oneof=male female other"`

	// Candidate fields
	College        string         `json:"college" binding:"omitempty,max=200"`
	GraduationYear int            `json:"graduationYear" binding:"omitempty,gte=1950,lte=2100"`
	Skills         []string       `json:"skills" binding:"omitempty,max=10"`
	PreferredRoles []string       `json:"preferredRoles" binding:"omitempty,max=5"`
	CodingProfiles CodingProfiles `json:"codingProfiles"`

	// Interviewer fields
	CurrentCompany  string             `json:"currentCompany" binding:"omitempty,max=200"`
	Designation     string             `json:"designation" binding:"omitempty,max=200"`
	ExperienceYears int                `json:"experienceYears" binding:"omitempty,gte=0,lte=60"`
	Expertise       []string           `json:"expertise" binding:"omitempty,max=10,dive,max=50"`
	Bio             string             `json:"bio" binding:"omitempty,max=5000"`
	Availability    []AvailabilitySlot `json:"availability" binding:"omitempty,max=21"`
}

// AuthResponse is returned after profile completion and after login
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// LoginRequest authenticates an existing account
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
