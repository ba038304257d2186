package models

// UpdateCandidateProfileRequest edits the basic fields of a candidate profile
type UpdateCandidateProfileRequest struct {
	FullName       string `json:"fullName" binding:"omitempty,max=100"`
	Phone          string `json:"phone" binding:"omitempty,max=20"`
	Gender         string `json:"gender" binding:"omitempty,oneof=male female other"`
	College        string `json:"college" binding:"omitempty,max=200"`
	GraduationYear int    `json:"graduationYear" binding:"omitempty,gte=1950,lte=2100"`
}

// UpdateInterviewerProfileRequest edits the basic fields of an interviewer profile
type UpdateInterviewerProfileRequest struct {
	FullName string `json:"fullName" binding:"omitempty,max=100"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Gender   string `json:"gender" binding:"omitempty,oneof=male female other"`
	Bio      string `json:"bio" binding:"omitempty,max=5000"`
}

// UpdateSkillsRequest replaces a candidate's skill list
type UpdateSkillsRequest struct {
	Skills []string `json:"skills" binding:"required,min=1,max=10"`
}

// UpdatePreferredRolesRequest replaces a candidate's preferred roles
type UpdatePreferredRolesRequest struct {
	PreferredRoles []string `json:"preferredRoles" binding:"required,min=1,max=5"`
}

// UpdateCodingProfilesRequest replaces a candidate's coding profile links
type UpdateCodingProfilesRequest struct {
	CodingProfiles CodingProfiles `json:"codingProfiles" binding:"required"`
}

// UploadResumeRequest carries a base64-encoded resume document
type UploadResumeRequest struct {
	FileName    string `json:"fileName" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required"`
	Data        string `json:"data" binding:"required"`
}

// UploadPhotoRequest carries a base64-encoded profile photo
type UploadPhotoRequest struct {
	Image       string `json:"image" binding:"required"`
	FileName    string `json:"fileName" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required"`
}

// UpdateExpertiseRequest replaces an interviewer's expertise areas
type UpdateExpertiseRequest struct {
	Expertise       []string `json:"expertise" binding:"required,min=1,max=10,dive,max=50"`
	ExperienceYears int      `json:"experienceYears" binding:"omitempty,gte=0,lte=60"`
}

// UpdateCompanyInfoRequest replaces an interviewer's employer details
type UpdateCompanyInfoRequest struct {
	CurrentCompany string `json:"currentCompany" binding:"required,max=200"`
	Designation    string `json:"designation" binding:"required,max=200"`
}

// UpdateAvailabilityRequest replaces an interviewer's weekly availability
type UpdateAvailabilityRequest struct {
	Availability []AvailabilitySlot `json:"availability" binding:"required,max=21"`
}

// BlockDateRequest marks a single calendar day as unavailable, or lifts
// the block again
type BlockDateRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
}

// AvailabilitySchedule is the interviewer's own view of their schedule
type AvailabilitySchedule struct {
	Availability []AvailabilitySlot `json:"availability"`
	BlockedDates []string           `json:"blockedDates"`
}
