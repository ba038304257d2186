package models

import (
	"regexp"
	"time"
)

// Role identifies which side of the marketplace a user is on
type Role string

const (
	RoleCandidate   Role = "candidate"
	RoleInterviewer Role = "interviewer"
)

// ValidRole reports whether the role is one of the two marketplace roles
func ValidRole(r string) bool {
	return r == string(RoleCandidate) || r == string(RoleInterviewer)
}

// RegistrationState tracks how far a user has progressed through the
// three-phase registration flow
type RegistrationState string

const (
	// RegistrationPendingRole means the account exists but no role was chosen yet
	RegistrationPendingRole RegistrationState = "pending_role"
	// RegistrationPendingProfile means a role was chosen but the profile is incomplete
	RegistrationPendingProfile RegistrationState = "pending_profile"
	// RegistrationActive means registration is complete
	RegistrationActive RegistrationState = "active"
)

// SupportedSkills is the closed set of skills a candidate may list
var SupportedSkills = []string{"JavaScript", "Python", "Java", "C++", "Ruby", "Go"}

// SupportedPreferredRoles is the closed set of target roles a candidate may list
var SupportedPreferredRoles = []string{
	"Frontend Developer",
	"Backend Developer",
	"Full Stack Developer",
	"Data Scientist",
}

// ValidateSkills returns the entries that are not in the supported skill set
func ValidateSkills(skills []string) []string {
	return invalidEntries(skills, SupportedSkills)
}

// ValidatePreferredRoles returns the entries that are not in the supported role set
func ValidatePreferredRoles(roles []string) []string {
	return invalidEntries(roles, SupportedPreferredRoles)
}

func invalidEntries(entries, allowed []string) []string {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = struct{}{}
	}

	invalid := []string{}
	for _, e := range entries {
		if _, ok := allowedSet[e]; !ok {
			invalid = append(invalid, e)
		}
	}
	return invalid
}

// User represents an account in the system. PasswordHash never leaves the
// repository layer in API responses.
type User struct {
	ID                string            `json:"id"`
	Email             string            `json:"email"`
	PasswordHash      string            `json:"-"`
	FullName          string            `json:"fullName"`
	Gender            string            `json:"gender,omitempty"`
	Role              Role              `json:"role,omitempty"`
	RegistrationState RegistrationState `json:"registrationState"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`

	// Exactly one of these is populated once registration completes
	CandidateProfile   *CandidateProfile   `json:"candidateProfile,omitempty"`
	InterviewerProfile *InterviewerProfile `json:"interviewerProfile,omitempty"`
}

// CandidateProfile holds the candidate side of a completed profile
type CandidateProfile struct {
	Phone           string         `json:"phone,omitempty"`
	Gender          string         `json:"gender,omitempty"`
	College         string         `json:"college,omitempty"`
	GraduationYear  int            `json:"graduationYear,omitempty"`
	Skills          []string       `json:"skills"`
	PreferredRoles  []string       `json:"preferredRoles"`
	ResumeURL       string         `json:"resumeUrl,omitempty"`
	PhotoURL        string         `json:"photoUrl,omitempty"`
	CodingProfiles  CodingProfiles `json:"codingProfiles"`
	PlanID          string         `json:"planId,omitempty"`
	PlanActivatedAt *time.Time     `json:"planActivatedAt,omitempty"`
}

// CodingProfiles holds links to external competitive programming profiles
type CodingProfiles struct {
	LeetCode      string `json:"leetcode,omitempty"`
	Codeforces    string `json:"codeforces,omitempty"`
	CodeChef      string `json:"codechef,omitempty"`
	GitHub        string `json:"github,omitempty"`
	HackerRank    string `json:"hackerrank,omitempty"`
	PortfolioSite string `json:"portfolioSite,omitempty"`
}

// InterviewerProfile holds the interviewer side of a completed profile
type InterviewerProfile struct {
	Phone           string             `json:"phone,omitempty"`
	Gender          string             `json:"gender,omitempty"`
	CurrentCompany  string             `json:"currentCompany,omitempty"`
	Designation     string             `json:"designation,omitempty"`
	ExperienceYears int                `json:"experienceYears,omitempty"`
	Expertise       []string           `json:"expertise"`
	Bio             string             `json:"bio,omitempty"`
	PhotoURL        string             `json:"photoUrl,omitempty"`
	Availability    []AvailabilitySlot `json:"availability"`

	// BlockedDates are concrete days the interviewer has taken out of the
	// weekly schedule, as zero-padded YYYY-MM-DD strings
	BlockedDates []string `json:"blockedDates,omitempty"`
}

// validGenders matches what profile completion accepts
var validGenders = map[string]bool{"male": true, "female": true, "other": true}

// ValidGender reports whether the value is an accepted gender. Empty is
// allowed since the field is optional.
func ValidGender(g string) bool {
	return g == "" || validGenders[g]
}

// AvailabilitySlot is a weekly recurring window an interviewer is open for
// interviews
type AvailabilitySlot struct {
	Day       string `json:"day" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

var validDays = map[string]bool{
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
}

// timeOfDayRegex matches 24-hour HH:MM times
var timeOfDayRegex = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// Validate checks the slot's day name and time window.
// End time must be strictly after start time; HH:MM strings compare
// correctly as strings because both are zero-padded.
func (s AvailabilitySlot) Validate() error {
	if !validDays[s.Day] {
		return &SlotValidationError{Field: "day", Value: s.Day}
	}
	if !timeOfDayRegex.MatchString(s.StartTime) {
		return &SlotValidationError{Field: "startTime", Value: s.StartTime}
	}
	if !timeOfDayRegex.MatchString(s.EndTime) {
		return &SlotValidationError{Field: "endTime", Value: s.EndTime}
	}
	if s.EndTime <= s.StartTime {
		return &SlotValidationError{Field: "endTime", Value: s.EndTime, Reason: "end time must be after start time"}
	}
	return nil
}

// SlotValidationError describes why an availability slot was rejected
type SlotValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *SlotValidationError) Error() string {
	if e.Reason != "" {
		return "invalid " + e.Field + ": " + e.Reason
	}
	return "invalid " + e.Field + ": " + e.Value
}

// PublicInterviewer is the directory listing form of an interviewer,
// stripped of contact details
type PublicInterviewer struct {
	ID              string             `json:"id"`
	FullName        string             `json:"fullName"`
	CurrentCompany  string             `json:"currentCompany,omitempty"`
	Designation     string             `json:"designation,omitempty"`
	ExperienceYears int                `json:"experienceYears,omitempty"`
	Expertise       []string           `json:"expertise"`
	Bio             string             `json:"bio,omitempty"`
	PhotoURL        string             `json:"photoUrl,omitempty"`
	Availability    []AvailabilitySlot `json:"availability"`
	BlockedDates    []string           `json:"blockedDates,omitempty"`
}

// ToPublicInterviewer converts a user with an interviewer profile to its
// directory listing form
func (u *User) ToPublicInterviewer() PublicInterviewer {
	p := PublicInterviewer{
		ID:        u.ID,
		FullName:  u.FullName,
		Expertise: []string{},
	}
	if u.InterviewerProfile != nil {
		p.CurrentCompany = u.InterviewerProfile.CurrentCompany
		p.Designation = u.InterviewerProfile.Designation
		p.ExperienceYears = u.InterviewerProfile.ExperienceYears
		if u.InterviewerProfile.Expertise != nil {
			p.Expertise = u.InterviewerProfile.Expertise
		}
		p.Bio = u.InterviewerProfile.Bio
		p.PhotoURL = u.InterviewerProfile.PhotoURL
		p.Availability = u.InterviewerProfile.Availability
		p.BlockedDates = u.InterviewerProfile.BlockedDates
	}
	return p
}
