package models

import "time"

// ApplicationStatus tracks a candidate's application through the hiring funnel
type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "Applied"
	ApplicationShortlisted ApplicationStatus = "Shortlisted"
	ApplicationSelected    ApplicationStatus = "Selected"
	ApplicationRejected    ApplicationStatus = "Rejected"
)

// allowedApplicationTransitions defines the forward-only hiring funnel.
// Rejected is reachable from any non-terminal status.
var allowedApplicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationApplied:     {ApplicationShortlisted, ApplicationRejected},
	ApplicationShortlisted: {ApplicationSelected, ApplicationRejected},
	ApplicationSelected:    {},
	ApplicationRejected:    {},
}

// CanTransitionTo reports whether the status may move to the target status
func (s ApplicationStatus) CanTransitionTo(target ApplicationStatus) bool {
	for _, t := range allowedApplicationTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Job represents a posting created by an interviewer on behalf of a company
type Job struct {
	ID             string    `json:"id"`
	PostedBy       string    `json:"postedBy"`
	CompanyName    string    `json:"companyName"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location,omitempty"`
	SalaryRange    string    `json:"salaryRange,omitempty"`
	RequiredSkills []string  `json:"requiredSkills"`
	PreferredRole  string    `json:"preferredRole,omitempty"`
	MinExperience  int       `json:"minExperience,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// JobApplication joins a candidate to a posting
type JobApplication struct {
	ID          string            `json:"id"`
	JobID       string            `json:"jobId"`
	CandidateID string            `json:"candidateId"`
	Status      ApplicationStatus `json:"status"`
	AppliedAt   time.Time         `json:"appliedAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// CreateJobRequest creates a new posting
type CreateJobRequest struct {
	CompanyName    string   `json:"companyName" binding:"required,max=200"`
	Title          string   `json:"title" binding:"required,max=200"`
	Description    string   `json:"description" binding:"required,max=10000"`
	Location       string   `json:"location" binding:"omitempty,max=200"`
	SalaryRange    string   `json:"salaryRange" binding:"omitempty,max=100"`
	RequiredSkills []string `json:"requiredSkills" binding:"required,min=1,max=10"`
	PreferredRole  string   `json:"preferredRole" binding:"omitempty,max=100"`
	MinExperience  int      `json:"minExperience" binding:"omitempty,gte=0,lte=60"`
}

// UpdateApplicationStatusRequest moves an application along the funnel
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Shortlisted Selected Rejected"`
}

// JobWithApplication is a posting annotated with the requesting candidate's
// application status, if any
type JobWithApplication struct {
	Job               Job    `json:"job"`
	ApplicationStatus string `json:"applicationStatus,omitempty"`
}
