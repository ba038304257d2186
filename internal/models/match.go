package models

// MatchResult ranks a candidate against a job posting
type MatchResult struct {
	CandidateID    string   `json:"candidateId"`
	FullName       string   `json:"fullName"`
	Score          float64  `json:"score"`
	MatchedSkills  []string `json:"matchedSkills"`
	RoleMatch      bool     `json:"roleMatch"`
	ResumeURL      string   `json:"resumeUrl,omitempty"`
	College        string   `json:"college,omitempty"`
	GraduationYear int      `json:"graduationYear,omitempty"`
}

// CandidateSearchFilter narrows the interviewer-facing candidate search
type CandidateSearchFilter struct {
	Skill         string `form:"skill"`
	PreferredRole string `form:"preferredRole"`
	College       string `form:"college"`
	Query         string `form:"q"`
	Limit         int    `form:"limit"`
	Offset        int    `form:"offset"`
}
