package models

import "time"

// InterviewStatus tracks an interview through its lifecycle
type InterviewStatus string

const (
	InterviewPending   InterviewStatus = "pending"
	InterviewScheduled InterviewStatus = "scheduled"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
	InterviewRejected  InterviewStatus = "rejected"
)

// CanCancel reports whether a candidate may still cancel the interview.
// Only pending and scheduled interviews can be cancelled.
func (s InterviewStatus) CanCancel() bool {
	return s == InterviewPending || s == InterviewScheduled
}

// Interview represents a mock interview between a candidate and an interviewer
type Interview struct {
	ID            string          `json:"id"`
	CandidateID   string          `json:"candidateId"`
	InterviewerID string          `json:"interviewerId"`
	Status        InterviewStatus `json:"status"`
	Topic         string          `json:"topic,omitempty"`
	Message       string          `json:"message,omitempty"`
	PreferredDate string          `json:"preferredDate,omitempty"`
	PreferredTime string          `json:"preferredTime,omitempty"`
	StatusReason  string          `json:"statusReason,omitempty"`
	ScheduledAt   *time.Time      `json:"scheduledAt,omitempty"`
	RoomSlug      string          `json:"roomSlug,omitempty"`
	Feedback      *Feedback       `json:"feedback,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	// Denormalized names for list views
	CandidateName   string `json:"candidateName,omitempty"`
	InterviewerName string `json:"interviewerName,omitempty"`
}

// RecommendationLevel is the interviewer's hiring recommendation in feedback
var validRecommendationLevels = map[string]bool{
	"strong_yes": true,
	"yes":        true,
	"maybe":      true,
	"no":         true,
	"strong_no":  true,
}

// ValidRecommendationLevel reports whether the value is a known level
func ValidRecommendationLevel(level string) bool {
	return validRecommendationLevels[level]
}

// Feedback is the structured review an interviewer leaves after a
// completed interview
type Feedback struct {
	Rating              int       `json:"rating"`
	Strengths           string    `json:"strengths,omitempty"`
	AreasToImprove      string    `json:"areasToImprove,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	RecommendationLevel string    `json:"recommendationLevel"`
	SubmittedAt         time.Time `json:"submittedAt"`
}

// RequestInterviewRequest asks an interviewer for a mock interview. The
// preferred date and time are the candidate's wish; the interviewer picks
// the actual slot when approving.
type RequestInterviewRequest struct {
	InterviewerID string `json:"interviewerId" binding:"required,uuid"`
	Topic         string `json:"topic" binding:"omitempty,max=200"`
	Message       string `json:"message" binding:"omitempty,max=2000"`
	PreferredDate string `json:"preferredDate" binding:"omitempty,datetime=2006-01-02"`
	PreferredTime string `json:"preferredTime" binding:"omitempty,datetime=15:04"`
}

// RejectInterviewRequest declines a pending request, optionally saying why
type RejectInterviewRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=1000"`
}

// CancelInterviewRequest withdraws a request, optionally saying why
type CancelInterviewRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=1000"`
}

// ScheduleInterviewRequest approves a pending request with a concrete time
type ScheduleInterviewRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
}

// RescheduleInterviewRequest moves a scheduled interview to a new time
type RescheduleInterviewRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
}

// SubmitFeedbackRequest records feedback for a completed interview
type SubmitFeedbackRequest struct {
	Rating              int    `json:"rating" binding:"required,gte=1,lte=5"`
	Strengths           string `json:"strengths" binding:"omitempty,max=2000"`
	AreasToImprove      string `json:"areasToImprove" binding:"omitempty,max=2000"`
	Notes               string `json:"notes" binding:"omitempty,max=5000"`
	RecommendationLevel string `json:"recommendationLevel" binding:"required,oneof=strong_yes yes maybe no strong_no"`
}
