// Package structs defines candidate invitations and screening responses.
package structs

import (
	"encoding/json"
	"time"

	posting "github.com/ncobase/recruit/core/posting/structs"
)

// Status is the lifecycle status of an invitation.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusViewed    Status = "VIEWED"
	StatusCompleted Status = "COMPLETED"
	StatusExpired   Status = "EXPIRED"
)

// CandidateInvitation is a time-boxed, token-addressed request for a
// candidate to answer a posting's screening questions.
type CandidateInvitation struct {
	ID             string     `json:"id"`
	JobPostingID   string     `json:"job_posting_id"`
	Token          string     `json:"token"`
	CandidateName  string     `json:"candidate_name"`
	CandidateEmail string     `json:"candidate_email"`
	Message        string     `json:"message,omitempty"`
	Status         Status     `json:"status"`
	SentAt         time.Time  `json:"sent_at"`
	ViewedAt       *time.Time `json:"viewed_at,omitempty"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	ExpiresAt      time.Time  `json:"expires_at"`
	CreatedBy      string     `json:"created_by"`
}

// IsExpired reports whether now is past the validity window.
func (i *CandidateInvitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IssueRequest invites one candidate. ValidityDays of 0 uses the configured
// default.
type IssueRequest struct {
	CandidateName  string `json:"candidate_name" validate:"required,max=200"`
	CandidateEmail string `json:"candidate_email" validate:"required,email,max=320"`
	Message        string `json:"message" validate:"max=5000"`
	ValidityDays   int    `json:"validity_days" validate:"gte=0"`
}

// Answer is a tagged union keyed by Type. Exactly the field matching Type
// is read; Extra is kept verbatim for client extensions.
type Answer struct {
	Type    posting.AnswerType `json:"type"`
	Text    *string            `json:"text,omitempty"`
	Number  *float64           `json:"number,omitempty"`
	Bool    *bool              `json:"bool,omitempty"`
	Choices []string           `json:"choices,omitempty"`
	Extra   json.RawMessage    `json:"extra,omitempty"`
}

// ResponseInput is one submitted answer.
type ResponseInput struct {
	QuestionType posting.QuestionType `json:"question_type"`
	QuestionID   string               `json:"question_id"`
	Answer       Answer               `json:"answer"`
}

// Key returns the question the answer is for.
func (r *ResponseInput) Key() posting.QuestionKey {
	return posting.QuestionKey{Type: r.QuestionType, ID: r.QuestionID}
}

// SubmitRequest replaces every stored response of an invitation.
type SubmitRequest struct {
	Responses []*ResponseInput `json:"responses"`
}

// ScreeningResponse is a stored answer.
type ScreeningResponse struct {
	InvitationID string               `json:"-"`
	QuestionType posting.QuestionType `json:"question_type"`
	QuestionID   string               `json:"question_id"`
	AnswerType   posting.AnswerType   `json:"answer_type"`
	Answer       Answer               `json:"answer"`
	CreatedAt    time.Time            `json:"created_at"`
}

// Key returns the question the response answers.
func (r *ScreeningResponse) Key() posting.QuestionKey {
	return posting.QuestionKey{Type: r.QuestionType, ID: r.QuestionID}
}

// PublicInvitation is the invitation as shown to the candidate.
type PublicInvitation struct {
	ID            string    `json:"id"`
	JobPostingID  string    `json:"job_posting_id"`
	JobTitle      string    `json:"job_title"`
	CandidateName string    `json:"candidate_name"`
	Message       string    `json:"message,omitempty"`
	Status        Status    `json:"status"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// InvitationView is returned by resolve: metadata, the visible questions
// and previously stored responses keyed by "TYPE:id".
type InvitationView struct {
	Invitation *PublicInvitation             `json:"invitation"`
	Questions  []*posting.ScreeningQuestion  `json:"questions"`
	Responses  map[string]*ScreeningResponse `json:"responses"`
}

// SubmitResult reports a stored submission.
type SubmitResult struct {
	Stored int    `json:"stored"`
	Status Status `json:"status"`
}
