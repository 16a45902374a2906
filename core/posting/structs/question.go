package structs

// QuestionType separates catalogue questions from employer questions.
type QuestionType string

const (
	QuestionSystem QuestionType = "SYSTEM"
	QuestionCustom QuestionType = "CUSTOM"
)

// AnswerType is the shape of the expected answer.
type AnswerType string

const (
	AnswerText         AnswerType = "TEXT"
	AnswerNumber       AnswerType = "NUMBER"
	AnswerBoolean      AnswerType = "BOOLEAN"
	AnswerSingleChoice AnswerType = "SINGLE_CHOICE"
	AnswerMultiChoice  AnswerType = "MULTI_CHOICE"
)

// Requirement is the per-posting policy of a question.
type Requirement string

const (
	RequirementRequired Requirement = "REQUIRED"
	RequirementOptional Requirement = "OPTIONAL"
	RequirementHidden   Requirement = "HIDDEN"
)

// Valid reports whether r is a known requirement.
func (r Requirement) Valid() bool {
	switch r {
	case RequirementRequired, RequirementOptional, RequirementHidden:
		return true
	}
	return false
}

// ScreeningQuestion is one question of a posting's question set. System
// questions use their catalogue key as QuestionID.
type ScreeningQuestion struct {
	JobPostingID string       `json:"-"`
	QuestionType QuestionType `json:"question_type"`
	QuestionID   string       `json:"question_id"`
	AnswerType   AnswerType   `json:"answer_type"`
	Prompt       string       `json:"prompt"`
	Options      []string     `json:"options,omitempty"`
	Requirement  Requirement  `json:"requirement"`
	Position     int          `json:"position"`
}

// Key identifies the question within its set.
func (q *ScreeningQuestion) Key() QuestionKey {
	return QuestionKey{Type: q.QuestionType, ID: q.QuestionID}
}

// QuestionKey is the (questionType, questionId) pair answers are keyed by.
type QuestionKey struct {
	Type QuestionType
	ID   string
}

func (k QuestionKey) String() string {
	return string(k.Type) + ":" + k.ID
}

// SystemQuestion is a catalogue entry compiled into the service.
type SystemQuestion struct {
	Key        string
	AnswerType AnswerType
	Prompt     string
}

// SystemQuestions is the fixed catalogue, in display order.
var SystemQuestions = []SystemQuestion{
	{Key: "full_name", AnswerType: AnswerText, Prompt: "Full name"},
	{Key: "email", AnswerType: AnswerText, Prompt: "Email address"},
	{Key: "phone", AnswerType: AnswerText, Prompt: "Phone number"},
	{Key: "resume_url", AnswerType: AnswerText, Prompt: "Link to your resume"},
	{Key: "years_experience", AnswerType: AnswerNumber, Prompt: "Years of relevant experience"},
	{Key: "work_authorization", AnswerType: AnswerBoolean, Prompt: "Are you authorized to work in this location?"},
}

// LookupSystemQuestion finds a catalogue entry by key.
func LookupSystemQuestion(key string) (SystemQuestion, bool) {
	for _, q := range SystemQuestions {
		if q.Key == key {
			return q, true
		}
	}
	return SystemQuestion{}, false
}

// QuestionSet is every question of a posting with its requirement policy.
type QuestionSet struct {
	JobPostingID string               `json:"job_posting_id"`
	Questions    []*ScreeningQuestion `json:"questions"`
}

// Visible returns the questions shown to candidates.
func (s *QuestionSet) Visible() []*ScreeningQuestion {
	out := make([]*ScreeningQuestion, 0, len(s.Questions))
	for _, q := range s.Questions {
		if q.Requirement != RequirementHidden {
			out = append(out, q)
		}
	}
	return out
}

// Lookup returns the question identified by key.
func (s *QuestionSet) Lookup(key QuestionKey) (*ScreeningQuestion, bool) {
	for _, q := range s.Questions {
		if q.Key() == key {
			return q, true
		}
	}
	return nil, false
}
