// Package structs defines job posting, purchase and screening question models.
package structs

import (
	"math"
	"time"
)

// Status is the publication status of a job posting.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusClosed    Status = "CLOSED"
	StatusArchived  Status = "ARCHIVED"
)

// PaymentStatus is the settlement status of a purchase.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// ValidityWindow is how long a paid posting stays valid.
const ValidityWindow = 30 * 24 * time.Hour

// JobPosting is an employer-authored job advertisement.
type JobPosting struct {
	ID             string     `json:"id"`
	OwnerUserID    string     `json:"owner_user_id"`
	OrganizationID string     `json:"organization_id,omitempty"`
	Status         Status     `json:"status"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description"`
	Location       string     `json:"location"`
	EmploymentType string     `json:"employment_type"`
	SalaryMin      *int64     `json:"salary_min,omitempty"`
	SalaryMax      *int64     `json:"salary_max,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// PurchaseRecord is the single payment record of a job posting.
type PurchaseRecord struct {
	ID            string        `json:"id"`
	JobPostingID  string        `json:"job_posting_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	AmountCents   int64         `json:"amount"`
	Currency      string        `json:"currency"`
	SessionID     string        `json:"session_id,omitempty"`
	SessionURL    string        `json:"session_url,omitempty"`
	ProviderRef   string        `json:"provider_ref,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	ExpiresAt     *time.Time    `json:"expires_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsExpired reports whether the validity window ended before now. A record
// without expiry never expires.
func (r *PurchaseRecord) IsExpired(now time.Time) bool {
	return r != nil && r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// IsActive reports a successful, unexpired purchase.
func (r *PurchaseRecord) IsActive(now time.Time) bool {
	return r != nil && r.PaymentStatus == PaymentSucceeded && !r.IsExpired(now)
}

// ExpiryInfo summarizes a posting's validity window.
type ExpiryInfo struct {
	IsExpired     bool       `json:"is_expired"`
	DaysRemaining int        `json:"days_remaining"`
	HasExpiry     bool       `json:"has_expiry"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// ExpiryOf computes the expiry view of rec at now. rec may be nil.
func ExpiryOf(rec *PurchaseRecord, now time.Time) ExpiryInfo {
	if rec == nil || rec.ExpiresAt == nil {
		return ExpiryInfo{}
	}
	info := ExpiryInfo{HasExpiry: true, ExpiresAt: rec.ExpiresAt}
	if rec.IsExpired(now) {
		info.IsExpired = true
		return info
	}
	remaining := rec.ExpiresAt.Sub(now)
	info.DaysRemaining = int(math.Ceil(remaining.Hours() / 24))
	return info
}

// PurchaseView is the purchase status returned to the owner.
type PurchaseView struct {
	*PurchaseRecord
	Expiry ExpiryInfo `json:"expiry"`
}

// PurchaseSession is the checkout handle returned by a purchase call.
type PurchaseSession struct {
	PurchaseID    string        `json:"purchase_id"`
	JobPostingID  string        `json:"job_posting_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	SessionID     string        `json:"session_id"`
	SessionURL    string        `json:"session_url"`
	// Reused is true when an already open session was returned.
	Reused bool `json:"reused"`
}

// Settlement is a payment outcome reported by the provider.
type Settlement struct {
	SessionID   string `json:"session_id"`
	ProviderRef string `json:"provider_ref"`
	Succeeded   bool   `json:"succeeded"`
}

// SweepResult lists the postings closed by one sweep.
type SweepResult struct {
	ClosedCount int      `json:"closed_count"`
	ClosedIDs   []string `json:"closed_ids"`
}

// CreatePostingRequest creates a DRAFT posting.
type CreatePostingRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"max=20000"`
	Location       string `json:"location" validate:"max=200"`
	EmploymentType string `json:"employment_type" validate:"omitempty,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP TEMPORARY"`
	OrganizationID string `json:"organization_id" validate:"omitempty,max=64"`
	SalaryMin      *int64 `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax      *int64 `json:"salary_max" validate:"omitempty,gte=0"`
	// SystemQuestions maps catalogue keys to a requirement; unlisted
	// questions default to OPTIONAL.
	SystemQuestions map[string]Requirement `json:"system_questions"`
	CustomQuestions []*CustomQuestionInput `json:"custom_questions" validate:"max=50,dive"`
}

// CustomQuestionInput defines one employer question.
type CustomQuestionInput struct {
	Prompt      string      `json:"prompt" validate:"required,max=1000"`
	AnswerType  AnswerType  `json:"answer_type" validate:"required,oneof=TEXT NUMBER BOOLEAN SINGLE_CHOICE MULTI_CHOICE"`
	Options     []string    `json:"options" validate:"max=50"`
	Requirement Requirement `json:"requirement" validate:"omitempty,oneof=REQUIRED OPTIONAL HIDDEN"`
}

// PostingPatch lists every editable field. A nil field is left untouched,
// a non-nil field is written, including zero values.
type PostingPatch struct {
	Title          *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description    *string `json:"description" validate:"omitempty,max=20000"`
	Location       *string `json:"location" validate:"omitempty,max=200"`
	EmploymentType *string `json:"employment_type" validate:"omitempty,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP TEMPORARY"`
	SalaryMin      *int64  `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax      *int64  `json:"salary_max" validate:"omitempty,gte=0"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *PostingPatch) IsEmpty() bool {
	return p == nil || (p.Title == nil && p.Description == nil && p.Location == nil &&
		p.EmploymentType == nil && p.SalaryMin == nil && p.SalaryMax == nil)
}
