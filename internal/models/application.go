package models

import (
	"time"

	"github.com/lib/pq"
)

// ApplicationStatus enumerates the teacher application lifecycle.
//
//	pending -> under_review -> approved | rejected
//	pending -> approved | rejected
//
// approved and rejected are terminal.
type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationUnderReview ApplicationStatus = "under_review"
	ApplicationApproved    ApplicationStatus = "approved"
	ApplicationRejected    ApplicationStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

// ReviewAction is the admin verb applied to an application.
type ReviewAction string

const (
	ReviewApprove     ReviewAction = "approve"
	ReviewReject      ReviewAction = "reject"
	ReviewUnderReview ReviewAction = "under_review"
)

// DefaultRejectionReason is recorded when an admin rejects without a reason.
const DefaultRejectionReason = "Application does not meet requirements"

// TeacherApplication is a student's request to be granted the teacher role.
type TeacherApplication struct {
	ID               string            `db:"id" json:"id"`
	UserID           string            `db:"user_id" json:"user_id"`
	FullName         string            `db:"full_name" json:"full_name"`
	Email            string            `db:"email" json:"email"`
	Qualifications   string            `db:"qualifications" json:"qualifications"`
	ExperienceYears  int               `db:"experience_years" json:"experience_years"`
	TeachingSubjects pq.StringArray    `db:"teaching_subjects" json:"teaching_subjects"`
	CVURL            *string           `db:"cv_url" json:"cv_url,omitempty"`
	CoverLetter      string            `db:"cover_letter" json:"cover_letter"`
	Status           ApplicationStatus `db:"status" json:"status"`
	RejectionReason  *string           `db:"rejection_reason" json:"rejection_reason,omitempty"`
	AppliedAt        time.Time         `db:"applied_at" json:"applied_at"`
	ReviewedAt       *time.Time        `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy       *string           `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewerName     *string           `db:"reviewer_name" json:"reviewer_name,omitempty"`
}

// ApplicationFilter narrows admin application listings.
type ApplicationFilter struct {
	Status   *ApplicationStatus
	Page     int
	PageSize int
}
