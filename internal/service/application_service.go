package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/TravisChandler1/ewaede/internal/models"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
)

type applicationRepository interface {
	Create(ctx context.Context, app *models.TeacherApplication) error
	FindByID(ctx context.Context, id string) (*models.TeacherApplication, error)
	FindLatestByUser(ctx context.Context, userID string) (*models.TeacherApplication, error)
	FindActiveByUser(ctx context.Context, userID string) (*models.TeacherApplication, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.TeacherApplication, int, error)
	UpdateReview(ctx context.Context, id string, status models.ApplicationStatus, reviewedBy string, reason *string, reviewedAt time.Time) error
}

type applicationProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateRole(ctx context.Context, userID string, role models.UserRole) error
}

type applicationAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SubmitApplicationRequest is the applicant payload. cv_url is validated as a
// URI, not a URL: the platform's own signed download links are scheme-less
// paths.
type SubmitApplicationRequest struct {
	Qualifications   string   `json:"qualifications" validate:"required"`
	ExperienceYears  int      `json:"experience_years" validate:"gte=0"`
	TeachingSubjects []string `json:"teaching_subjects" validate:"required,min=1"`
	CVURL            *string  `json:"cv_url,omitempty" validate:"omitempty,uri"`
	CoverLetter      string   `json:"cover_letter" validate:"required"`
}

// ReviewApplicationRequest is the admin review payload.
type ReviewApplicationRequest struct {
	Action models.ReviewAction `json:"action" validate:"required,oneof=approve reject under_review"`
	Reason *string             `json:"reason,omitempty"`
}

// ApplicationService implements the teacher application lifecycle.
type ApplicationService struct {
	repo      applicationRepository
	profiles  applicationProfileRepository
	audits    applicationAuditRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService constructs an ApplicationService instance.
func NewApplicationService(repo applicationRepository, profiles applicationProfileRepository, audits applicationAuditRepository, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ApplicationService{repo: repo, profiles: profiles, audits: audits, validator: validate, logger: logger}
}

// Submit creates a pending application for the caller. At most one open
// (pending or under review) application is allowed per applicant; a second
// submission is a conflict. A fresh application after a terminal decision is
// allowed.
func (s *ApplicationService) Submit(ctx context.Context, userID string, req SubmitApplicationRequest) (*models.TeacherApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	if profile.Role == models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrConflict, "you already hold the teacher role")
	}

	if _, err := s.repo.FindActiveByUser(ctx, userID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "you already have an application under review")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing applications")
	}

	app := &models.TeacherApplication{
		UserID:           userID,
		FullName:         profile.FullName,
		Email:            profile.Email,
		Qualifications:   req.Qualifications,
		ExperienceYears:  req.ExperienceYears,
		TeachingSubjects: req.TeachingSubjects,
		CVURL:            req.CVURL,
		CoverLetter:      req.CoverLetter,
		Status:           models.ApplicationPending,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.audit(ctx, userID, models.AuditActionApplicationSubmit, app.ID, map[string]interface{}{"status": app.Status})

	return app, nil
}

// Status returns the caller's most recent application, or nil when none
// exists.
func (s *ApplicationService) Status(ctx context.Context, userID string) (*models.TeacherApplication, error) {
	app, err := s.repo.FindLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

// List returns applications for the admin back office.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.TeacherApplication, int, error) {
	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, total, nil
}

// Get returns a single application for the admin back office.
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.TeacherApplication, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

// Review applies an admin decision. Approving flips the applicant's profile
// role to teacher; rejecting always records a reason, falling back to the
// default when none is given. Terminal applications cannot be reviewed again.
func (s *ApplicationService) Review(ctx context.Context, id, reviewerID string, req ReviewApplicationRequest) (*models.TeacherApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	if app.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application has already been decided")
	}

	now := time.Now().UTC()
	var (
		status models.ApplicationStatus
		reason *string
		action string
	)

	switch req.Action {
	case models.ReviewApprove:
		status = models.ApplicationApproved
		action = models.AuditActionApplicationApprove
	case models.ReviewReject:
		status = models.ApplicationRejected
		action = models.AuditActionApplicationReject
		r := models.DefaultRejectionReason
		if req.Reason != nil && *req.Reason != "" {
			r = *req.Reason
		}
		reason = &r
	case models.ReviewUnderReview:
		if app.Status != models.ApplicationPending {
			return nil, appErrors.Clone(appErrors.ErrConflict, "application is already under review")
		}
		status = models.ApplicationUnderReview
		action = models.AuditActionApplicationReview
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown review action")
	}

	if err := s.repo.UpdateReview(ctx, id, status, reviewerID, reason, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}

	if status == models.ApplicationApproved {
		if err := s.profiles.UpdateRole(ctx, app.UserID, models.RoleTeacher); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grant teacher role")
		}
	}

	s.audit(ctx, reviewerID, action, app.ID, map[string]interface{}{
		"applicant": app.UserID,
		"from":      app.Status,
		"to":        status,
	})

	app.Status = status
	app.RejectionReason = reason
	app.ReviewedAt = &now
	app.ReviewedBy = &reviewerID
	return app, nil
}

func (s *ApplicationService) audit(ctx context.Context, userID, action, resourceID string, values map[string]interface{}) {
	body, _ := json.Marshal(values)
	if err := s.audits.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "teacher_application",
		ResourceID: &resourceID,
		NewValues:  body,
	}); err != nil {
		s.logger.Warn("failed to record application audit log", zap.Error(err))
	}
}
