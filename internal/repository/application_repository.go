package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/TravisChandler1/ewaede/internal/models"
)

const applicationColumns = `ta.id, ta.user_id, ta.full_name, ta.email, ta.qualifications, ta.experience_years, ta.teaching_subjects, ta.cv_url, ta.cover_letter, ta.status, ta.rejection_reason, ta.applied_at, ta.reviewed_at, ta.reviewed_by`

// ApplicationRepository provides database access for teacher applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new instance of ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application in pending status.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.TeacherApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now().UTC()
	}
	if app.Status == "" {
		app.Status = models.ApplicationPending
	}

	const query = `INSERT INTO teacher_applications (id, user_id, full_name, email, qualifications, experience_years, teaching_subjects, cv_url, cover_letter, status, applied_at) VALUES (:id, :user_id, :full_name, :email, :qualifications, :experience_years, :teaching_subjects, :cv_url, :cover_letter, :status, :applied_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindByID returns an application with its reviewer name resolved.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.TeacherApplication, error) {
	query := fmt.Sprintf(`SELECT %s, rp.full_name AS reviewer_name FROM teacher_applications ta LEFT JOIN user_profiles rp ON rp.user_id = ta.reviewed_by WHERE ta.id = $1 LIMIT 1`, applicationColumns)
	var app models.TeacherApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return &app, nil
}

// FindLatestByUser returns the most recent application submitted by a user.
func (r *ApplicationRepository) FindLatestByUser(ctx context.Context, userID string) (*models.TeacherApplication, error) {
	query := fmt.Sprintf(`SELECT %s, rp.full_name AS reviewer_name FROM teacher_applications ta LEFT JOIN user_profiles rp ON rp.user_id = ta.reviewed_by WHERE ta.user_id = $1 ORDER BY ta.applied_at DESC LIMIT 1`, applicationColumns)
	var app models.TeacherApplication
	if err := r.db.GetContext(ctx, &app, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find latest application: %w", err)
	}
	return &app, nil
}

// FindActiveByUser returns an open application (pending or under review) for
// the user, or sql.ErrNoRows when none exists.
func (r *ApplicationRepository) FindActiveByUser(ctx context.Context, userID string) (*models.TeacherApplication, error) {
	query := fmt.Sprintf(`SELECT %s, NULL AS reviewer_name FROM teacher_applications ta WHERE ta.user_id = $1 AND ta.status IN ('pending', 'under_review') ORDER BY ta.applied_at DESC LIMIT 1`, applicationColumns)
	var app models.TeacherApplication
	if err := r.db.GetContext(ctx, &app, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find active application: %w", err)
	}
	return &app, nil
}

// List returns applications based on filters with total count, newest first.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.TeacherApplication, int, error) {
	baseQuery := `FROM teacher_applications ta LEFT JOIN user_profiles rp ON rp.user_id = ta.reviewed_by WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("ta.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s, rp.full_name AS reviewer_name %s ORDER BY ta.applied_at DESC LIMIT %d OFFSET %d", applicationColumns, baseQuery, pageSize, offset)

	var apps []models.TeacherApplication
	if err := r.db.SelectContext(ctx, &apps, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	return apps, total, nil
}

// UpdateReview records a review decision on an application.
func (r *ApplicationRepository) UpdateReview(ctx context.Context, id string, status models.ApplicationStatus, reviewedBy string, reason *string, reviewedAt time.Time) error {
	const query = `UPDATE teacher_applications SET status = $2, reviewed_by = $3, rejection_reason = $4, reviewed_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, reviewedBy, reason, reviewedAt); err != nil {
		return fmt.Errorf("update application review: %w", err)
	}
	return nil
}

// CountByStatus returns the number of applications in the given status.
func (r *ApplicationRepository) CountByStatus(ctx context.Context, status models.ApplicationStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM teacher_applications WHERE status = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, status); err != nil {
		return 0, fmt.Errorf("count applications by status: %w", err)
	}
	return count, nil
}
