package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/TravisChandler1/ewaede/internal/models"
)

// CourseRepository provides database access for the course catalogue and user
// progress.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListActive returns the active course catalogue ordered by level then title.
func (r *CourseRepository) ListActive(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, title, description, level, duration_weeks, is_active, created_at FROM courses WHERE is_active = TRUE ORDER BY level, title`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ProgressByUser returns a user's progress rows joined with course details.
func (r *CourseRepository) ProgressByUser(ctx context.Context, userID string) ([]models.CourseProgress, error) {
	const query = `SELECT up.id, up.user_id, up.course_id, up.completed_lessons, up.total_lessons, up.progress_percentage, up.last_accessed,
		c.title AS course_title, c.level, c.duration_weeks
		FROM user_progress up
		JOIN courses c ON c.id = up.course_id
		WHERE up.user_id = $1
		ORDER BY up.last_accessed DESC`
	var progress []models.CourseProgress
	if err := r.db.SelectContext(ctx, &progress, query, userID); err != nil {
		return nil, fmt.Errorf("list user progress: %w", err)
	}
	return progress, nil
}
