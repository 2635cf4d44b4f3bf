package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/TravisChandler1/ewaede/internal/models"
)

// StatsRepository runs the aggregate queries behind the dashboards. Each
// counter is an independent query; dashboard payloads are not a transactional
// snapshot.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("stats count: %w", err)
	}
	return n, nil
}

// CountProfiles returns the total number of profiles.
func (r *StatsRepository) CountProfiles(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM user_profiles`)
}

// CountProfilesByRole returns the number of active profiles holding a role.
func (r *StatsRepository) CountProfilesByRole(ctx context.Context, role models.UserRole) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM user_profiles WHERE role = $1 AND is_active = TRUE`, role)
}

// CountNewProfilesThisMonth returns profiles created since the start of the
// current month.
func (r *StatsRepository) CountNewProfilesThisMonth(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM user_profiles WHERE created_at >= date_trunc('month', NOW())`)
}

// CountApplicationsByStatus returns the number of applications in a status.
func (r *StatsRepository) CountApplicationsByStatus(ctx context.Context, status models.ApplicationStatus) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM teacher_applications WHERE status = $1`, status)
}

// CountCourses returns total and active course counts.
func (r *StatsRepository) CountCourses(ctx context.Context) (total, active int, err error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE is_active) AS active FROM courses`
	var row struct {
		Total  int `db:"total"`
		Active int `db:"active"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, fmt.Errorf("count courses: %w", err)
	}
	return row.Total, row.Active, nil
}

// CountSessionsByStatus returns the number of sessions in a status.
func (r *StatsRepository) CountSessionsByStatus(ctx context.Context, status models.SessionStatus) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM live_sessions WHERE status = $1`, status)
}

// CountSessions returns the total number of sessions.
func (r *StatsRepository) CountSessions(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM live_sessions`)
}

// CountGroups returns the total number of study groups.
func (r *StatsRepository) CountGroups(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM study_groups`)
}

// CountBookClubs returns the number of active book clubs.
func (r *StatsRepository) CountBookClubs(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM book_clubs WHERE is_active = TRUE`)
}

// RecentProfiles returns the newest profiles for the admin landing page.
func (r *StatsRepository) RecentProfiles(ctx context.Context, limit int) ([]models.UserProfile, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT %s FROM user_profiles ORDER BY created_at DESC LIMIT $1`, profileColumns)
	var profiles []models.UserProfile
	if err := r.db.SelectContext(ctx, &profiles, query, limit); err != nil {
		return nil, fmt.Errorf("recent profiles: %w", err)
	}
	return profiles, nil
}

// RecentApplications returns the newest open applications for the admin
// landing page.
func (r *StatsRepository) RecentApplications(ctx context.Context, limit int) ([]models.TeacherApplication, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT %s, NULL AS reviewer_name FROM teacher_applications ta WHERE ta.status IN ('pending', 'under_review') ORDER BY ta.applied_at DESC LIMIT $1`, applicationColumns)
	var apps []models.TeacherApplication
	if err := r.db.SelectContext(ctx, &apps, query, limit); err != nil {
		return nil, fmt.Errorf("recent applications: %w", err)
	}
	return apps, nil
}

// TeacherSessionStats returns a teacher's session count and distinct reached
// students alongside total attendee registrations.
func (r *StatsRepository) TeacherSessionStats(ctx context.Context, teacherID string) (sessions, students, attendees int, err error) {
	const query = `SELECT
		(SELECT COUNT(*) FROM live_sessions WHERE teacher_id = $1) AS sessions,
		(SELECT COUNT(DISTINCT sr.user_id) FROM session_registrations sr JOIN live_sessions ls ON ls.id = sr.session_id WHERE ls.teacher_id = $1) AS students,
		(SELECT COUNT(*) FROM session_registrations sr JOIN live_sessions ls ON ls.id = sr.session_id WHERE ls.teacher_id = $1 AND sr.attended) AS attendees`
	var row struct {
		Sessions  int `db:"sessions"`
		Students  int `db:"students"`
		Attendees int `db:"attendees"`
	}
	if err := r.db.GetContext(ctx, &row, query, teacherID); err != nil {
		return 0, 0, 0, fmt.Errorf("teacher session stats: %w", err)
	}
	return row.Sessions, row.Students, row.Attendees, nil
}
