package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/TravisChandler1/ewaede/internal/dto"
	"github.com/TravisChandler1/ewaede/internal/models"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
)

const adminDashboardCacheKey = "dashboard:admin"

type dashboardStatsRepository interface {
	CountProfiles(ctx context.Context) (int, error)
	CountProfilesByRole(ctx context.Context, role models.UserRole) (int, error)
	CountNewProfilesThisMonth(ctx context.Context) (int, error)
	CountApplicationsByStatus(ctx context.Context, status models.ApplicationStatus) (int, error)
	CountCourses(ctx context.Context) (total, active int, err error)
	CountSessions(ctx context.Context) (int, error)
	CountSessionsByStatus(ctx context.Context, status models.SessionStatus) (int, error)
	CountGroups(ctx context.Context) (int, error)
	CountBookClubs(ctx context.Context) (int, error)
	RecentProfiles(ctx context.Context, limit int) ([]models.UserProfile, error)
	RecentApplications(ctx context.Context, limit int) ([]models.TeacherApplication, error)
	TeacherSessionStats(ctx context.Context, teacherID string) (sessions, students, attendees int, err error)
}

type dashboardProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
}

type dashboardCourseRepository interface {
	ProgressByUser(ctx context.Context, userID string) ([]models.CourseProgress, error)
}

type dashboardSessionRepository interface {
	ListRegistered(ctx context.Context, viewerID string) ([]models.SessionSummary, error)
	ListCreated(ctx context.Context, teacherID string) ([]models.SessionSummary, error)
}

type dashboardGroupRepository interface {
	ListJoined(ctx context.Context, viewerID string) ([]models.GroupSummary, error)
}

type dashboardBookClubRepository interface {
	ListJoined(ctx context.Context, viewerID string) ([]models.BookClubSummary, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// DashboardConfig controls admin dashboard caching.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DashboardService composes the role-shaped landing payloads. Sections come
// from independent queries; there is no cross-section snapshot guarantee.
type DashboardService struct {
	stats     dashboardStatsRepository
	profiles  dashboardProfileRepository
	courses   dashboardCourseRepository
	sessions  dashboardSessionRepository
	groups    dashboardGroupRepository
	bookClubs dashboardBookClubRepository
	cache     dashboardCache
	metrics   *MetricsService
	config    DashboardConfig
	logger    *zap.Logger
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(
	stats dashboardStatsRepository,
	profiles dashboardProfileRepository,
	courses dashboardCourseRepository,
	sessions dashboardSessionRepository,
	groups dashboardGroupRepository,
	bookClubs dashboardBookClubRepository,
	cache dashboardCache,
	metrics *MetricsService,
	config DashboardConfig,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		stats:     stats,
		profiles:  profiles,
		courses:   courses,
		sessions:  sessions,
		groups:    groups,
		bookClubs: bookClubs,
		cache:     cache,
		metrics:   metrics,
		config:    config,
		logger:    logger,
	}
}

// Admin returns the back-office landing payload, served from Redis when a
// fresh copy exists.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	if s.config.CacheEnabled && s.cache != nil {
		var cached dto.AdminDashboardResponse
		if err := s.cache.Get(ctx, adminDashboardCacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("admin dashboard cache read failed", zap.Error(err))
		} else {
			s.metrics.RecordCacheOperation(false)
		}
	}

	stats, err := s.platformStats(ctx)
	if err != nil {
		return nil, err
	}

	recentUsers, err := s.stats.RecentProfiles(ctx, 10)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent users")
	}
	recentApps, err := s.stats.RecentApplications(ctx, 10)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent applications")
	}

	payload := &dto.AdminDashboardResponse{
		Stats:               *stats,
		RecentUsers:         recentUsers,
		TeacherApplications: recentApps,
	}

	if s.config.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, adminDashboardCacheKey, payload, s.config.CacheTTL); err != nil {
			s.logger.Warn("admin dashboard cache write failed", zap.Error(err))
		}
	}

	return payload, nil
}

// InvalidateAdmin drops the cached admin payload. Called after mutations that
// would make the cached counters misleading.
func (s *DashboardService) InvalidateAdmin(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, adminDashboardCacheKey); err != nil {
		s.logger.Warn("admin dashboard cache invalidation failed", zap.Error(err))
	}
}

// Student returns the student landing payload.
func (s *DashboardService) Student(ctx context.Context, userID string) (*dto.StudentDashboardResponse, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress, err := s.courses.ProgressByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}
	groups, err := s.groups.ListJoined(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load groups")
	}
	clubs, err := s.bookClubs.ListJoined(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load book clubs")
	}
	sessions, err := s.sessions.ListRegistered(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}

	return &dto.StudentDashboardResponse{
		Profile:   *profile,
		Progress:  progress,
		Groups:    groups,
		BookClubs: clubs,
		Sessions:  sessions,
	}, nil
}

// Teacher returns the teacher landing payload.
func (s *DashboardService) Teacher(ctx context.Context, userID string) (*dto.TeacherDashboardResponse, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessions.ListCreated(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	groups, err := s.groups.ListJoined(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load groups")
	}
	created, students, attendees, err := s.stats.TeacherSessionStats(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load analytics")
	}

	return &dto.TeacherDashboardResponse{
		Profile:  *profile,
		Sessions: sessions,
		Groups:   groups,
		Analytics: dto.TeacherAnalytics{
			TotalStudents:         students,
			TotalSessionsCreated:  created,
			TotalSessionAttendees: attendees,
		},
	}, nil
}

func (s *DashboardService) profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

func (s *DashboardService) platformStats(ctx context.Context) (*dto.PlatformStats, error) {
	var stats dto.PlatformStats
	var err error

	if stats.TotalUsers, err = s.stats.CountProfiles(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	if stats.NewUsersThisMonth, err = s.stats.CountNewProfilesThisMonth(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count new users")
	}
	if stats.TotalStudents, err = s.stats.CountProfilesByRole(ctx, models.RoleStudent); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	if stats.ActiveTeachers, err = s.stats.CountProfilesByRole(ctx, models.RoleTeacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teachers")
	}
	if stats.TotalAdmins, err = s.stats.CountProfilesByRole(ctx, models.RoleAdmin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count admins")
	}

	if stats.PendingApplications, err = s.stats.CountApplicationsByStatus(ctx, models.ApplicationPending); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending applications")
	}
	if stats.ApprovedApplications, err = s.stats.CountApplicationsByStatus(ctx, models.ApplicationApproved); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count approved applications")
	}
	if stats.RejectedApplications, err = s.stats.CountApplicationsByStatus(ctx, models.ApplicationRejected); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rejected applications")
	}

	if stats.TotalCourses, stats.ActiveCourses, err = s.stats.CountCourses(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count courses")
	}
	if stats.TotalSessions, err = s.stats.CountSessions(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sessions")
	}
	if stats.LiveSessions, err = s.stats.CountSessionsByStatus(ctx, models.SessionLive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count live sessions")
	}
	if stats.ScheduledSessions, err = s.stats.CountSessionsByStatus(ctx, models.SessionScheduled); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count scheduled sessions")
	}

	if stats.TotalGroups, err = s.stats.CountGroups(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count groups")
	}
	if stats.TotalBookClubs, err = s.stats.CountBookClubs(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count book clubs")
	}

	return &stats, nil
}
