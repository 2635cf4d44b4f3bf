package dto

import "github.com/TravisChandler1/ewaede/internal/models"

// PlatformStats aggregates the counters shown on the admin dashboard.
type PlatformStats struct {
	TotalUsers        int `json:"totalUsers"`
	NewUsersThisMonth int `json:"newUsersThisMonth"`
	TotalStudents     int `json:"totalStudents"`
	ActiveTeachers    int `json:"activeTeachers"`
	TotalAdmins       int `json:"totalAdmins"`

	PendingApplications  int `json:"pendingApplications"`
	ApprovedApplications int `json:"approvedApplications"`
	RejectedApplications int `json:"rejectedApplications"`

	TotalCourses      int `json:"totalCourses"`
	ActiveCourses     int `json:"activeCourses"`
	TotalSessions     int `json:"totalSessions"`
	LiveSessions      int `json:"liveSessions"`
	ScheduledSessions int `json:"scheduledSessions"`

	TotalGroups    int `json:"totalGroups"`
	TotalBookClubs int `json:"totalBookClubs"`
}

// AdminDashboardResponse is the admin back-office landing payload.
type AdminDashboardResponse struct {
	Stats               PlatformStats               `json:"stats"`
	RecentUsers         []models.UserProfile        `json:"recentUsers"`
	TeacherApplications []models.TeacherApplication `json:"teacherApplications"`
}

// StudentDashboardResponse is the student landing payload. Each section is
// composed from an independent query; there is no cross-section snapshot
// guarantee.
type StudentDashboardResponse struct {
	Profile   models.UserProfile       `json:"profile"`
	Progress  []models.CourseProgress  `json:"progress"`
	Groups    []models.GroupSummary    `json:"groups"`
	BookClubs []models.BookClubSummary `json:"bookClubs"`
	Sessions  []models.SessionSummary  `json:"sessions"`
}

// TeacherAnalytics summarises a teacher's session reach.
type TeacherAnalytics struct {
	TotalStudents         int `json:"totalStudents"`
	TotalSessionsCreated  int `json:"totalSessionsCreated"`
	TotalSessionAttendees int `json:"totalSessionAttendees"`
}

// TeacherDashboardResponse is the teacher landing payload.
type TeacherDashboardResponse struct {
	Profile   models.UserProfile      `json:"profile"`
	Sessions  []models.SessionSummary `json:"sessions"`
	Groups    []models.GroupSummary   `json:"groups"`
	Analytics TeacherAnalytics        `json:"analytics"`
}
